// Package paths locates the dotfiles repository and knows its layout.
//
// # Discovery
//
// The repository root is resolved in this order:
//
//   - an explicit root (the --dir flag or the dotfiles_dir setting)
//   - DOTFILES_ROOT
//   - the enclosing git work tree (git rev-parse --show-toplevel)
//   - the current working directory, reported through UsedFallback
//
// # Layout
//
//	<root>/
//	├── .dotfiles-config.json          package descriptor
//	├── .dotfiles-config.json.backup   previous descriptor, single slot
//	├── .logs/stow-manager-YYYYMMDD.log
//	├── .backups/<YYYYMMDD-HHMMSS>/    conflict backups
//	├── .backups/delete-<ts>/<pkg>/    whole-package backups
//	├── <pkg>/                         ordinary packages, linked by stow
//	└── sudo_packages/<pkg>/           privileged packages, copied
package paths
