// Package config handles configuration management for stowman.
//
// Two sources are read:
//
//   - the package descriptor, .dotfiles-config.json at the repository
//     root, which lists packages, privileged packages, custom targets and
//     privileged file mappings (Load, UpdateFile)
//   - tool settings, an optional TOML file under $XDG_CONFIG_HOME/stowman
//     overridden by STOWMAN_* environment variables (LoadSettings)
//
// A Config is built once per invocation and never mutated; helpers such
// as WithPackage return modified copies.
package config
