package stowman

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Manage dotfile packages with GNU Stow"
	MsgInstallShort    = "Install package symlinks"
	MsgUninstallShort  = "Remove package symlinks"
	MsgRestowShort     = "Reinstall package symlinks"
	MsgAdoptShort      = "Move existing files into packages and link them back"
	MsgStatusShort     = "Show per-file install status"
	MsgListShort       = "List configured packages"
	MsgCheckShort      = "Find broken symlinks"
	MsgNewShort        = "Create a new package"
	MsgDeleteShort     = "Delete packages from the repository"
	MsgCompletionShort = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDir       = "Dotfiles repository (default: $STOWMAN_DOTFILES_DIR, $DOTFILES_ROOT, git top-level, current directory)"
	MsgFlagColor     = "Color output: auto, always or never"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagAll       = "Operate on every package in all_packages"
	MsgFlagNoGit     = "Do not offer a git commit after adopting"
	MsgFlagFrom      = "Existing file or directory to build the package from"
	MsgFlagSudo      = "Create a privileged package under sudo_packages/"
	MsgFlagTarget    = "Custom target directory for the package"
	MsgFlagForce     = "Skip the typed confirmation"
	MsgFlagKeepFiles = "Keep the package directory, only unlink and unregister"
	MsgFlagNoBackup  = "Do not back up the package before deleting it"

	// Errors and notices
	MsgLinkerMissing     = "GNU Stow is not installed!"
	MsgLinkerInstallHint = "Install with: sudo dnf install stow"
	MsgErrSettings       = "failed to load settings: %w"
	MsgErrInitPaths      = "failed to initialize paths: %w"
	MsgErrNoCommand      = "no command specified"
	MsgConfigWarning     = "%s %s\n"
	MsgDebugDotfilesRoot = "Debug: Using dotfiles root: %s (fallback=%v)\n"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/uninstall-long.txt
	msgUninstallLongRaw string
	MsgUninstallLong    = strings.TrimSpace(msgUninstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimSpace(msgInstallExampleRaw)

	//go:embed msgs/adopt-long.txt
	msgAdoptLongRaw string
	MsgAdoptLong    = strings.TrimSpace(msgAdoptLongRaw)

	//go:embed msgs/new-long.txt
	msgNewLongRaw string
	MsgNewLong    = strings.TrimSpace(msgNewLongRaw)

	//go:embed msgs/new-example.txt
	msgNewExampleRaw string
	MsgNewExample    = strings.TrimSpace(msgNewExampleRaw)

	//go:embed msgs/delete-long.txt
	msgDeleteLongRaw string
	MsgDeleteLong    = strings.TrimSpace(msgDeleteLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/fallback-warning.txt
	msgFallbackWarningRaw string
	MsgFallbackWarning    = strings.TrimSpace(msgFallbackWarningRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
