package paths

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/runner"
)

// Environment variable names
const (
	// EnvDotfilesRoot points at the repository when no flag or setting does
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Repository layout. These names are fixed; user-configurable values
// belong in pkg/config.
const (
	// ConfigFileName is the package descriptor at the repository root
	ConfigFileName = ".dotfiles-config.json"

	// ConfigBackupSuffix is appended to the descriptor name for its single backup slot
	ConfigBackupSuffix = ".backup"

	// SudoPackagesDir holds privileged packages
	SudoPackagesDir = "sudo_packages"

	// LogDirName holds the daily audit logs
	LogDirName = ".logs"

	// BackupDirName holds conflict and delete backups
	BackupDirName = ".backups"

	// PlaceholderFile keeps otherwise empty package directories in git
	PlaceholderFile = ".gitkeep"

	// XDGConfigDir is the home-relative XDG config directory
	XDGConfigDir = ".config"
)

// Paths provides the repository location and layout
type Paths interface {
	DotfilesRoot() string
	UsedFallback() bool
	ConfigFile() string
	ConfigBackupFile() string
	LogDir() string
	BackupDir() string
	PackagePath(name string, sudo bool) string
}

type paths struct {
	dotfilesRoot string
	usedFallback bool
}

// New creates a Paths instance rooted at dotfilesRoot. When dotfilesRoot
// is empty the root is discovered: DOTFILES_ROOT, then the enclosing git
// work tree (asked through r, skipped when r is nil), then the current
// directory.
func New(ctx context.Context, dotfilesRoot string, r runner.Runner) (Paths, error) {
	p := &paths{}

	if dotfilesRoot == "" {
		root, usedFallback, err := findDotfilesRoot(ctx, r)
		if err != nil {
			return nil, err
		}
		p.dotfilesRoot = root
		p.usedFallback = usedFallback
	} else {
		p.dotfilesRoot = ExpandHome(dotfilesRoot, homeDir())
	}

	absRoot, err := filepath.Abs(p.dotfilesRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to get absolute path for dotfiles root")
	}
	p.dotfilesRoot = absRoot

	return p, nil
}

func findDotfilesRoot(ctx context.Context, r runner.Runner) (string, bool, error) {
	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return ExpandHome(root, homeDir()), false, nil
	}

	if r != nil {
		if gitRoot, err := findGitRoot(ctx, r); err == nil {
			return gitRoot, false, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrInternal, "failed to get current directory")
	}

	return cwd, true, nil
}

func findGitRoot(ctx context.Context, r runner.Runner) (string, error) {
	logger := logging.GetLogger("paths")

	res, err := r.Run(ctx, runner.Command{Name: "git", Args: []string{"rev-parse", "--show-toplevel"}})
	if err != nil {
		logger.Debug().Err(err).Msg("Not inside a git work tree")
		return "", err
	}

	gitRoot := strings.TrimSpace(res.Stdout)
	if gitRoot == "" {
		return "", errors.New(errors.ErrVCS, "git root is empty")
	}

	logger.Debug().Str("root", gitRoot).Msg("Using git work tree as dotfiles root")
	return gitRoot, nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv(EnvHome)
}

// ExpandHome expands a leading ~ against home. "~" becomes home and
// "~/x" becomes home/x; anything else, including "~user", is returned
// unchanged.
func ExpandHome(path, home string) string {
	if path == "" || path[0] != '~' || home == "" {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigFilePath returns the descriptor path for a repository root.
func ConfigFilePath(root string) string {
	return filepath.Join(root, ConfigFileName)
}

// PackageDir returns where a package lives inside the repository.
func PackageDir(root, name string, sudo bool) string {
	if sudo {
		return filepath.Join(root, SudoPackagesDir, name)
	}
	return filepath.Join(root, name)
}

func (p *paths) DotfilesRoot() string {
	return p.dotfilesRoot
}

// UsedFallback returns true if the current working directory was used as fallback
func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

func (p *paths) ConfigFile() string {
	return ConfigFilePath(p.dotfilesRoot)
}

func (p *paths) ConfigBackupFile() string {
	return p.ConfigFile() + ConfigBackupSuffix
}

func (p *paths) LogDir() string {
	return filepath.Join(p.dotfilesRoot, LogDirName)
}

func (p *paths) BackupDir() string {
	return filepath.Join(p.dotfilesRoot, BackupDirName)
}

func (p *paths) PackagePath(name string, sudo bool) string {
	return PackageDir(p.dotfilesRoot, name, sudo)
}
