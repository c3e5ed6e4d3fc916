// Package backup snapshots files before stowman replaces or deletes them.
//
// Two layouts live under the repository's .backups directory:
//
//	.backups/<YYYYMMDD-HHMMSS>/<target-relative path>   conflict backups
//	.backups/delete-<YYYYMMDD-HHMMSS>/<package>/...      whole-package backups
//
// Backups are never pruned.
package backup

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/filesystem"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// TimestampFormat names backup directories.
const TimestampFormat = "20060102-150405"

// DeletePrefix marks whole-package backups made by delete.
const DeletePrefix = "delete-"

// Manager creates backups for one repository.
type Manager struct {
	cfg *config.Config
	now func() time.Time
}

// NewManager creates a Manager. now defaults to time.Now.
func NewManager(cfg *config.Config, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{cfg: cfg, now: now}
}

// BackupFiles copies each existing file into a fresh timestamped
// directory, keeping its path relative to the target directory. Paths
// outside the target keep their full path below the backup root. With
// no input nothing is created and "" is returned.
func (m *Manager) BackupFiles(files []string) (string, error) {
	if len(files) == 0 {
		return "", nil
	}

	logger := logging.GetLogger("backup")
	root := filepath.Join(m.cfg.BackupDir, m.now().Format(TimestampFormat))

	if err := os.MkdirAll(root, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "Failed to create backup directory").
			WithDetail("path", root)
	}

	for _, file := range files {
		if _, err := os.Lstat(file); err != nil {
			logger.Debug().Str("file", file).Msg("Skipping missing file")
			continue
		}

		dst := filepath.Join(root, m.relativeToTarget(file))
		if err := filesystem.CopyFile(file, dst); err != nil {
			return root, errors.Wrapf(err, errors.ErrBackup, "Failed to back up %s", file).
				WithDetail("backup", root)
		}
		logger.Info().Str("file", file).Str("backup", dst).Msg("Backup created")
	}

	return root, nil
}

func (m *Manager) relativeToTarget(file string) string {
	rel, err := filepath.Rel(m.cfg.TargetDir, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return strings.TrimPrefix(file, string(filepath.Separator))
	}
	return rel
}

// BackupPackage copies the whole package directory into
// .backups/delete-<timestamp>/<name>/. A missing package directory is
// not an error and yields "".
func (m *Manager) BackupPackage(name string, sudo bool) (string, error) {
	logger := logging.GetLogger("backup")
	src := paths.PackageDir(m.cfg.DotfilesDir, name, sudo)

	if _, err := os.Stat(src); os.IsNotExist(err) {
		logger.Warn().Str("package", name).Str("dir", src).Msg("Package directory does not exist, nothing to back up")
		return "", nil
	}

	dst := filepath.Join(m.cfg.BackupDir, DeletePrefix+m.now().Format(TimestampFormat), name)
	if err := filesystem.CopyTree(src, dst); err != nil {
		return "", errors.Wrapf(err, errors.ErrBackup, "Failed to back up package '%s'", name).
			WithDetail("backup", dst)
	}

	logger.Info().Str("package", name).Str("backup", dst).Msg("Package backup created")
	return dst, nil
}
