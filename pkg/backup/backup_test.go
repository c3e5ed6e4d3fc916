// pkg/backup/backup_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.TestEnvironment (real filesystem)
// PURPOSE: Test conflict and whole-package backups

package backup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/stowman/pkg/backup"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)
}

func TestBackupFiles_EmptyInputCreatesNothing(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	m := backup.NewManager(env.Config(), fixedClock)

	root, err := m.BackupFiles(nil)
	require.NoError(t, err)
	assert.Empty(t, root)
	testutil.AssertNoPath(t, env.RepoPath(".backups"))
}

func TestBackupFiles_MirrorsTargetRelativePaths(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	rc := env.HomeFile(".zshrc", "rc")
	nested := env.HomeFile(".config/kitty/kitty.conf", "font")
	require.NoError(t, os.Chmod(nested, 0600))
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(nested, mtime, mtime))

	m := backup.NewManager(env.Config(), fixedClock)
	root, err := m.BackupFiles([]string{rc, nested, env.HomePath("missing")})
	require.NoError(t, err)

	assert.Equal(t, env.RepoPath(".backups/20240305-140709"), root)
	testutil.AssertFileContent(t, filepath.Join(root, ".zshrc"), "rc")
	testutil.AssertFileContent(t, filepath.Join(root, ".config/kitty/kitty.conf"), "font")
	testutil.AssertNoPath(t, filepath.Join(root, "missing"))

	info, err := os.Stat(filepath.Join(root, ".config/kitty/kitty.conf"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))

	// Originals are untouched
	testutil.AssertFileContent(t, rc, "rc")
}

func TestBackupFiles_OutsideTarget(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	outside := testutil.CreateFile(t, env.Root, "srv/app.conf", "x")

	m := backup.NewManager(env.Config(), fixedClock)
	root, err := m.BackupFiles([]string{outside})
	require.NoError(t, err)

	testutil.AssertFileContent(t, filepath.Join(root, outside[1:]), "x")
}

func TestBackupPackage(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.Package("vim").AddFile(".vimrc", "set nu").AddFile(".vim/colors/x.vim", "c")
	env.SudoPackage("etc").AddFile("logid.cfg", "cfg")

	m := backup.NewManager(env.Config(), fixedClock)

	dst, err := m.BackupPackage("vim", false)
	require.NoError(t, err)
	assert.Equal(t, env.RepoPath(".backups/delete-20240305-140709/vim"), dst)
	testutil.AssertFileContent(t, filepath.Join(dst, ".vimrc"), "set nu")
	testutil.AssertFileContent(t, filepath.Join(dst, ".vim/colors/x.vim"), "c")

	dst, err = m.BackupPackage("etc", true)
	require.NoError(t, err)
	testutil.AssertFileContent(t, filepath.Join(dst, "logid.cfg"), "cfg")
}

func TestBackupPackage_MissingDirectory(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	m := backup.NewManager(env.Config(), fixedClock)

	dst, err := m.BackupPackage("ghost", false)
	require.NoError(t, err)
	assert.Empty(t, dst)
	testutil.AssertNoPath(t, env.RepoPath(".backups"))
}

func TestBackupPackage_Failure(t *testing.T) {
	testutil.RequireNotRoot(t)

	env := testutil.NewTestEnvironment(t)
	env.WriteConfig(&config.Document{AllPackages: []string{"vim"}})
	pkg := env.Package("vim").AddFile("secret", "s")
	require.NoError(t, os.Chmod(pkg.Path("secret"), 0000))
	t.Cleanup(func() { _ = os.Chmod(pkg.Path("secret"), 0644) })

	m := backup.NewManager(env.Config(), fixedClock)
	_, err := m.BackupPackage("vim", false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackup))
}
