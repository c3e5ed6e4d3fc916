// pkg/commands/remove/remove_test.go
// TEST TYPE: Workflow Test
// DEPENDENCIES: testutil.Harness (real filesystem, FakeStow)
// PURPOSE: Test package deletion, its gates, backups and partial packages

package remove_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stowman/pkg/commands/remove"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/paths"
	"github.com/arthur-debert/stowman/pkg/runner"
	"github.com/arthur-debert/stowman/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deleteStamp = "delete-20240305-140709"

func newHarness(t *testing.T) *testutil.Harness {
	t.Helper()
	h := testutil.NewHarness(t)
	h.Env.WriteConfig(&config.Document{
		AllPackages:    []string{"zsh", "vim", "bin"},
		PackageTargets: map[string]string{"bin": "~/bin"},
	})
	h.Env.Package("zsh").AddFile(".zshrc", "rc").AddFile(".zsh/aliases", "alias")
	h.Env.Package("bin").AddFile("hello", "#!/bin/sh")
	return h
}

func run(t *testing.T, h *testutil.Harness, opts remove.Options) *remove.Result {
	t.Helper()
	result, err := remove.Delete(context.Background(), h.Runtime(), opts)
	require.NoError(t, err)
	return result
}

func TestDelete_InstalledPackage(t *testing.T) {
	h := newHarness(t).Answer("zsh")
	link := h.Env.HomePath(".zshrc")
	testutil.CreateSymlink(t, h.Env.RepoPath("zsh/.zshrc"), link)

	result := run(t, h, remove.Options{Packages: []string{"zsh"}})

	require.Len(t, result.Packages, 1)
	pr := result.Packages[0]
	assert.Equal(t, remove.Deleted, pr.Outcome)
	assert.Equal(t, []string{"all_packages"}, pr.Sections)

	testutil.AssertNoPath(t, link)
	testutil.AssertNoPath(t, h.Env.RepoPath("zsh"))

	backupDir := h.Env.RepoPath(filepath.Join(paths.BackupDirName, deleteStamp, "zsh"))
	assert.Equal(t, backupDir, pr.Backup)
	testutil.AssertFileContent(t, filepath.Join(backupDir, ".zshrc"), "rc")
	testutil.AssertFileContent(t, filepath.Join(backupDir, ".zsh/aliases"), "alias")

	assert.Equal(t, []string{"vim", "bin"}, h.Env.Config().AllPackages)
	assert.Equal(t, []string{"> "}, h.Prompter.Questions)
	assert.True(t, h.Runner.HasCall("stow -v -D -t "+h.Env.HomeDir+" zsh"))

	out := h.Output.String()
	assert.Contains(t, out, "DELETE PACKAGES")
	assert.Contains(t, out, "Delete Package Preview: zsh")
	assert.Contains(t, out, "Location:  zsh/\n")
	assert.Contains(t, out, "In config: Yes (all_packages)\n")
	assert.Contains(t, out, "  • Backup to: .backups/"+deleteStamp+"/zsh/\n")
	assert.Contains(t, out, "⚠ This action cannot be undone (except via backup restore)")
	assert.Contains(t, out, "To confirm deletion, type the package name: zsh")
	assert.Contains(t, out, "✓ Confirmed")
	assert.Contains(t, out, "Package Deleted Successfully!")
	assert.Contains(t, out, "✓ Backup created: "+backupDir)
	assert.Contains(t, out, "✓ Directory removed: zsh/")
	assert.Contains(t, out, "1. Copy from backup: cp -r "+backupDir+" .")
	assert.Contains(t, out, "3. Install: stowman install zsh")
	assert.Contains(t, h.Audit(), "SUCCESS: Package 'zsh' deleted successfully")
}

func TestDelete_DirectoryOnlyPackage(t *testing.T) {
	h := newHarness(t).Answer("scratch")
	h.Env.Package("scratch").AddFile("notes", "n")

	result := run(t, h, remove.Options{Packages: []string{"scratch"}})

	assert.Equal(t, remove.Deleted, result.Packages[0].Outcome)
	assert.Empty(t, result.Packages[0].Sections)
	testutil.AssertNoPath(t, h.Env.RepoPath("scratch"))

	// The descriptor is never rewritten
	testutil.AssertNoPath(t, paths.ConfigFilePath(h.Env.DotfilesDir)+paths.ConfigBackupSuffix)
	assert.Equal(t, []string{"zsh", "vim", "bin"}, h.Env.Config().AllPackages)

	out := h.Output.String()
	assert.Contains(t, out, "In config: No\n")
	assert.Contains(t, out, "⚠ Package not in configuration, will only remove directory")
	assert.NotContains(t, out, "Remove from configuration:")
	assert.NotContains(t, out, "✓ Configuration updated")
}

func TestDelete_ConfigOnlyPackage(t *testing.T) {
	h := newHarness(t).Answer("vim")

	result := run(t, h, remove.Options{Packages: []string{"vim"}})

	pr := result.Packages[0]
	assert.Equal(t, remove.Deleted, pr.Outcome)
	assert.Empty(t, pr.Backup)
	assert.Empty(t, h.Runner.Calls)
	testutil.AssertNoPath(t, h.Env.RepoPath(paths.BackupDirName))
	assert.Equal(t, []string{"zsh", "bin"}, h.Env.Config().AllPackages)

	out := h.Output.String()
	assert.Contains(t, out, "Location:  (directory not found)")
	assert.Contains(t, out, "⚠ Package directory does not exist, will only remove from configuration")
	assert.Contains(t, out, "  • Remove from configuration:\n    - all_packages\n")
	assert.NotContains(t, out, "Uninstall symlinks")
	assert.NotContains(t, out, "To restore this package:")
}

func TestDelete_RemovesEverySection(t *testing.T) {
	h := newHarness(t).Answer("bin")

	result := run(t, h, remove.Options{Packages: []string{"bin"}})

	assert.Equal(t, []string{"all_packages", "package_targets"}, result.Packages[0].Sections)
	cfg := h.Env.Config()
	_, ok := cfg.CustomTarget("bin")
	assert.False(t, ok)
	assert.True(t, h.Runner.HasCall("stow -v -D -t "+h.Env.HomePath("bin")+" bin"))
	assert.Contains(t, h.Output.String(), "In config: Yes (all_packages, package_targets)")
}

func TestDelete_UnknownPackage(t *testing.T) {
	h := newHarness(t)

	result := run(t, h, remove.Options{Packages: []string{"ghost"}})

	assert.Equal(t, remove.NotFound, result.Packages[0].Outcome)
	assert.Empty(t, h.Prompter.Questions)
	assert.Contains(t, h.Output.Stderr.String(), "✗ Package 'ghost' does not exist")
	assert.Contains(t, h.Output.String(), "Not found in configuration or as directory")
}

func TestDelete_ConfirmationMismatch(t *testing.T) {
	h := newHarness(t).Answer("zs")

	result := run(t, h, remove.Options{Packages: []string{"zsh"}})

	assert.Equal(t, remove.Cancelled, result.Packages[0].Outcome)
	assert.DirExists(t, h.Env.RepoPath("zsh"))
	assert.Empty(t, h.Runner.Calls)
	assert.Contains(t, h.Output.String(), "⚠ Confirmation failed. Package not deleted.")
}

func TestDelete_Interrupted(t *testing.T) {
	h := newHarness(t)

	result := run(t, h, remove.Options{Packages: []string{"zsh"}})

	assert.Equal(t, remove.Cancelled, result.Packages[0].Outcome)
	assert.DirExists(t, h.Env.RepoPath("zsh"))
	assert.Contains(t, h.Output.String(), "⚠ Operation cancelled by user")
}

func TestDelete_DryRun(t *testing.T) {
	h := newHarness(t)

	result := run(t, h, remove.Options{Packages: []string{"zsh"}, DryRun: true})

	assert.Equal(t, remove.Previewed, result.Packages[0].Outcome)
	assert.Empty(t, h.Prompter.Questions)
	assert.Empty(t, h.Runner.Calls)
	assert.DirExists(t, h.Env.RepoPath("zsh"))
	assert.Contains(t, h.Output.String(), "✓ Dry-run: Would delete package 'zsh'")
}

func TestDelete_ForceKeepFiles(t *testing.T) {
	h := newHarness(t)

	result := run(t, h, remove.Options{Packages: []string{"zsh"}, Force: true, KeepFiles: true})

	pr := result.Packages[0]
	assert.Equal(t, remove.Deleted, pr.Outcome)
	assert.Empty(t, pr.Backup)
	assert.Empty(t, h.Prompter.Questions)
	assert.DirExists(t, h.Env.RepoPath("zsh"))
	assert.Equal(t, []string{"vim", "bin"}, h.Env.Config().AllPackages)

	out := h.Output.String()
	assert.NotContains(t, out, "Backup to:")
	assert.NotContains(t, out, "Remove directory:")
}

func TestDelete_NoBackup(t *testing.T) {
	h := newHarness(t)

	result := run(t, h, remove.Options{Packages: []string{"zsh"}, Force: true, NoBackup: true})

	assert.Equal(t, remove.Deleted, result.Packages[0].Outcome)
	testutil.AssertNoPath(t, h.Env.RepoPath("zsh"))
	testutil.AssertNoPath(t, h.Env.RepoPath(paths.BackupDirName))
}

// failUnlink makes real stow -D runs fail while simulations succeed.
func failUnlink(cmd runner.Command) (runner.Result, error) {
	simulate := false
	for _, a := range cmd.Args {
		if a == "-n" {
			simulate = true
		}
	}
	if !simulate && len(cmd.Args) > 1 && cmd.Args[1] == "-D" {
		return testutil.Fail(cmd, 2, "stow: ERROR: unlink failed\n")
	}
	return testutil.FakeStow(cmd)
}

func TestDelete_RemainingSymlinksDeclined(t *testing.T) {
	h := newHarness(t).Answer("zsh", "n")
	h.Runner.Handler = testutil.Route(map[string]testutil.RunHandler{"stow": failUnlink})
	link := h.Env.HomePath(".zshrc")
	testutil.CreateSymlink(t, h.Env.RepoPath("zsh/.zshrc"), link)

	result := run(t, h, remove.Options{Packages: []string{"zsh"}})

	assert.Equal(t, remove.Cancelled, result.Packages[0].Outcome)
	assert.DirExists(t, h.Env.RepoPath("zsh"))
	assert.True(t, testutil.IsSymlink(link))

	out := h.Output.String()
	assert.Contains(t, out, "⚠ Some symlinks could not be removed:\n  "+link+"\n")
	assert.Contains(t, out, "⚠ Deletion of 'zsh' cancelled")
	assert.Equal(t, []string{"> ", "Continue with deletion?"}, h.Prompter.Questions)
}

func TestDelete_RemainingSymlinksAccepted(t *testing.T) {
	h := newHarness(t).Answer("zsh", "y")
	h.Runner.Handler = testutil.Route(map[string]testutil.RunHandler{"stow": failUnlink})
	link := h.Env.HomePath(".zshrc")
	testutil.CreateSymlink(t, h.Env.RepoPath("zsh/.zshrc"), link)

	result := run(t, h, remove.Options{Packages: []string{"zsh"}})

	pr := result.Packages[0]
	assert.Equal(t, remove.Deleted, pr.Outcome)
	assert.Equal(t, []string{link}, pr.Dangling)
	testutil.AssertNoPath(t, h.Env.RepoPath("zsh"))
	// The link survives and now dangles
	assert.True(t, testutil.IsSymlink(link))
	assert.Contains(t, h.Audit(), "WARNING: Deleting 'zsh' with 1 symlinks left in place")
}

func TestDelete_ContinuesAfterFailure(t *testing.T) {
	h := newHarness(t).Answer("wrong", "vim")

	result := run(t, h, remove.Options{Packages: []string{"ghost", "zsh", "vim"}})

	assert.Equal(t, map[string]remove.Outcome{
		"ghost": remove.NotFound,
		"zsh":   remove.Cancelled,
		"vim":   remove.Deleted,
	}, result.Outcomes())
	assert.Equal(t, []string{"zsh", "bin"}, h.Env.Config().AllPackages)
}

func TestDelete_PrivilegedDirectoryNotListed(t *testing.T) {
	h := newHarness(t).Answer("boot")
	h.Env.SudoPackage("boot").AddFile("grub.cfg", "menu")

	result := run(t, h, remove.Options{Packages: []string{"boot"}})

	pr := result.Packages[0]
	assert.Equal(t, remove.Deleted, pr.Outcome)
	testutil.AssertNoPath(t, h.Env.RepoPath("sudo_packages/boot"))
	testutil.AssertFileContent(t, filepath.Join(pr.Backup, "grub.cfg"), "menu")
	// Privileged packages are never handed to stow
	assert.Empty(t, h.Runner.CallsTo("stow"))
	assert.Contains(t, h.Output.String(), "Location:  sudo_packages/boot/")
	assert.Contains(t, h.Output.String(), "cp -r "+pr.Backup+" sudo_packages/")
}

func TestDelete_RefusesReservedAndPathLikeNames(t *testing.T) {
	for _, name := range []string{"sudo_packages", ".", "..", ".git", ".logs", ".backups", "zsh/..", "../home"} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.Env.SudoPackage("etc").AddFile("hosts", "127.0.0.1")
			h.Env.Package(".git").AddFile("HEAD", "ref: refs/heads/main")
			testutil.CreateFile(t, h.Env.RepoPath(paths.LogDirName), "old.log", "x")

			result := run(t, h, remove.Options{Packages: []string{name}, Force: true})

			require.Len(t, result.Packages, 1)
			assert.Equal(t, remove.Invalid, result.Packages[0].Outcome)
			assert.Contains(t, h.Output.Stderr.String(), "✗ Invalid package name '"+name+"'")

			testutil.AssertFileContent(t, h.Env.RepoPath("sudo_packages/etc/hosts"), "127.0.0.1")
			testutil.AssertFileContent(t, h.Env.RepoPath(".git/HEAD"), "ref: refs/heads/main")
			testutil.AssertFileContent(t, h.Env.RepoPath(".logs/old.log"), "x")
			assert.DirExists(t, h.Env.RepoPath("zsh"))
			assert.DirExists(t, h.Env.HomeDir)
			assert.Empty(t, h.Runner.Calls)
		})
	}
}
