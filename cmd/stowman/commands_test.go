// cmd/stowman/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: testutil.Harness fakes, cobra
// PURPOSE: Test flag parsing, bootstrap and dispatch through the root command

package stowman_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stowman/cmd/stowman"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/testutil"
)

type cli struct {
	h      *testutil.Harness
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	h := testutil.NewHarness(t)
	h.Env.WriteConfig(&config.Document{AllPackages: []string{"zsh", "vim"}})
	h.Env.Package("zsh").AddFile(".zshrc", "rc")
	h.Env.Package("vim").AddFile(".vimrc", "set nu")
	return &cli{h: h}
}

func (c *cli) run(args ...string) error {
	root := stowman.NewRootCmdWithEnvironment(stowman.Environment{
		Runner:   c.h.Runner,
		Prompter: c.h.Prompter,
		Stdout:   &c.stdout,
		Stderr:   &c.stderr,
		Now:      func() time.Time { return testutil.FixedTime },
	})
	root.SetArgs(args)
	return root.Execute()
}

func TestList(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("list"))

	out := c.stdout.String()
	assert.Contains(t, out, "Available Packages")
	assert.Contains(t, out, "vim")
	assert.Contains(t, out, "Total: 2 packages")
	assert.Empty(t, c.h.Runner.Calls)
}

func TestList_RejectsArguments(t *testing.T) {
	c := newCLI(t)
	assert.Error(t, c.run("list", "zsh"))
}

func TestInstall_LinksThroughFakeStow(t *testing.T) {
	c := newCLI(t)
	c.h.Answer("y")

	require.NoError(t, c.run("install", "zsh"))

	testutil.AssertLinksTo(t, c.h.Env.HomePath(".zshrc"), c.h.Env.RepoPath("zsh/.zshrc"))
	testutil.AssertNoPath(t, c.h.Env.HomePath(".vimrc"))
	assert.FileExists(t, c.h.Env.RepoPath(".logs/stow-manager-20240305.log"))
}

func TestInstall_DryRunFlag(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("install", "-n", "zsh"))

	testutil.AssertNoPath(t, c.h.Env.HomePath(".zshrc"))
	assert.Equal(t, 0, c.h.Prompter.Remaining())
}

func TestInstall_WithoutPackages(t *testing.T) {
	c := newCLI(t)

	err := c.run("install")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.False(t, stowman.IsReported(err))
}

func TestInstall_LinkerMissing(t *testing.T) {
	c := newCLI(t)
	c.h.Runner.Missing["stow"] = true

	err := c.run("install", "zsh")

	require.Error(t, err)
	assert.True(t, stowman.IsReported(err))
	assert.Contains(t, c.stderr.String(), "GNU Stow is not installed!")
	assert.Contains(t, c.stdout.String(), "Install with: sudo dnf install stow")
	testutil.AssertNoPath(t, c.h.Env.HomePath(".zshrc"))
}

func TestStatus_DoesNotNeedLinker(t *testing.T) {
	c := newCLI(t)
	c.h.Runner.Missing["stow"] = true

	require.NoError(t, c.run("status", "zsh"))

	assert.Contains(t, c.stdout.String(), "zsh:")
	assert.Contains(t, c.stdout.String(), ".zshrc (not installed)")
}

func TestDirFlagOverridesEnvironment(t *testing.T) {
	c := newCLI(t)
	other := t.TempDir()
	testutil.CreateFile(t, other, ".dotfiles-config.json", `{"all_packages": ["tmux"]}`)

	require.NoError(t, c.run("--dir", other, "list"))

	assert.Contains(t, c.stdout.String(), "tmux")
	assert.NotContains(t, c.stdout.String(), "zsh")
}

func TestConfigWarningsGoToStderr(t *testing.T) {
	c := newCLI(t)
	c.h.Env.WriteRawConfig("{not json")

	require.NoError(t, c.run("list"))

	assert.NotEmpty(t, c.stderr.String())
	assert.Contains(t, c.stdout.String(), "Total: 9 packages")
}

func TestDelete_RequiresName(t *testing.T) {
	c := newCLI(t)
	assert.Error(t, c.run("delete"))
}

func TestNew_CreatesPackage(t *testing.T) {
	c := newCLI(t)
	c.h.Answer("y")

	require.NoError(t, c.run("new", "kitty"))

	assert.DirExists(t, c.h.Env.RepoPath("kitty"))
	cfg := c.h.Env.Config()
	assert.True(t, cfg.InConfig("kitty"))
}

func TestNoCommand(t *testing.T) {
	c := newCLI(t)

	err := c.run()

	require.Error(t, err)
	assert.Contains(t, c.stdout.String(), "USAGE:")
}

func TestHelpTopic(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("help", "config"))

	assert.Contains(t, c.stdout.String(), "Configuration")
	assert.Contains(t, c.stdout.String(), "all_packages")
}

func TestHelpFallsBackToCommandHelp(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("help", "adopt"))

	assert.Contains(t, c.stdout.String(), "--no-git")
}

func TestCompletion(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("completion", "bash"))

	assert.True(t, strings.Contains(c.stdout.String(), "bash completion"))
}

func TestPackageCompletion(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("__complete", "install", "zsh", ""))

	out := c.stdout.String()
	assert.Contains(t, out, "vim")
	assert.NotContains(t, out, "zsh\n")
}

func TestVersion(t *testing.T) {
	c := newCLI(t)

	require.NoError(t, c.run("--version"))

	assert.Contains(t, c.stdout.String(), "stowman dev (commit unknown")
}
