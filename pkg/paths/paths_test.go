// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: pkg/testutil (FakeRunner)
// PURPOSE: Test repository discovery and layout helpers

package paths_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stowman/pkg/paths"
	"github.com/arthur-debert/stowman/pkg/runner"
	"github.com/arthur-debert/stowman/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ExplicitRoot(t *testing.T) {
	root := t.TempDir()
	p, err := paths.New(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, root, p.DotfilesRoot())
	assert.False(t, p.UsedFallback())
	assert.Equal(t, filepath.Join(root, ".dotfiles-config.json"), p.ConfigFile())
	assert.Equal(t, filepath.Join(root, ".dotfiles-config.json.backup"), p.ConfigBackupFile())
	assert.Equal(t, filepath.Join(root, ".logs"), p.LogDir())
	assert.Equal(t, filepath.Join(root, ".backups"), p.BackupDir())
	assert.Equal(t, filepath.Join(root, "zsh"), p.PackagePath("zsh", false))
	assert.Equal(t, filepath.Join(root, "sudo_packages", "etc"), p.PackagePath("etc", true))
}

func TestNew_EnvironmentVariable(t *testing.T) {
	root := t.TempDir()
	t.Setenv(paths.EnvDotfilesRoot, root)

	fake := testutil.NewFakeRunner()
	p, err := paths.New(context.Background(), "", fake)
	require.NoError(t, err)

	assert.Equal(t, root, p.DotfilesRoot())
	assert.Empty(t, fake.Calls, "git should not be consulted when DOTFILES_ROOT is set")
}

func TestNew_GitRoot(t *testing.T) {
	t.Setenv(paths.EnvDotfilesRoot, "")
	gitRoot := t.TempDir()

	fake := testutil.NewFakeRunner()
	fake.Handler = func(cmd runner.Command) (runner.Result, error) {
		return runner.Result{Stdout: gitRoot + "\n"}, nil
	}

	p, err := paths.New(context.Background(), "", fake)
	require.NoError(t, err)
	assert.Equal(t, gitRoot, p.DotfilesRoot())
	assert.False(t, p.UsedFallback())
	assert.True(t, fake.HasCall("git rev-parse --show-toplevel"))
}

func TestNew_FallbackToCwd(t *testing.T) {
	t.Setenv(paths.EnvDotfilesRoot, "")

	fake := testutil.NewFakeRunner()
	fake.Handler = func(cmd runner.Command) (runner.Result, error) {
		return testutil.Fail(cmd, 128, "fatal: not a git repository")
	}

	p, err := paths.New(context.Background(), "", fake)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, p.DotfilesRoot())
	assert.True(t, p.UsedFallback())
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"~", "/home/u"},
		{"~/", "/home/u"},
		{"~/.config", "/home/u/.config"},
		{"/etc", "/etc"},
		{"relative", "relative"},
		{"~other/x", "~other/x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, paths.ExpandHome(tt.in, "/home/u"))
		})
	}
}
