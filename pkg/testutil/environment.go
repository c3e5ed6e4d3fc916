// pkg/testutil/environment.go
// DEPENDENCIES: pkg/config
// PURPOSE: Isolated repository + home directory for workflow tests

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// TestEnvironment is a temporary dotfiles repository next to a temporary
// home directory. HOME, DOTFILES_ROOT and the XDG directories point into
// it for the duration of the test.
type TestEnvironment struct {
	Root        string
	DotfilesDir string
	HomeDir     string

	t *testing.T
}

// NewTestEnvironment creates the directories and environment variables.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	// Resolve /tmp style symlinks so path comparisons are stable.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	env := &TestEnvironment{
		Root:        root,
		DotfilesDir: filepath.Join(root, "dotfiles"),
		HomeDir:     filepath.Join(root, "home"),
		t:           t,
	}

	require.NoError(t, os.MkdirAll(env.DotfilesDir, 0755))
	require.NoError(t, os.MkdirAll(env.HomeDir, 0755))

	t.Setenv(paths.EnvHome, env.HomeDir)
	t.Setenv(paths.EnvDotfilesRoot, env.DotfilesDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.HomeDir, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("NO_COLOR", "1")

	return env
}

// WriteConfig writes doc as the repository descriptor.
func (env *TestEnvironment) WriteConfig(doc *config.Document) {
	env.t.Helper()
	require.NoError(env.t, config.WriteDocument(env.DotfilesDir, doc))
}

// WriteRawConfig writes content verbatim as the repository descriptor.
func (env *TestEnvironment) WriteRawConfig(content string) {
	env.t.Helper()
	require.NoError(env.t, os.WriteFile(paths.ConfigFilePath(env.DotfilesDir), []byte(content), 0644))
}

// Config loads the repository configuration against the test home.
func (env *TestEnvironment) Config() *config.Config {
	env.t.Helper()
	cfg, warnings := config.Load(config.LoadOptions{
		DotfilesDir: env.DotfilesDir,
		HomeDir:     env.HomeDir,
	})
	require.Empty(env.t, warnings, "unexpected configuration warnings")
	return cfg
}

// Package creates (or reuses) an ordinary package directory.
func (env *TestEnvironment) Package(name string) *TestPackage {
	return env.newPackage(name, false)
}

// SudoPackage creates (or reuses) a privileged package directory.
func (env *TestEnvironment) SudoPackage(name string) *TestPackage {
	return env.newPackage(name, true)
}

func (env *TestEnvironment) newPackage(name string, sudo bool) *TestPackage {
	env.t.Helper()
	dir := paths.PackageDir(env.DotfilesDir, name, sudo)
	require.NoError(env.t, os.MkdirAll(dir, 0755))
	return &TestPackage{Name: name, Dir: dir, t: env.t}
}

// HomeFile creates a regular file below the home directory.
func (env *TestEnvironment) HomeFile(rel, content string) string {
	env.t.Helper()
	return CreateFile(env.t, env.HomeDir, rel, content)
}

// HomePath joins rel onto the home directory.
func (env *TestEnvironment) HomePath(rel string) string {
	return filepath.Join(env.HomeDir, rel)
}

// RepoPath joins rel onto the repository root.
func (env *TestEnvironment) RepoPath(rel string) string {
	return filepath.Join(env.DotfilesDir, rel)
}

// TestPackage is a package directory inside a TestEnvironment.
type TestPackage struct {
	Name string
	Dir  string

	t *testing.T
}

// AddFile adds a file below the package root and returns its path.
func (p *TestPackage) AddFile(rel, content string) *TestPackage {
	p.t.Helper()
	CreateFile(p.t, p.Dir, rel, content)
	return p
}

// Path joins rel onto the package root.
func (p *TestPackage) Path(rel string) string {
	return filepath.Join(p.Dir, rel)
}
