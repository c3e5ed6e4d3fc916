// pkg/conflicts/conflicts_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.TestEnvironment (real filesystem)
// PURPOSE: Test package file enumeration, conflict detection and link states

package conflicts_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/conflicts"
	"github.com/arthur-debert/stowman/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*testutil.TestEnvironment, *testutil.TestPackage) {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	env.WriteConfig(&config.Document{AllPackages: []string{"zsh"}})
	pkg := env.Package("zsh").
		AddFile(".zshrc", "rc").
		AddFile(".config/zsh/aliases.zsh", "alias").
		AddFile(".config/zsh/.gitkeep", "")
	return env, pkg
}

func TestPackageFiles(t *testing.T) {
	env, _ := setup(t)
	cfg := env.Config()

	files, err := conflicts.PackageFiles(cfg, "zsh", false)
	require.NoError(t, err)
	assert.Equal(t, []string{".config/zsh/aliases.zsh", ".zshrc"}, files)

	files, err = conflicts.PackageFiles(cfg, "zsh", true)
	require.NoError(t, err)
	assert.Equal(t, []string{".config/zsh/.gitkeep", ".config/zsh/aliases.zsh", ".zshrc"}, files)

	files, err = conflicts.PackageFiles(cfg, "absent", false)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCheck_EmptyTargetHasNoConflicts(t *testing.T) {
	env, _ := setup(t)

	found, err := conflicts.Check(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCheck_RegularFilesConflict(t *testing.T) {
	env, pkg := setup(t)
	existing := env.HomeFile(".zshrc", "old rc")

	found, err := conflicts.Check(env.Config(), "zsh")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, conflicts.Conflict{Target: existing, Source: pkg.Path(".zshrc")}, found[0])
	assert.Equal(t, []string{existing}, conflicts.Targets(found))
}

func TestCheck_SymlinksNeverConflict(t *testing.T) {
	env, pkg := setup(t)

	// Correct link, wrong link and dangling link
	testutil.CreateSymlink(t, pkg.Path(".zshrc"), env.HomePath(".zshrc"))
	testutil.CreateSymlink(t, "/nonexistent/aliases", env.HomePath(".config/zsh/aliases.zsh"))

	found, err := conflicts.Check(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, os.Remove(env.HomePath(".zshrc")))
	other := env.HomeFile("elsewhere", "x")
	testutil.CreateSymlink(t, other, env.HomePath(".zshrc"))

	found, err = conflicts.Check(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCheck_FoldedDirectoryIsNotAConflict(t *testing.T) {
	env, pkg := setup(t)
	require.NoError(t, os.MkdirAll(env.HomePath(".config"), 0755))
	testutil.CreateSymlink(t, pkg.Path(".config/zsh"), env.HomePath(".config/zsh"))

	found, err := conflicts.Check(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Empty(t, found)

	states, err := conflicts.Inspect(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, conflicts.StateLinked, states[0].State)
}

func TestCheck_UsesCustomTarget(t *testing.T) {
	env, _ := setup(t)
	env.WriteConfig(&config.Document{
		AllPackages:    []string{"zsh"},
		PackageTargets: map[string]string{"zsh": "~/alt"},
	})
	env.HomeFile(".zshrc", "not in the custom target")
	blocked := env.HomeFile("alt/.zshrc", "blocked")

	found, err := conflicts.Check(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, []string{blocked}, conflicts.Targets(found))
}

func TestInspect_States(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteConfig(&config.Document{AllPackages: []string{"vim"}})
	pkg := env.Package("vim").
		AddFile("a", "a").
		AddFile("b", "b").
		AddFile("c", "c").
		AddFile("d", "d").
		AddFile("e", "e")

	testutil.CreateSymlink(t, pkg.Path("a"), env.HomePath("a"))
	testutil.CreateSymlink(t, env.HomeFile("other", "o"), env.HomePath("b"))
	env.HomeFile("c", "blocked")
	testutil.CreateSymlink(t, filepath.Join(env.Root, "gone"), env.HomePath("e"))

	states, err := conflicts.Inspect(env.Config(), "vim")
	require.NoError(t, err)
	require.Len(t, states, 5)

	got := map[string]conflicts.State{}
	for _, s := range states {
		got[s.Rel] = s.State
	}
	assert.Equal(t, map[string]conflicts.State{
		"a": conflicts.StateLinked,
		"b": conflicts.StateWrongTarget,
		"c": conflicts.StateBlocked,
		"d": conflicts.StateMissing,
		"e": conflicts.StateBroken,
	}, got)
	assert.Equal(t, filepath.Join(env.Root, "gone"), states[4].LinkText)
}

func TestRemainingSymlinks(t *testing.T) {
	env, pkg := setup(t)
	testutil.CreateSymlink(t, pkg.Path(".zshrc"), env.HomePath(".zshrc"))
	testutil.CreateSymlink(t, "/elsewhere", env.HomePath(".config/zsh/aliases.zsh"))

	remaining, err := conflicts.RemainingSymlinks(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, []string{env.HomePath(".zshrc")}, remaining)

	require.NoError(t, os.Remove(env.HomePath(".zshrc")))
	remaining, err = conflicts.RemainingSymlinks(env.Config(), "zsh")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	remaining, err = conflicts.RemainingSymlinks(env.Config(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRemainingSymlinks_PrefersPrivilegedDirectory(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteConfig(&config.Document{AllPackages: []string{}})
	sudoPkg := env.SudoPackage("boot").AddFile("cfg", "x")
	testutil.CreateSymlink(t, sudoPkg.Path("cfg"), env.HomePath("cfg"))

	remaining, err := conflicts.RemainingSymlinks(env.Config(), "boot")
	require.NoError(t, err)
	assert.Equal(t, []string{env.HomePath("cfg")}, remaining)
}
