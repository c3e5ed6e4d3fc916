package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateFile creates a file with the given content below dir, creating
// parent directories as needed.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "create parents of %s", path)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "write %s", path)
	return path
}

// CreateDir creates a directory below parent.
func CreateDir(t *testing.T, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(path, 0755), "create %s", path)
	return path
}

// CreateSymlink creates link pointing at target. The target need not exist.
func CreateSymlink(t *testing.T, target, link string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0755), "create parent of %s", link)
	require.NoError(t, os.Symlink(target, link), "symlink %s -> %s", link, target)
}

// IsSymlink reports whether path itself is a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// IsRegularFile reports whether path is a regular file, not following links.
func IsRegularFile(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode().IsRegular()
}

// ReadFile reads the content of a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, "read %s", path)
	return string(content)
}

// AssertFileContent checks that a file exists and has the expected content.
func AssertFileContent(t *testing.T, path, expected string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if assert.NoError(t, err, "File %s should exist", path) {
		assert.Equal(t, expected, string(content), "content of %s", path)
	}
}

// AssertLinksTo checks that link is a symlink resolving to the same file
// as target. Relative and absolute link texts are both accepted.
func AssertLinksTo(t *testing.T, link, target string) {
	t.Helper()

	require.True(t, IsSymlink(link), "%s should be a symlink", link)
	resolved, err := filepath.EvalSymlinks(link)
	require.NoError(t, err, "resolve %s", link)
	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err, "resolve %s", target)
	assert.Equal(t, want, resolved, "%s should point at %s", link, target)
}

// AssertNoPath checks that nothing, not even a dangling link, is at path.
func AssertNoPath(t *testing.T, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "%s should not exist", path)
}

// RequireNotRoot skips tests that rely on permission errors, which root
// never gets.
func RequireNotRoot(t *testing.T) {
	t.Helper()

	if os.Geteuid() == 0 {
		t.Skip("Test requires an unprivileged user")
	}
}
