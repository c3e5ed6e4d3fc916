// Package conflicts compares a package's files with what is on disk at
// its install target.
//
// A conflict is a regular file (or directory) occupying a path the
// package would link. Symlinks are never conflicts, whatever they point
// at: the linker itself decides what to do with them. When the linker
// folded a whole directory into one link, a path below it resolves into
// the package and is reported as linked.
package conflicts

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// Conflict pairs an existing target path with the repository file that
// would replace it.
type Conflict struct {
	Target string
	Source string
}

// State is the install state of one package file.
type State string

const (
	// StateLinked: the target is a symlink to the package file
	StateLinked State = "linked"
	// StateWrongTarget: the target is a symlink to something else
	StateWrongTarget State = "wrong-target"
	// StateBlocked: a regular file or directory occupies the target
	StateBlocked State = "blocked"
	// StateMissing: nothing at the target
	StateMissing State = "missing"
	// StateBroken: the target is a dangling symlink
	StateBroken State = "broken"
)

// FileState is the observed state of one package file.
type FileState struct {
	// Rel is the path relative to the package root
	Rel    string
	Source string
	Target string
	State  State
	// LinkText is the raw symlink text for linked, wrong and broken links
	LinkText string
}

// PackageFiles lists the regular files below the package directory as
// sorted relative paths. Placeholder files are skipped unless asked for.
// A missing package directory yields no files.
func PackageFiles(cfg *config.Config, pkg string, includePlaceholders bool) ([]string, error) {
	return listFiles(cfg.PackageDir(pkg), includePlaceholders)
}

func listFiles(root string, includePlaceholders bool) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !includePlaceholders && d.Name() == paths.PlaceholderFile {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Check returns the package files whose target path is occupied by
// something other than a symlink.
func Check(cfg *config.Config, pkg string) ([]Conflict, error) {
	files, err := PackageFiles(cfg, pkg, false)
	if err != nil {
		return nil, err
	}

	root := cfg.PackageDir(pkg)
	target := cfg.TargetFor(pkg)

	var conflicts []Conflict
	for _, rel := range files {
		src := filepath.Join(root, rel)
		dst := filepath.Join(target, rel)

		info, err := os.Lstat(dst)
		if err != nil || info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if sameFile(dst, src) {
			continue
		}
		conflicts = append(conflicts, Conflict{Target: dst, Source: src})
	}

	logger := logging.GetLogger("conflicts")
	logger.Debug().
		Str("package", pkg).
		Int("files", len(files)).
		Int("conflicts", len(conflicts)).
		Msg("Conflict check complete")

	return conflicts, nil
}

// Targets returns the target paths of conflicts, in order.
func Targets(conflicts []Conflict) []string {
	out := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, c.Target)
	}
	return out
}

// RemainingSymlinks returns the target paths that are still symlinks
// into the package. The privileged directory is preferred when both
// locations exist. A package with no directory has none.
func RemainingSymlinks(cfg *config.Config, pkg string) ([]string, error) {
	root := paths.PackageDir(cfg.DotfilesDir, pkg, true)
	if _, err := os.Stat(root); err != nil {
		root = paths.PackageDir(cfg.DotfilesDir, pkg, false)
	}
	files, err := listFiles(root, false)
	if err != nil {
		return nil, err
	}

	target := cfg.TargetFor(pkg)
	var remaining []string
	for _, rel := range files {
		dst := filepath.Join(target, rel)
		info, err := os.Lstat(dst)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		if sameFile(dst, filepath.Join(root, rel)) {
			remaining = append(remaining, dst)
		}
	}
	return remaining, nil
}

// Inspect reports the state of every package file at its target.
func Inspect(cfg *config.Config, pkg string) ([]FileState, error) {
	files, err := PackageFiles(cfg, pkg, false)
	if err != nil {
		return nil, err
	}

	root := cfg.PackageDir(pkg)
	target := cfg.TargetFor(pkg)

	states := make([]FileState, 0, len(files))
	for _, rel := range files {
		fsState := FileState{
			Rel:    rel,
			Source: filepath.Join(root, rel),
			Target: filepath.Join(target, rel),
		}
		fsState.State, fsState.LinkText = stateOf(fsState.Target, fsState.Source)
		states = append(states, fsState)
	}
	return states, nil
}

func stateOf(dst, src string) (State, string) {
	info, err := os.Lstat(dst)
	if err != nil {
		return StateMissing, ""
	}

	if info.Mode()&os.ModeSymlink == 0 {
		if sameFile(dst, src) {
			return StateLinked, ""
		}
		return StateBlocked, ""
	}

	text, _ := os.Readlink(dst)
	if _, err := os.Stat(dst); err != nil {
		return StateBroken, text
	}
	if sameFile(dst, src) {
		return StateLinked, text
	}
	return StateWrongTarget, text
}

// sameFile reports whether both paths resolve to the same location.
func sameFile(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		return false
	}
	return ra == rb
}
