package create

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/filesystem"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// Kind is the directory flavor of a new package.
type Kind string

const (
	// KindXDG nests files under .config/
	KindXDG Kind = "xdg"
	// KindSimple mirrors a home-relative path
	KindSimple Kind = "simple"
	// KindSudo is a privileged package under sudo_packages/
	KindSudo Kind = "sudo"
)

// Layout is the skeleton a new package gets.
type Layout struct {
	Kind Kind
	// Rel is the directory below the package root that mirrors the
	// source; empty for the package root itself
	Rel string
	// Source is the absolute source path, empty when none was given
	Source string
}

// InferLayout picks the layout for a package created from an optional
// source path. A path under ~/.config is XDG, another home path is
// simple and anything outside home is privileged. sudo forces the
// privileged layout. For a source that is a regular file the layout
// mirrors its parent directory.
func InferLayout(name, from, home string, sudo bool) Layout {
	if from == "" {
		kind := KindXDG
		rel := filepath.Join(paths.XDGConfigDir, name)
		if sudo {
			kind, rel = KindSudo, ""
		}
		return Layout{Kind: kind, Rel: rel}
	}

	src := paths.ExpandHome(from, home)
	if abs, err := filepath.Abs(src); err == nil {
		src = abs
	}
	layout := Layout{Source: src}

	if sudo {
		layout.Kind = KindSudo
		return layout
	}

	dir := src
	if info, err := os.Stat(src); err == nil && !info.IsDir() {
		dir = filepath.Dir(src)
	}

	rel, ok := underHome(dir, home)
	if !ok {
		layout.Kind = KindSudo
		return layout
	}

	if rel == "." {
		rel = ""
	}
	layout.Rel = rel
	if first, _, _ := strings.Cut(filepath.ToSlash(rel), "/"); first == paths.XDGConfigDir {
		layout.Kind = KindXDG
	} else {
		layout.Kind = KindSimple
	}
	return layout
}

// Privileged reports whether the package goes under sudo_packages/.
func (l Layout) Privileged() bool {
	return l.Kind == KindSudo
}

// Label is the package type shown in the preview.
func (l Layout) Label() string {
	switch l.Kind {
	case KindSudo:
		return "sudo package"
	case KindSimple:
		return "simple"
	default:
		return "XDG"
	}
}

// Display renders the skeleton relative to the repository root.
func (l Layout) Display(name string) string {
	if l.Privileged() {
		return paths.SudoPackagesDir + "/" + name + "/"
	}
	if l.Rel == "" {
		return name + "/"
	}
	return name + "/" + filepath.ToSlash(l.Rel) + "/"
}

func underHome(path, home string) (string, bool) {
	rel, err := filepath.Rel(home, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// skeleton is what makeSkeleton created on disk.
type skeleton struct {
	// Base is the package root
	Base string
	// Leaf is the deepest directory, holding the placeholder
	Leaf string
	// Dirs lists every directory created, outermost first
	Dirs []string
}

func makeSkeleton(dotfilesDir, name string, layout Layout) (*skeleton, error) {
	base := paths.PackageDir(dotfilesDir, name, layout.Privileged())
	leaf := filepath.Join(base, layout.Rel)
	sk := &skeleton{Base: base, Leaf: leaf}

	for dir := leaf; ; dir = filepath.Dir(dir) {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		sk.Dirs = append([]string{dir}, sk.Dirs...)
		if dir == base {
			break
		}
	}

	if err := os.MkdirAll(leaf, 0755); err != nil {
		return sk, errors.Wrap(err, errors.ErrDirCreate, "failed to create package directories").
			WithDetail("path", leaf)
	}
	if err := os.WriteFile(filepath.Join(leaf, paths.PlaceholderFile), nil, 0644); err != nil {
		return sk, errors.Wrap(err, errors.ErrDirCreate, "failed to create placeholder").
			WithDetail("path", leaf)
	}
	return sk, nil
}

// seedPlaceholders creates an empty file in the package for every
// regular file of the source, so the linker's adopt mode finds them as
// conflicts and moves the real files in. It returns the seeded paths
// relative to the package root.
func seedPlaceholders(sk *skeleton, src string) ([]string, error) {
	var seeded []string
	err := walkSource(src, func(path, rel string) error {
		dst := filepath.Join(sk.Leaf, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, nil, 0644); err != nil {
			return err
		}
		relToBase, _ := filepath.Rel(sk.Base, dst)
		seeded = append(seeded, relToBase)
		return nil
	})
	if err != nil {
		return seeded, errors.Wrap(err, errors.ErrFileCopy, "failed to seed package files")
	}
	dropPlaceholder(sk, len(seeded))
	return seeded, nil
}

// importFiles copies the source files into a privileged package and
// returns the mappings that install them back where they came from.
func importFiles(sk *skeleton, src, home string) ([]config.FileMapping, error) {
	_, inHome := underHome(src, home)
	var mappings []config.FileMapping
	err := walkSource(src, func(path, rel string) error {
		if err := filesystem.CopyFile(path, filepath.Join(sk.Leaf, rel)); err != nil {
			return err
		}
		mappings = append(mappings, config.FileMapping{
			Src:  filepath.ToSlash(rel),
			Dst:  path,
			Sudo: !inHome,
		})
		return nil
	})
	if err != nil {
		return mappings, errors.Wrap(err, errors.ErrFileCopy, "failed to import files")
	}
	dropPlaceholder(sk, len(mappings))
	return mappings, nil
}

func dropPlaceholder(sk *skeleton, files int) {
	if files > 0 {
		_ = os.Remove(filepath.Join(sk.Leaf, paths.PlaceholderFile))
	}
}

// walkSource calls fn for every regular file of src with its path
// relative to the mirrored directory. A file source yields itself.
// Version-control metadata is skipped.
func walkSource(src string, fn func(path, rel string) error) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fn(src, filepath.Base(src))
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return fn(path, rel)
	})
}
