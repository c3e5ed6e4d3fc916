package packages

import (
	"path/filepath"

	"github.com/arthur-debert/stowman/pkg/paths"
)

// Metadata is everything the repository and configuration say about one
// package. Either location may be absent.
type Metadata struct {
	Name string

	InConfig    bool
	IsDirectory bool
	IsSudo      bool

	HasCustomTarget bool
	// CustomTarget is the package_targets value as written
	CustomTarget    string
	HasSpecialFiles bool

	// Dir is the ordinary directory when it exists
	Dir string
	// SudoDir is the privileged directory when it exists
	SudoDir string

	// Target is the absolute directory the package links into
	Target string
}

// Exists reports whether the package is known in any form.
func (m Metadata) Exists() bool {
	return m.InConfig || m.IsDirectory
}

// Location returns the existing package directory, preferring the
// privileged one.
func (m Metadata) Location() string {
	if m.SudoDir != "" {
		return m.SudoDir
	}
	return m.Dir
}

// RelLocation returns Location relative to the repository root with a
// trailing slash, or "" when there is no directory.
func (m Metadata) RelLocation(root string) string {
	loc := m.Location()
	if loc == "" {
		return ""
	}
	rel, err := filepath.Rel(root, loc)
	if err != nil {
		return loc + "/"
	}
	return rel + "/"
}

// Metadata gathers configuration membership and on-disk presence for
// name. A directory under sudo_packages/ marks the package privileged
// even when sudo_packages does not list it.
func (v *Validator) Metadata(name string) Metadata {
	m := Metadata{
		Name:     name,
		InConfig: v.cfg.InConfig(name),
		IsSudo:   v.cfg.IsSudo(name),
		Target:   v.cfg.TargetDir,
	}

	if t, ok := v.cfg.CustomTarget(name); ok {
		m.HasCustomTarget = true
		m.CustomTarget = t
		m.Target = v.cfg.TargetFor(name)
	}

	if _, ok := v.cfg.SpecialFiles[name]; ok {
		m.HasSpecialFiles = true
	}

	if dir := paths.PackageDir(v.cfg.DotfilesDir, name, false); isDir(dir) {
		m.IsDirectory = true
		m.Dir = dir
	}

	if dir := paths.PackageDir(v.cfg.DotfilesDir, name, true); isDir(dir) {
		m.IsDirectory = true
		m.SudoDir = dir
		m.IsSudo = true
	}

	return m
}
