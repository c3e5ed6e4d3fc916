package config

import (
	"slices"

	"github.com/arthur-debert/stowman/pkg/paths"
)

// Config is the resolved configuration for one invocation.
type Config struct {
	DotfilesDir string
	TargetDir   string
	HomeDir     string
	LogDir      string
	BackupDir   string

	AllPackages    []string
	SudoPackages   []string
	PackageTargets map[string]string
	SpecialFiles   map[string]SpecialPackage

	Verbose bool
	// UsedDefaults is set when the built-in package set was substituted
	// for a missing or unreadable descriptor.
	UsedDefaults bool
}

// InConfig reports whether name is listed in all_packages.
func (c *Config) InConfig(name string) bool {
	return slices.Contains(c.AllPackages, name)
}

// IsSudo reports whether name is listed in sudo_packages.
func (c *Config) IsSudo(name string) bool {
	return slices.Contains(c.SudoPackages, name)
}

// PackageDir returns the package's directory; sudo_packages membership
// selects the privileged subtree.
func (c *Config) PackageDir(name string) string {
	return paths.PackageDir(c.DotfilesDir, name, c.IsSudo(name))
}

// CustomTarget returns the package_targets override, unexpanded.
func (c *Config) CustomTarget(name string) (string, bool) {
	t, ok := c.PackageTargets[name]
	if !ok || t == "" {
		return "", false
	}
	return t, true
}

// TargetFor returns the absolute directory a package is linked into.
func (c *Config) TargetFor(name string) string {
	if t, ok := c.CustomTarget(name); ok {
		return paths.ExpandHome(t, c.HomeDir)
	}
	return c.TargetDir
}

// Mappings returns the privileged file mappings configured for name.
func (c *Config) Mappings(name string) ([]FileMapping, bool) {
	sp, ok := c.SpecialFiles[name]
	if !ok {
		return nil, false
	}
	return sp.Files, true
}

// WithVerbose returns a copy with Verbose set.
func (c *Config) WithVerbose(v bool) *Config {
	cp := c.clone()
	cp.Verbose = v
	return cp
}

// WithPackage returns a copy that knows about a freshly created package.
func (c *Config) WithPackage(name string, sudo bool, target string) *Config {
	cp := c.clone()
	if !slices.Contains(cp.AllPackages, name) {
		cp.AllPackages = append(cp.AllPackages, name)
	}
	if sudo && !slices.Contains(cp.SudoPackages, name) {
		cp.SudoPackages = append(cp.SudoPackages, name)
	}
	if target != "" {
		cp.PackageTargets[name] = target
	}
	return cp
}

// WithMappings returns a copy with name's privileged mappings replaced.
func (c *Config) WithMappings(name string, files []FileMapping) *Config {
	cp := c.clone()
	cp.SpecialFiles[name] = SpecialPackage{Files: slices.Clone(files)}
	return cp
}

func (c *Config) clone() *Config {
	cp := *c
	cp.AllPackages = slices.Clone(c.AllPackages)
	cp.SudoPackages = slices.Clone(c.SudoPackages)
	cp.PackageTargets = make(map[string]string, len(c.PackageTargets))
	for k, v := range c.PackageTargets {
		cp.PackageTargets[k] = v
	}
	cp.SpecialFiles = make(map[string]SpecialPackage, len(c.SpecialFiles))
	for k, v := range c.SpecialFiles {
		cp.SpecialFiles[k] = SpecialPackage{Files: slices.Clone(v.Files)}
	}
	return &cp
}
