// Package packages answers questions about package names and directories:
// whether a package exists, whether a new name is legal and available,
// and what the repository and configuration know about a package.
package packages

import (
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// maxSuggestions caps the "did you mean" list
const maxSuggestions = 3

// maxTypoDistance bounds the edit distance of typo suggestions
const maxTypoDistance = 2

// Reporter receives per-package validation messages.
type Reporter interface {
	Error(format string, args ...interface{})
	Info(format string, args ...interface{})
}

// Validator checks package names against the repository.
type Validator struct {
	cfg *config.Config
	out Reporter
}

// NewValidator creates a validator for cfg. out may be nil.
func NewValidator(cfg *config.Config, out Reporter) *Validator {
	return &Validator{cfg: cfg, out: out}
}

// IsValid reports whether name is a legal package name whose directory
// exists. Membership in sudo_packages selects the privileged subtree. A
// missing package is reported with close matches from all_packages.
func (v *Validator) IsValid(name string) bool {
	if err := ValidateNewName(name); err != nil {
		if v.out != nil {
			v.out.Error("Invalid package name '%s': %s", name, errors.Reason(err))
		}
		return false
	}

	dir := v.cfg.PackageDir(name)
	if isDir(dir) {
		return true
	}

	logger := logging.GetLogger("packages")
	logger.Debug().
		Str("package", name).
		Str("dir", dir).
		Msg("Package directory not found")

	if v.out != nil {
		v.out.Error("Package '%s' not found in %s", name, v.cfg.DotfilesDir)
		if suggestions := v.Suggest(name); len(suggestions) > 0 {
			v.out.Info("Did you mean: %s?", strings.Join(suggestions, ", "))
		}
	}
	return false
}

// Filter keeps the names that pass IsValid, in order.
func (v *Validator) Filter(names []string) []string {
	var valid []string
	for _, n := range names {
		if v.IsValid(n) {
			valid = append(valid, n)
		}
	}
	return valid
}

// FilterSpecs keeps the specs whose package passes IsValid, in order.
func (v *Validator) FilterSpecs(specs []Spec) []Spec {
	var valid []Spec
	for _, s := range specs {
		if v.IsValid(s.Name) {
			valid = append(valid, s)
		}
	}
	return valid
}

// Suggest returns up to three configured package names close to name.
// Names containing its letters in order come first, best first; typos
// such as transpositions follow, nearest first.
func (v *Validator) Suggest(name string) []string {
	if name == "" {
		return nil
	}
	seen := map[string]bool{name: true}
	var out []string
	add := func(candidate string) bool {
		if !seen[candidate] {
			seen[candidate] = true
			out = append(out, candidate)
		}
		return len(out) == maxSuggestions
	}

	for _, m := range sfuzzy.Find(name, v.cfg.AllPackages) {
		if add(m.Str) {
			return out
		}
	}

	limit := maxTypoDistance
	if len(name) <= maxTypoDistance {
		limit = len(name) - 1
	}
	type near struct {
		name string
		dist int
	}
	var typos []near
	for _, candidate := range v.cfg.AllPackages {
		if d := fuzzy.LevenshteinDistance(name, candidate); d <= limit {
			typos = append(typos, near{candidate, d})
		}
	}
	sort.SliceStable(typos, func(i, j int) bool { return typos[i].dist < typos[j].dist })
	for _, t := range typos {
		if add(t.name) {
			break
		}
	}
	return out
}

// CheckExists reports whether a new package called name would collide
// with a configured name or a directory under either package root. The
// string says which.
func (v *Validator) CheckExists(name string) (bool, string) {
	for _, sudo := range []bool{false, true} {
		dir := paths.PackageDir(v.cfg.DotfilesDir, name, sudo)
		if _, err := os.Lstat(dir); err == nil {
			return true, "Directory already exists: " + dir
		}
	}
	if v.cfg.InConfig(name) {
		return true, "Package '" + name + "' already listed in configuration"
	}
	return false, ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
