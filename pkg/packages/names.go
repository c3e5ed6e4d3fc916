package packages

import (
	"slices"
	"strings"

	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// ForbiddenChars may not appear anywhere in a package name.
var ForbiddenChars = []string{"/", "\\", " ", "\t", "\n", ":", "*", "?", "\"", "<", ">", "|"}

// ReservedNames collide with repository bookkeeping entries.
var ReservedNames = []string{".", "..", ".git", paths.LogDirName, paths.BackupDirName, paths.SudoPackagesDir}

// ValidateNewName checks a proposed package name. Checks run in a fixed
// order and the first failure is returned as an ErrInvalidInput error
// whose message is meant for the operator.
func ValidateNewName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(errors.ErrInvalidInput, "Package name cannot be empty")
	}

	for _, c := range ForbiddenChars {
		if strings.Contains(name, c) {
			return errors.Newf(errors.ErrInvalidInput, "Package name contains invalid character: '%s'", c).
				WithDetail("character", c)
		}
	}

	if slices.Contains(ReservedNames, name) {
		return errors.Newf(errors.ErrInvalidInput, "Package name '%s' is reserved", name)
	}

	if strings.HasPrefix(name, ".") {
		return errors.New(errors.ErrInvalidInput, "Package name cannot start with '.'")
	}

	return nil
}

// Spec is a package token from the command line: either "name" or
// "name:file" selecting one privileged file mapping.
type Spec struct {
	Name string
	File string
}

// ParseSpec splits a token at its first colon.
func ParseSpec(token string) Spec {
	name, file, found := strings.Cut(token, ":")
	if !found {
		return Spec{Name: token}
	}
	return Spec{Name: name, File: file}
}

// ParseSpecs parses every token, keeping order.
func ParseSpecs(tokens []string) []Spec {
	specs := make([]Spec, 0, len(tokens))
	for _, t := range tokens {
		specs = append(specs, ParseSpec(t))
	}
	return specs
}

// String renders s back into pkg[:file] form.
func (s Spec) String() string {
	if s.File == "" {
		return s.Name
	}
	return s.Name + ":" + s.File
}

// Names returns the package names of specs, keeping order.
func Names(specs []Spec) []string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names
}
