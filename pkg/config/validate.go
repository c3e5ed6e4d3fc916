package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that the mapping names both a source and a destination.
func (m FileMapping) Validate() error {
	return getValidator().Struct(m)
}

// String renders the mapping for error messages.
func (m FileMapping) String() string {
	return fmt.Sprintf("{src: %q, dst: %q, sudo: %t}", m.Src, m.Dst, m.Sudo)
}

// validateDocument reports special_files entries without a files key and
// file entries missing src or dst. Nothing is removed; consumers skip
// invalid entries when they reach them.
func validateDocument(doc *Document, raw map[string]interface{}) []Warning {
	var warnings []Warning

	rawSpecial, _ := raw["special_files"].(map[string]interface{})

	names := make([]string, 0, len(doc.SpecialFiles))
	for name := range doc.SpecialFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry, _ := rawSpecial[name].(map[string]interface{})
		if _, ok := entry["files"]; !ok {
			warnings = append(warnings,
				Warning(fmt.Sprintf("Package '%s' in special_files has no 'files' key", name)))
			continue
		}
		for _, m := range doc.SpecialFiles[name].Files {
			if err := m.Validate(); err != nil {
				warnings = append(warnings,
					Warning(fmt.Sprintf("Invalid file entry in '%s': %s", name, m)))
			}
		}
	}

	return warnings
}
