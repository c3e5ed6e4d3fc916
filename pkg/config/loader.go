package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// keyDelim separates nested keys. Package names may contain dots
// (p10k.zsh) but never slashes.
const keyDelim = "/"

// Warning is a non-fatal problem found while loading the descriptor.
type Warning string

// LoadOptions controls Load.
type LoadOptions struct {
	DotfilesDir string
	// HomeDir expands ~ in targets; empty means the user's home.
	HomeDir string
	Verbose bool
}

// Load builds the Config for a repository. It never fails: a missing
// descriptor yields the built-in defaults, and an unreadable one yields
// the defaults plus warnings.
func Load(opts LoadOptions) (*Config, []Warning) {
	logger := logging.GetLogger("config")

	home := opts.HomeDir
	if home == "" {
		home = xdg.Home
	}

	var warnings []Warning
	doc := DefaultDocument()
	usedDefaults := true

	path := paths.ConfigFilePath(opts.DotfilesDir)
	if _, err := os.Stat(path); err == nil {
		loaded, raw, err := readDocument(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Falling back to default configuration")
			warnings = append(warnings,
				Warning(fmt.Sprintf("Could not load config file: %v", err)),
				Warning("Using default configuration"))
		} else {
			doc = loaded
			usedDefaults = false
			warnings = append(warnings, validateDocument(doc, raw)...)
		}
	} else {
		logger.Debug().Str("path", path).Msg("No descriptor found, using defaults")
	}

	doc.normalize()

	cfg := &Config{
		DotfilesDir:    opts.DotfilesDir,
		TargetDir:      paths.ExpandHome(doc.DefaultTarget, home),
		HomeDir:        home,
		LogDir:         filepath.Join(opts.DotfilesDir, paths.LogDirName),
		BackupDir:      filepath.Join(opts.DotfilesDir, paths.BackupDirName),
		AllPackages:    doc.AllPackages,
		SudoPackages:   doc.SudoPackages,
		PackageTargets: doc.PackageTargets,
		SpecialFiles:   doc.SpecialFiles,
		Verbose:        opts.Verbose,
		UsedDefaults:   usedDefaults,
	}

	logger.Debug().
		Str("dotfiles", cfg.DotfilesDir).
		Str("target", cfg.TargetDir).
		Int("packages", len(cfg.AllPackages)).
		Bool("defaults", usedDefaults).
		Msg("Configuration loaded")

	return cfg, warnings
}

// readDocument parses a descriptor. The raw map is returned as well so
// validation can tell a missing key from an empty one. Members outside
// the known shape are kept on the document's Extra fields.
func readDocument(path string) (*Document, map[string]interface{}, error) {
	k := koanf.New(keyDelim)
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, nil, err
	}

	var doc Document
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &doc,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &doc, unmarshalConf); err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.captureExtras(data); err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	return &doc, k.Raw(), nil
}
