package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/stowman/pkg/errors"
)

// EnvPrefix marks environment variables that override settings, e.g.
// STOWMAN_LINKER or STOWMAN_DOTFILES_DIR.
const EnvPrefix = "STOWMAN_"

// Settings configure the tool itself rather than the repository.
type Settings struct {
	// Linker is the symlink-farm binary
	Linker string `koanf:"linker" validate:"required"`
	// Elevator wraps privileged commands
	Elevator string `koanf:"elevator" validate:"required"`
	// VCS is the version-control binary used after adopt
	VCS string `koanf:"vcs" validate:"required"`
	// Color is auto, always or never
	Color string `koanf:"color" validate:"oneof=auto always never"`
	// DotfilesDir pins the repository location
	DotfilesDir string `koanf:"dotfiles_dir"`
	// Styles is an optional YAML palette replacing the built-in colors
	Styles string `koanf:"styles"`
}

// DefaultSettings returns the built-in tool settings.
func DefaultSettings() Settings {
	return Settings{
		Linker:   "stow",
		Elevator: "sudo",
		VCS:      "git",
		Color:    "auto",
	}
}

// SettingsPath returns $XDG_CONFIG_HOME/stowman/config.toml.
func SettingsPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, "stowman", "config.toml")
}

// LoadSettings layers defaults, the settings file at path (optional; an
// empty path means SettingsPath) and STOWMAN_* environment variables.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		path = SettingsPath()
	}

	defaults := DefaultSettings()
	k := koanf.New(keyDelim)

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"linker":       defaults.Linker,
		"elevator":     defaults.Elevator,
		"vcs":          defaults.VCS,
		"color":        defaults.Color,
		"dotfiles_dir": defaults.DotfilesDir,
		"styles":       defaults.Styles,
	}, keyDelim), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load default settings: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Settings{}, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load settings from %s", path)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, keyDelim, func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigValid, "failed to decode settings")
	}

	if err := getValidator().Struct(s); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrConfigValid, "invalid settings")
	}

	return s, nil
}
