// pkg/config/loader_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: real filesystem (t.TempDir)
// PURPOSE: Test descriptor loading, defaults, warnings and round-trips

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescriptor(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dotfiles-config.json"), []byte(content), 0644))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, warnings := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u"})

	assert.Empty(t, warnings)
	assert.True(t, cfg.UsedDefaults)
	assert.Equal(t, []string{"zsh", "p10k.zsh", "vim", "tmux", "wezterm", "ghostty", "kitty", "starship", "etc"}, cfg.AllPackages)
	assert.Equal(t, []string{"etc"}, cfg.SudoPackages)
	assert.Empty(t, cfg.PackageTargets)
	assert.Empty(t, cfg.SpecialFiles)
	assert.Equal(t, "/home/u", cfg.TargetDir)
	assert.Equal(t, filepath.Join(dir, ".logs"), cfg.LogDir)
	assert.Equal(t, filepath.Join(dir, ".backups"), cfg.BackupDir)
}

func TestLoad_InvalidJSONFallsBackWithWarning(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{"all_packages": ["zsh",`)

	cfg, warnings := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u"})

	require.Len(t, warnings, 2)
	assert.True(t, strings.HasPrefix(string(warnings[0]), "Could not load config file"))
	assert.Equal(t, config.Warning("Using default configuration"), warnings[1])
	assert.True(t, cfg.UsedDefaults)
	assert.Equal(t, config.DefaultDocument().AllPackages, cfg.AllPackages)
}

func TestLoad_PresentFile(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{
  "default_target": "~/sandbox",
  "all_packages": ["vim", "p10k.zsh", "etc"],
  "sudo_packages": ["etc"],
  "package_targets": {"p10k.zsh": "~/.p10k"},
  "special_files": {
    "etc": {"files": [{"src": "logid.cfg", "dst": "/etc/logid.cfg", "sudo": true}]}
  }
}`)

	cfg, warnings := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u", Verbose: true})

	assert.Empty(t, warnings)
	assert.False(t, cfg.UsedDefaults)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/home/u/sandbox", cfg.TargetDir)
	assert.Equal(t, []string{"vim", "p10k.zsh", "etc"}, cfg.AllPackages)
	assert.Equal(t, "~/.p10k", cfg.PackageTargets["p10k.zsh"])
	assert.Equal(t, "/home/u/.p10k", cfg.TargetFor("p10k.zsh"))
	assert.Equal(t, "/home/u/sandbox", cfg.TargetFor("vim"))

	mappings, ok := cfg.Mappings("etc")
	require.True(t, ok)
	assert.Equal(t, []config.FileMapping{{Src: "logid.cfg", Dst: "/etc/logid.cfg", Sudo: true}}, mappings)
	assert.Equal(t, filepath.Join(dir, "sudo_packages", "etc"), cfg.PackageDir("etc"))
	assert.Equal(t, filepath.Join(dir, "vim"), cfg.PackageDir("vim"))
}

func TestLoad_MissingKeysDefaultToEmpty(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{"all_packages": ["tmux"]}`)

	cfg, warnings := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u"})

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"tmux"}, cfg.AllPackages)
	assert.Empty(t, cfg.SudoPackages)
	assert.Empty(t, cfg.PackageTargets)
	assert.Empty(t, cfg.SpecialFiles)
	assert.Equal(t, "/home/u", cfg.TargetDir)
}

func TestLoad_AbsoluteTarget(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{"default_target": "/srv/home", "all_packages": []}`)

	cfg, _ := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u"})
	assert.Equal(t, "/srv/home", cfg.TargetDir)
}

func TestLoad_SpecialFilesWarnings(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{
  "all_packages": ["etc", "boot"],
  "sudo_packages": ["etc", "boot"],
  "special_files": {
    "boot": {},
    "etc": {"files": [
      {"src": "logid.cfg", "dst": "/etc/logid.cfg", "sudo": true},
      {"src": "broken.cfg"}
    ]}
  }
}`)

	cfg, warnings := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u"})

	require.Len(t, warnings, 2)
	assert.Equal(t, config.Warning("Package 'boot' in special_files has no 'files' key"), warnings[0])
	assert.Contains(t, string(warnings[1]), "Invalid file entry in 'etc'")
	assert.Contains(t, string(warnings[1]), "broken.cfg")

	// Warnings never drop entries; consumers skip them at use time.
	mappings, _ := cfg.Mappings("etc")
	assert.Len(t, mappings, 2)
	assert.Error(t, mappings[1].Validate())
	assert.NoError(t, mappings[0].Validate())
}

func TestRoundTrip_WriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	doc := &config.Document{
		DefaultTarget: "~",
		AllPackages:   []string{"zsh", "kitty", "p10k.zsh", "etc", "aider"},
		SudoPackages:  []string{"etc"},
		PackageTargets: map[string]string{
			"p10k.zsh": "~/.config/p10k",
			"kitty":    "/opt/kitty",
		},
		SpecialFiles: map[string]config.SpecialPackage{
			"etc": {Files: []config.FileMapping{
				{Src: "logid.cfg", Dst: "/etc/logid.cfg", Sudo: true},
				{Src: "hosts", Dst: "/etc/hosts", Sudo: true},
			}},
		},
	}
	require.NoError(t, config.WriteDocument(dir, doc))

	cfg, warnings := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u"})
	require.Empty(t, warnings)

	assert.Equal(t, doc.AllPackages, cfg.AllPackages, "all_packages order must survive")
	assert.ElementsMatch(t, doc.SudoPackages, cfg.SudoPackages)
	assert.Equal(t, doc.PackageTargets, cfg.PackageTargets)
	assert.Equal(t, doc.SpecialFiles, cfg.SpecialFiles)
}

func TestWithPackage_DoesNotMutateOriginal(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(config.LoadOptions{DotfilesDir: dir, HomeDir: "/home/u"})

	derived := cfg.WithPackage("aider", false, "~/work")

	assert.False(t, cfg.InConfig("aider"))
	assert.True(t, derived.InConfig("aider"))
	assert.Equal(t, "/home/u/work", derived.TargetFor("aider"))
	assert.Equal(t, "/home/u", cfg.TargetFor("aider"))

	sudo := cfg.WithPackage("boot", true, "")
	assert.True(t, sudo.IsSudo("boot"))
	assert.False(t, cfg.IsSudo("boot"))

	mapped := sudo.WithMappings("boot", []config.FileMapping{{Src: "a", Dst: "/boot/a", Sudo: true}})
	_, ok := sudo.Mappings("boot")
	assert.False(t, ok)
	files, ok := mapped.Mappings("boot")
	assert.True(t, ok)
	assert.Len(t, files, 1)

	assert.True(t, cfg.WithVerbose(true).Verbose)
	assert.False(t, cfg.Verbose)
}
