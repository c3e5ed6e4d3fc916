package config

import (
	"bytes"
	"encoding/json"
	"os"
	"slices"

	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/filesystem"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// FileMapping installs one file of a privileged package.
type FileMapping struct {
	// Src is relative to sudo_packages/<package>/
	Src string `json:"src" koanf:"src" validate:"required"`
	// Dst is the absolute destination path
	Dst  string `json:"dst" koanf:"dst" validate:"required"`
	Sudo bool   `json:"sudo" koanf:"sudo"`

	Extra Extras `json:"-" koanf:"-"`
}

// SpecialPackage is the special_files entry of one privileged package.
type SpecialPackage struct {
	Files []FileMapping `json:"files" koanf:"files"`

	Extra Extras `json:"-" koanf:"-"`
}

// Document is the on-disk shape of .dotfiles-config.json. Field order
// here is the key order written back to disk.
type Document struct {
	DefaultTarget  string                    `json:"default_target" koanf:"default_target"`
	AllPackages    []string                  `json:"all_packages" koanf:"all_packages"`
	SudoPackages   []string                  `json:"sudo_packages" koanf:"sudo_packages"`
	PackageTargets map[string]string         `json:"package_targets" koanf:"package_targets"`
	SpecialFiles   map[string]SpecialPackage `json:"special_files" koanf:"special_files"`

	Extra Extras `json:"-" koanf:"-"`
}

// Extras holds the members of a descriptor object that stowman does not
// model (comments, descriptions, file modes). They are written back after
// the known members, in key order.
type Extras map[string]json.RawMessage

var (
	documentKeys = []string{"default_target", "all_packages", "sudo_packages", "package_targets", "special_files"}
	specialKeys  = []string{"files"}
	mappingKeys  = []string{"src", "dst", "sudo"}
)

func (m FileMapping) MarshalJSON() ([]byte, error) {
	type plain FileMapping
	return encodeWithExtras(plain(m), m.Extra)
}

func (s SpecialPackage) MarshalJSON() ([]byte, error) {
	type plain SpecialPackage
	return encodeWithExtras(plain(s), s.Extra)
}

func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return encodeWithExtras(plain(d), d.Extra)
}

// encodeWithExtras encodes v as an object and appends extra members to it.
func encodeWithExtras(v interface{}, extra Extras) ([]byte, error) {
	data, err := encodeCompact(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := bytes.TrimSuffix(data, []byte("}"))
	for i, k := range keys {
		if i > 0 || len(out) > 1 {
			out = append(out, ',')
		}
		name, err := encodeCompact(k)
		if err != nil {
			return nil, err
		}
		out = append(out, name...)
		out = append(out, ':')
		out = append(out, extra[k]...)
	}
	return append(out, '}'), nil
}

func encodeCompact(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// unknownMembers returns the members of obj not named in known, or nil.
func unknownMembers(obj map[string]json.RawMessage, known []string) Extras {
	var extra Extras
	for k, v := range obj {
		if slices.Contains(known, k) {
			continue
		}
		if extra == nil {
			extra = Extras{}
		}
		extra[k] = v
	}
	return extra
}

// captureExtras records the unmodelled members of the descriptor source
// data on doc. Entries whose shape does not match the decoded document
// are left without extras.
func (d *Document) captureExtras(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	d.Extra = unknownMembers(top, documentKeys)

	var special map[string]map[string]json.RawMessage
	if err := json.Unmarshal(top["special_files"], &special); err != nil {
		return nil
	}
	for name, members := range special {
		sp, ok := d.SpecialFiles[name]
		if !ok {
			continue
		}
		sp.Extra = unknownMembers(members, specialKeys)

		var files []map[string]json.RawMessage
		if err := json.Unmarshal(members["files"], &files); err == nil && len(files) == len(sp.Files) {
			for i := range sp.Files {
				sp.Files[i].Extra = unknownMembers(files[i], mappingKeys)
			}
		}
		d.SpecialFiles[name] = sp
	}
	return nil
}

// DefaultTarget is used when the descriptor does not name one.
const DefaultTarget = "~"

// DefaultDocument is the built-in package set used when no descriptor
// exists or it cannot be read.
func DefaultDocument() *Document {
	return &Document{
		DefaultTarget: DefaultTarget,
		AllPackages: []string{
			"zsh",
			"p10k.zsh",
			"vim",
			"tmux",
			"wezterm",
			"ghostty",
			"kitty",
			"starship",
			"etc",
		},
		SudoPackages:   []string{"etc"},
		PackageTargets: map[string]string{},
		SpecialFiles:   map[string]SpecialPackage{},
	}
}

// normalize replaces nil collections so they are written as [] and {}.
func (d *Document) normalize() {
	if d.DefaultTarget == "" {
		d.DefaultTarget = DefaultTarget
	}
	if d.AllPackages == nil {
		d.AllPackages = []string{}
	}
	if d.SudoPackages == nil {
		d.SudoPackages = []string{}
	}
	if d.PackageTargets == nil {
		d.PackageTargets = map[string]string{}
	}
	if d.SpecialFiles == nil {
		d.SpecialFiles = map[string]SpecialPackage{}
	}
	for name, sp := range d.SpecialFiles {
		if sp.Files == nil {
			sp.Files = []FileMapping{}
			d.SpecialFiles[name] = sp
		}
	}
}

// Marshal renders the document with two-space indentation and a final
// newline. Non-ASCII text is written as is.
func (d *Document) Marshal() ([]byte, error) {
	d.normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AddPackage registers a package. Re-adding an existing name is a no-op
// for the lists; a non-empty target always overwrites the override.
func AddPackage(doc *Document, name string, sudo bool, target string) {
	doc.normalize()
	if !slices.Contains(doc.AllPackages, name) {
		doc.AllPackages = append(doc.AllPackages, name)
	}
	if sudo && !slices.Contains(doc.SudoPackages, name) {
		doc.SudoPackages = append(doc.SudoPackages, name)
	}
	if target != "" {
		doc.PackageTargets[name] = target
	}
}

// AddMappings appends privileged file mappings for name, skipping any
// whose src is already mapped.
func AddMappings(doc *Document, name string, files []FileMapping) {
	doc.normalize()
	sp := doc.SpecialFiles[name]
	for _, f := range files {
		exists := slices.ContainsFunc(sp.Files, func(m FileMapping) bool { return m.Src == f.Src })
		if !exists {
			sp.Files = append(sp.Files, f)
		}
	}
	doc.SpecialFiles[name] = sp
}

// RemovePackage drops name from every section and returns the sections
// that changed.
func RemovePackage(doc *Document, name string) []string {
	doc.normalize()
	var removed []string

	if slices.Contains(doc.AllPackages, name) {
		doc.AllPackages = slices.DeleteFunc(doc.AllPackages, func(s string) bool { return s == name })
		removed = append(removed, "all_packages")
	}
	if slices.Contains(doc.SudoPackages, name) {
		doc.SudoPackages = slices.DeleteFunc(doc.SudoPackages, func(s string) bool { return s == name })
		removed = append(removed, "sudo_packages")
	}
	if _, ok := doc.PackageTargets[name]; ok {
		delete(doc.PackageTargets, name)
		removed = append(removed, "package_targets")
	}
	if _, ok := doc.SpecialFiles[name]; ok {
		delete(doc.SpecialFiles, name)
		removed = append(removed, "special_files")
	}
	return removed
}

// UpdateFile applies mutate to the descriptor in dotfilesDir. The current
// file is first copied to its .backup sibling. A missing descriptor is an
// error: the built-in default set is never written out implicitly.
func UpdateFile(dotfilesDir string, mutate func(*Document) error) error {
	logger := logging.GetLogger("config")
	path := paths.ConfigFilePath(dotfilesDir)
	backupPath := path + paths.ConfigBackupSuffix

	perm := os.FileMode(0644)
	var doc *Document

	info, err := os.Stat(path)
	switch {
	case err == nil:
		perm = info.Mode().Perm()
		if err := filesystem.CopyFile(path, backupPath); err != nil {
			return errors.Wrap(err, errors.ErrConfigWrite, "Failed to back up configuration").
				WithDetail("path", backupPath)
		}
		logger.Info().Str("backup", backupPath).Msg("Config backup created")

		doc, _, err = readDocument(path)
		if err != nil {
			return errors.Wrap(err, errors.ErrConfigLoad, "Failed to read configuration").
				WithDetail("path", path)
		}
	case os.IsNotExist(err):
		return errors.New(errors.ErrConfigLoad, "Configuration file not found").
			WithDetail("path", path)
	default:
		return errors.Wrap(err, errors.ErrConfigLoad, "Failed to access configuration")
	}

	if err := mutate(doc); err != nil {
		return err
	}

	data, err := doc.Marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigWrite, "Failed to encode configuration")
	}
	if err := filesystem.WriteFileAtomic(path, data, perm); err != nil {
		return errors.Wrap(err, errors.ErrConfigWrite, "Failed to write configuration").
			WithDetail("path", path)
	}

	logger.Info().Str("path", path).Msg("Updated config")
	return nil
}

// WriteDocument writes doc to the descriptor path without a backup. It
// is meant for bootstrapping a repository and for tests.
func WriteDocument(dotfilesDir string, doc *Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigWrite, "Failed to encode configuration")
	}
	if err := filesystem.WriteFileAtomic(paths.ConfigFilePath(dotfilesDir), data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrConfigWrite, "Failed to write configuration")
	}
	return nil
}
