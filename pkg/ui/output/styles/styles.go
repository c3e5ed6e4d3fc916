// Package styles defines the visual styling for stowman's terminal output.
//
// Styles have semantic names (Header, Success, Error, Warning, Info,
// Pending, Bold, Muted, Package, Path) and adaptive colors that follow
// light and dark terminal themes. The palette lives in the embedded
// styles.yaml; a user palette file can replace it at startup.
package styles

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// colorDef is an adaptive color as written in the palette file
type colorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// styleDef is one named style as written in the palette file
type styleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

type paletteFile struct {
	Colors map[string]colorDef `yaml:"colors"`
	Styles map[string]styleDef `yaml:"styles"`
}

// Palette maps semantic names to lipgloss styles.
type Palette struct {
	styles map[string]lipgloss.Style
}

// Names lists the styles every palette defines. Names missing from a
// palette file render unstyled.
var Names = []string{
	"Header", "Success", "Error", "Warning", "Info",
	"Pending", "Bold", "Muted", "Package", "Path",
}

//go:embed styles.yaml
var embeddedStyles []byte

var (
	mu      sync.RWMutex
	current = mustParse(embeddedStyles)
)

func mustParse(data []byte) *Palette {
	p, err := Parse(data)
	if err != nil {
		return plain()
	}
	return p
}

func plain() *Palette {
	p := &Palette{styles: make(map[string]lipgloss.Style, len(Names))}
	for _, name := range Names {
		p.styles[name] = lipgloss.NewStyle()
	}
	return p
}

// Parse builds a palette from YAML. Unknown color names leave the
// referencing style uncolored.
func Parse(data []byte) (*Palette, error) {
	var file paletteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse styles data: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(file.Colors))
	for name, def := range file.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	p := plain()
	for name, def := range file.Styles {
		p.styles[name] = def.build(colors)
	}
	return p, nil
}

func (def styleDef) build(colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	style := lipgloss.NewStyle().
		Bold(def.Bold).
		Italic(def.Italic).
		Underline(def.Underline)
	if c, ok := colors[def.Foreground]; ok {
		style = style.Foreground(c)
	}
	if c, ok := colors[def.Background]; ok {
		style = style.Background(c)
	}
	return style
}

// Style returns the named style, or a plain one.
func (p *Palette) Style(name string) lipgloss.Style {
	if style, ok := p.styles[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Has reports whether the palette defines name.
func (p *Palette) Has(name string) bool {
	_, ok := p.styles[name]
	return ok
}

// Use installs p as the palette GetStyle reads from.
func Use(p *Palette) {
	mu.Lock()
	defer mu.Unlock()
	current = p
}

// UseDefault restores the embedded palette.
func UseDefault() {
	Use(mustParse(embeddedStyles))
}

// LoadFile reads a palette file and installs it.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read styles file %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return err
	}
	Use(p)
	return nil
}

// GetStyle retrieves a style from the installed palette.
func GetStyle(name string) lipgloss.Style {
	mu.RLock()
	defer mu.RUnlock()
	return current.Style(name)
}

// Current returns the installed palette.
func Current() *Palette {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
