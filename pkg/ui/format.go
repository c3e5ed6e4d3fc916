package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorMode selects whether output is styled
type ColorMode int

const (
	// ColorAuto styles output only when writing to a color-capable terminal
	ColorAuto ColorMode = iota
	// ColorAlways styles output unconditionally
	ColorAlways
	// ColorNever writes plain text
	ColorNever
)

// String returns the string representation of the mode
func (m ColorMode) String() string {
	switch m {
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseColorMode parses a string into a ColorMode value
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return ColorAuto, nil
	case "always", "force":
		return ColorAlways, nil
	case "never", "none", "plain":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode: %s", s)
	}
}

// ShouldColor resolves a mode for a concrete writer. Auto mode honors
// NO_COLOR, requires a terminal and a non-ASCII color profile.
func ShouldColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(file.Fd()) && !isatty.IsCygwinTerminal(file.Fd()) {
		return false
	}

	return termenv.NewOutput(file).EnvColorProfile() != termenv.Ascii
}
