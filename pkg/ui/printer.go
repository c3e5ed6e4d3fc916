// Package ui renders user-facing terminal output.
//
// A Printer writes marker-prefixed lines: ✓ success, ✗ error, ⚠ warning
// and ℹ info, plus cyan bold section headers. Errors go to the error
// stream, everything else to the output stream. Styling comes from the
// styles registry and is applied only when color is enabled.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/stowman/pkg/ui/output/styles"
)

// Markers prefixing status lines
const (
	MarkSuccess = "✓"
	MarkError   = "✗"
	MarkWarning = "⚠"
	MarkInfo    = "ℹ"
	MarkPending = "○"
)

// Printer writes styled status lines
type Printer struct {
	out      io.Writer
	err      io.Writer
	color    bool
	renderer *lipgloss.Renderer
}

// NewPrinter creates a printer over explicit streams
func NewPrinter(out, errOut io.Writer, color bool) *Printer {
	renderer := lipgloss.NewRenderer(out)
	if color {
		renderer.SetColorProfile(termenv.ANSI256)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		out:      out,
		err:      errOut,
		color:    color,
		renderer: renderer,
	}
}

// NewConsolePrinter creates a printer over stdout and stderr
func NewConsolePrinter(mode ColorMode) *Printer {
	return NewPrinter(os.Stdout, os.Stderr, ShouldColor(mode, os.Stdout))
}

// Out returns the output stream
func (p *Printer) Out() io.Writer { return p.out }

// Err returns the error stream
func (p *Printer) Err() io.Writer { return p.err }

// Color reports whether styling is enabled
func (p *Printer) Color() bool { return p.color }

// Style renders s with the named style when color is enabled
func (p *Printer) Style(name, s string) string {
	if !p.color {
		return s
	}
	return p.renderer.NewStyle().Inherit(styles.GetStyle(name)).Render(s)
}

// Success prints a ✓ line
func (p *Printer) Success(format string, args ...interface{}) {
	p.mark(p.out, "Success", MarkSuccess, format, args...)
}

// Error prints a ✗ line on the error stream
func (p *Printer) Error(format string, args ...interface{}) {
	p.mark(p.err, "Error", MarkError, format, args...)
}

// Warning prints a ⚠ line
func (p *Printer) Warning(format string, args ...interface{}) {
	p.mark(p.out, "Warning", MarkWarning, format, args...)
}

// Info prints an ℹ line
func (p *Printer) Info(format string, args ...interface{}) {
	p.mark(p.out, "Info", MarkInfo, format, args...)
}

// Header prints a blank line followed by a bold heading
func (p *Printer) Header(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "\n%s\n", p.Style("Header", fmt.Sprintf(format, args...)))
}

// Println prints a plain line
func (p *Printer) Println(a ...interface{}) {
	fmt.Fprintln(p.out, a...)
}

// Printf prints formatted text without a trailing newline
func (p *Printer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// Raw writes diagnostic output verbatim to the error stream
func (p *Printer) Raw(text string) {
	if text == "" {
		return
	}
	fmt.Fprint(p.err, text)
	if text[len(text)-1] != '\n' {
		fmt.Fprintln(p.err)
	}
}

func (p *Printer) mark(w io.Writer, style, marker, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", p.Style(style, marker), fmt.Sprintf(format, args...))
}
