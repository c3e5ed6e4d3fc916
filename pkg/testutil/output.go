package testutil

import (
	"bytes"
	"io"

	"github.com/arthur-debert/stowman/pkg/ui"
)

// Output captures what a workflow prints. Combined keeps stdout and
// stderr interleaved in write order.
type Output struct {
	Stdout   bytes.Buffer
	Stderr   bytes.Buffer
	Combined bytes.Buffer
}

// NewOutput creates an empty capture.
func NewOutput() *Output {
	return &Output{}
}

// Printer returns an uncolored printer writing into the capture.
func (o *Output) Printer() *ui.Printer {
	return ui.NewPrinter(
		io.MultiWriter(&o.Stdout, &o.Combined),
		io.MultiWriter(&o.Stderr, &o.Combined),
		false,
	)
}

// String returns everything printed so far.
func (o *Output) String() string {
	return o.Combined.String()
}
