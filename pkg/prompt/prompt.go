// Package prompt asks the operator questions. Workflows depend on the
// Prompter interface so tests and batch callers can supply answers.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/arthur-debert/stowman/pkg/errors"
)

// ErrInterrupted is returned by Ask when input ends or the operator
// presses Ctrl-C while a prompt waits. Callers treat it as a decline.
var ErrInterrupted = errors.New(errors.ErrCancelled, "Operation cancelled by user")

// Prompter is the confirmation provider used by every interactive gate.
type Prompter interface {
	// Confirm asks a yes/no question. The default answer is no.
	Confirm(question string) bool
	// Ask prints question and returns the trimmed line typed back.
	Ask(question string) (string, error)
}

// IsYes reports whether answer accepts a confirmation: y or yes, any case.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Console prompts on a terminal. A single reader goroutine feeds input
// lines so an interrupt can end a pending prompt without killing the
// process.
type Console struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan string
}

// NewConsole returns a Console reading stdin and writing to stdout.
func NewConsole() *Console {
	return NewConsoleWithIO(os.Stdin, os.Stdout)
}

// NewConsoleWithIO returns a Console bound to the given streams.
func NewConsoleWithIO(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

func (c *Console) start() {
	c.once.Do(func() {
		c.lines = make(chan string)
		go func() {
			defer close(c.lines)
			scanner := bufio.NewScanner(c.in)
			for scanner.Scan() {
				c.lines <- scanner.Text()
			}
		}()
	})
}

// Confirm prints "\n<question> [y/N]: " and waits for an answer.
func (c *Console) Confirm(question string) bool {
	answer, err := c.Ask(fmt.Sprintf("\n%s [y/N]: ", question))
	if err != nil {
		return false
	}
	return IsYes(answer)
}

// Ask prints question verbatim and reads one line.
func (c *Console) Ask(question string) (string, error) {
	c.start()
	fmt.Fprint(c.out, question)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case line, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.out)
			return "", ErrInterrupted
		}
		return strings.TrimSpace(line), nil
	case <-interrupts:
		fmt.Fprintln(c.out)
		return "", ErrInterrupted
	}
}

// AssumeYes accepts every confirmation and answers Ask with a fixed reply.
type AssumeYes struct {
	Reply string
}

func (a AssumeYes) Confirm(string) bool { return true }

func (a AssumeYes) Ask(string) (string, error) { return a.Reply, nil }
