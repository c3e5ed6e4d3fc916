// pkg/testutil/runner.go
// DEPENDENCIES: pkg/runner
// PURPOSE: Deterministic stand-in for external processes

package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/arthur-debert/stowman/pkg/runner"
)

// RunHandler decides what a faked command does. It may touch the
// filesystem to emulate side effects (stow --adopt moving files).
type RunHandler func(cmd runner.Command) (runner.Result, error)

// FakeRunner records every command and answers through Handler.
// Without a Handler every command succeeds with empty output.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []runner.Command
	Handler RunHandler
	// Missing lists binaries LookPath must not find.
	Missing map[string]bool
}

// NewFakeRunner creates a FakeRunner that succeeds for everything.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Missing: map[string]bool{}}
}

// Run records cmd and delegates to Handler.
func (f *FakeRunner) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	handler := f.Handler
	f.mu.Unlock()

	if f.Missing[cmd.Name] {
		return runner.Result{ExitCode: -1}, fmt.Errorf("failed to run %s: executable file not found in $PATH", cmd.Name)
	}
	if handler == nil {
		return runner.Result{}, nil
	}
	return handler(cmd)
}

// LookPath fails for names listed in Missing.
func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// CommandLines returns the recorded commands rendered as strings.
func (f *FakeRunner) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.String())
	}
	return lines
}

// CallsTo returns the recorded invocations of the named binary.
func (f *FakeRunner) CallsTo(name string) []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []runner.Command
	for _, c := range f.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// HasCall reports whether a command line containing every fragment ran.
func (f *FakeRunner) HasCall(fragments ...string) bool {
	for _, line := range f.CommandLines() {
		matched := true
		for _, frag := range fragments {
			if !strings.Contains(line, frag) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// Fail returns a non-zero exit result carrying stderr.
func Fail(cmd runner.Command, code int, stderr string) (runner.Result, error) {
	res := runner.Result{ExitCode: code, Stderr: stderr}
	return res, &runner.ExitError{Command: cmd, Result: res}
}
