// Package runner is the single place where stowman starts external
// programs: the linker, the elevation wrapper and git.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/stowman/pkg/logging"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Stream attaches the process to the terminal instead of capturing
	// its output. Used for output meant for the operator, such as diffs.
	Stream bool
}

// String renders the command line for messages and logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is what a finished process reports back.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes commands synchronously. A non-zero exit is returned as
// an error together with the captured Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) (string, error)
}

// ExitError reports a process that ran but exited non-zero.
type ExitError struct {
	Command Command
	Result  Result
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Result.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command.Name, e.Result.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command.Name, e.Result.ExitCode, msg)
}

// Exec runs commands with os/exec.
type Exec struct {
	// Stdout and Stderr receive streamed commands' output.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec streaming to the process' own stdout and stderr.
func NewExec() *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes cmd and waits for it.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	logger := logging.GetLogger("runner")
	logging.LogCommand(logger, cmd.Name, cmd.Args, cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	if cmd.Stream {
		c.Stdin = os.Stdin
		c.Stdout = e.Stdout
		c.Stderr = e.Stderr
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			logger.Debug().
				Str("command", cmd.String()).
				Int("exit_code", res.ExitCode).
				Msg("Command failed")
			return res, &ExitError{Command: cmd, Result: res}
		}
		res.ExitCode = -1
		return res, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
	}

	logger.Trace().Str("command", cmd.String()).Msg("Command succeeded")
	return res, nil
}

// LookPath reports where name is found on PATH.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Output returns the most useful diagnostic text for a failed command.
func Output(res Result, err error) string {
	if s := strings.TrimSpace(res.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(res.Stdout); s != "" {
		return s
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
