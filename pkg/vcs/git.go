// Package vcs commits repository changes made by adopt.
package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/prompt"
	"github.com/arthur-debert/stowman/pkg/runner"
	"github.com/arthur-debert/stowman/pkg/ui"
)

// Git runs git in the repository root.
type Git struct {
	Binary string
	Dir    string

	runner   runner.Runner
	prompter prompt.Prompter
	out      *ui.Printer
	audit    *logging.Audit
}

// New creates a Git bridge. An empty binary means "git".
func New(binary, dir string, r runner.Runner, p prompt.Prompter, out *ui.Printer, audit *logging.Audit) *Git {
	if binary == "" {
		binary = "git"
	}
	if audit == nil {
		audit = logging.NopAudit()
	}
	return &Git{Binary: binary, Dir: dir, runner: r, prompter: p, out: out, audit: audit}
}

// DefaultMessage is the commit message used when the operator leaves the
// prompt empty.
func DefaultMessage(packages []string) string {
	return fmt.Sprintf("chore(dotfiles): adopt %s config", strings.Join(packages, ", "))
}

// Available reports whether git can be found.
func (g *Git) Available() bool {
	_, err := g.runner.LookPath(g.Binary)
	return err == nil
}

// CommitAdopted shows the working tree diff and, once confirmed, stages
// everything and commits. It reports whether a commit was made. Nothing
// here undoes the adoption it follows.
func (g *Git) CommitAdopted(ctx context.Context, packages []string) bool {
	logger := logging.GetLogger("vcs")

	if !g.Available() {
		logger.Info().Str("binary", g.Binary).Msg("git not available, skipping commit")
		return false
	}

	g.out.Header("Git Diff")
	if _, err := g.run(ctx, true, "diff", "--color=always"); err != nil {
		logger.Debug().Err(err).Msg("git diff failed")
	}

	g.out.Println()
	if !g.prompter.Confirm("Create git commit with these changes?") {
		return false
	}

	g.out.Println()
	message, err := g.prompter.Ask("Commit message (or Enter for auto): ")
	if err != nil {
		g.out.Warning("Commit skipped")
		return false
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultMessage(packages)
	}

	if _, err := g.run(ctx, false, "add", "-A"); err != nil {
		g.out.Error("Error creating commit: %s", errors.Reason(err))
		return false
	}
	if _, err := g.run(ctx, false, "commit", "-m", message); err != nil {
		g.out.Error("Error creating commit: %s", errors.Reason(err))
		return false
	}

	g.out.Success("Commit created: %s", message)
	g.audit.Success("Git commit created: %s", message)
	return true
}

func (g *Git) run(ctx context.Context, stream bool, args ...string) (runner.Result, error) {
	cmd := runner.Command{Name: g.Binary, Args: args, Dir: g.Dir, Stream: stream}
	logging.LogCommand(logging.GetLogger("vcs"), cmd.Name, cmd.Args, cmd.Dir)
	res, err := g.runner.Run(ctx, cmd)
	if err != nil {
		// Prefer what git printed over the bare exit status.
		return res, errors.Newf(errors.ErrVCS, "git %s failed: %s", args[0], runner.Output(res, err)).
			WithDetail("exit_code", res.ExitCode)
	}
	return res, nil
}
