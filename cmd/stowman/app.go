package stowman

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arthur-debert/stowman/pkg/commands"
	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/linker"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/paths"
	"github.com/arthur-debert/stowman/pkg/prompt"
	"github.com/arthur-debert/stowman/pkg/runner"
	"github.com/arthur-debert/stowman/pkg/ui"
	"github.com/arthur-debert/stowman/pkg/ui/output/styles"
)

// Environment is what the CLI talks to. The zero value means the real
// process streams, subprocesses and terminal.
type Environment struct {
	Runner   runner.Runner
	Prompter prompt.Prompter
	Stdout   io.Writer
	Stderr   io.Writer
	Now      func() time.Time
	// SettingsPath overrides the settings file location
	SettingsPath string
}

func (e Environment) withDefaults() Environment {
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.Runner == nil {
		e.Runner = runner.NewExec()
	}
	if e.Prompter == nil {
		e.Prompter = prompt.NewConsoleWithIO(os.Stdin, e.Stdout)
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// reportedError marks an error already shown to the operator.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var r reportedError
	return stderrors.As(err, &r)
}

// app holds global flag values and the environment for one invocation.
type app struct {
	env Environment

	verbosity int
	dir       string
	color     string
}

// runtime loads settings and configuration and wires the collaborators.
// The returned func closes the audit log.
func (a *app) runtime(ctx context.Context, needsLinker bool) (*execution.Runtime, func(), error) {
	logger := logging.GetLogger("cmd")

	settings, err := config.LoadSettings(a.env.SettingsPath)
	if err != nil {
		return nil, nil, fmt.Errorf(MsgErrSettings, err)
	}
	if a.color != "" {
		settings.Color = a.color
	}
	if settings.Styles != "" {
		if err := styles.LoadFile(settings.Styles); err != nil {
			logger.Warn().Err(err).Msg("Using built-in palette")
		}
	}
	mode, err := ui.ParseColorMode(settings.Color)
	if err != nil {
		return nil, nil, err
	}
	out := ui.NewPrinter(a.env.Stdout, a.env.Stderr, ui.ShouldColor(mode, a.env.Stdout))

	root := a.dir
	if root == "" {
		root = settings.DotfilesDir
	}
	p, err := paths.New(ctx, root, a.env.Runner)
	if err != nil {
		return nil, nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	if p.UsedFallback() {
		fmt.Fprintf(a.env.Stderr, MsgFallbackWarning+"\n", p.DotfilesRoot())
	} else if os.Getenv("STOWMAN_DEBUG") != "" {
		fmt.Fprintf(a.env.Stderr, MsgDebugDotfilesRoot, p.DotfilesRoot(), p.UsedFallback())
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv(paths.EnvHome)
	}
	cfg, warnings := config.Load(config.LoadOptions{
		DotfilesDir: p.DotfilesRoot(),
		HomeDir:     home,
		Verbose:     a.verbosity > 0,
	})
	for _, w := range warnings {
		fmt.Fprintf(a.env.Stderr, MsgConfigWarning, out.Style("Warning", ui.MarkWarning), w)
	}

	if needsLinker {
		if err := linker.New(settings.Linker, cfg.DotfilesDir, a.env.Runner).Available(ctx); err != nil {
			out.Error(MsgLinkerMissing)
			out.Println(MsgLinkerInstallHint)
			return nil, nil, reportedError{err}
		}
	}

	audit, err := logging.OpenAudit(cfg.LogDir, a.env.Now)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.LogDir).Msg("Audit log unavailable")
		audit = logging.NopAudit()
	}

	rt := execution.New(cfg, settings, out, a.env.Prompter, a.env.Runner, audit)
	rt.Now = a.env.Now
	return rt, func() { _ = audit.Close() }, nil
}

// run builds the runtime and dispatches one command.
func (a *app) run(ctx context.Context, cmdType commands.CommandType, opts commands.DispatchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, closeAudit, err := a.runtime(ctx, cmdType.NeedsLinker())
	if err != nil {
		return err
	}
	defer closeAudit()

	_, err = commands.Dispatch(ctx, rt, cmdType, opts)
	return err
}

// packageNames loads the configured package names for completion.
func (a *app) packageNames(ctx context.Context) []string {
	settings, err := config.LoadSettings(a.env.SettingsPath)
	if err != nil {
		return nil
	}
	root := a.dir
	if root == "" {
		root = settings.DotfilesDir
	}
	p, err := paths.New(ctx, root, a.env.Runner)
	if err != nil {
		return nil
	}
	home, _ := os.UserHomeDir()
	cfg, _ := config.Load(config.LoadOptions{DotfilesDir: p.DotfilesRoot(), HomeDir: home})
	return cfg.AllPackages
}
