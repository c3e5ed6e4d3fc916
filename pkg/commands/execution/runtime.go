// Package execution carries what every command workflow needs: the
// resolved configuration, tool settings, the printer, the prompter, the
// process runner and the audit log.
//
// A Runtime is built once per invocation by the CLI layer and passed by
// pointer into the workflow packages. Nothing in it is global.
package execution

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/stowman/pkg/backup"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/linker"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/packages"
	"github.com/arthur-debert/stowman/pkg/privileged"
	"github.com/arthur-debert/stowman/pkg/prompt"
	"github.com/arthur-debert/stowman/pkg/runner"
	"github.com/arthur-debert/stowman/pkg/ui"
	"github.com/arthur-debert/stowman/pkg/vcs"
)

// Runtime bundles the collaborators of one invocation.
type Runtime struct {
	Config   *config.Config
	Settings config.Settings
	Out      *ui.Printer
	Prompter prompt.Prompter
	Runner   runner.Runner
	Audit    *logging.Audit
	// Now is the clock used for backup names
	Now func() time.Time
}

// New creates a Runtime. A nil audit log discards events and the clock
// defaults to time.Now.
func New(cfg *config.Config, settings config.Settings, out *ui.Printer, p prompt.Prompter, r runner.Runner, audit *logging.Audit) *Runtime {
	if audit == nil {
		audit = logging.NopAudit()
	}
	return &Runtime{
		Config:   cfg,
		Settings: settings,
		Out:      out,
		Prompter: p,
		Runner:   r,
		Audit:    audit,
		Now:      time.Now,
	}
}

// WithConfig returns a copy using cfg.
func (rt *Runtime) WithConfig(cfg *config.Config) *Runtime {
	cp := *rt
	cp.Config = cfg
	return &cp
}

// Log records an audit event. In verbose mode the event is also shown
// to the operator as "[LEVEL] message".
func (rt *Runtime) Log(level logging.AuditLevel, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	rt.Audit.Log(level, msg)
	if rt.Config.Verbose {
		rt.Out.Info("[%s] %s", strings.ToUpper(string(level)), msg)
	}
}

// Echo shows captured subprocess diagnostics when verbose.
func (rt *Runtime) Echo(text string) {
	if rt.Config.Verbose {
		rt.Out.Raw(text)
	}
}

// Linker returns the linker bridge rooted at the repository.
func (rt *Runtime) Linker() *linker.Stow {
	return linker.New(rt.Settings.Linker, rt.Config.DotfilesDir, rt.Runner)
}

// Validator returns a package validator reporting through the printer.
func (rt *Runtime) Validator() *packages.Validator {
	return packages.NewValidator(rt.Config, rt.Out)
}

// Privileged returns the privileged-file handler.
func (rt *Runtime) Privileged() *privileged.Handler {
	return privileged.NewHandler(rt.Config, rt.Settings.Elevator, rt.Runner, rt.Prompter, rt.Out, rt.Audit)
}

// Backups returns the backup manager.
func (rt *Runtime) Backups() *backup.Manager {
	return backup.NewManager(rt.Config, rt.Now)
}

// Git returns the version-control bridge.
func (rt *Runtime) Git() *vcs.Git {
	return vcs.New(rt.Settings.VCS, rt.Config.DotfilesDir, rt.Runner, rt.Prompter, rt.Out, rt.Audit)
}
