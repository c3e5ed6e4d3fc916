// pkg/testutil/harness.go
// DEPENDENCIES: pkg/commands/execution, pkg/logging
// PURPOSE: One-call wiring of a command Runtime over fakes

package testutil

import (
	"bytes"
	"testing"
	"time"

	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/logging"
)

// FixedTime is the clock every Harness runtime reports.
var FixedTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local)

// Harness is a TestEnvironment plus the fakes a workflow talks to.
type Harness struct {
	Env      *TestEnvironment
	Runner   *FakeRunner
	Prompter *ScriptedPrompter
	Output   *Output
	// AuditLog receives the audit lines written by the runtime
	AuditLog bytes.Buffer
}

// NewHarness creates a fresh environment whose stow and sudo are faked
// and whose prompter has no answers.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	return &Harness{
		Env:      NewTestEnvironment(t),
		Runner:   NewStowRunner(),
		Prompter: NewScriptedPrompter(),
		Output:   NewOutput(),
	}
}

// Answer replaces the prompter script.
func (h *Harness) Answer(answers ...string) *Harness {
	h.Prompter = NewScriptedPrompter(answers...)
	return h
}

// Runtime loads the repository configuration and wires a runtime.
func (h *Harness) Runtime() *execution.Runtime {
	return h.RuntimeWith(h.Env.Config())
}

// RuntimeWith wires a runtime around cfg.
func (h *Harness) RuntimeWith(cfg *config.Config) *execution.Runtime {
	clock := func() time.Time { return FixedTime }
	rt := execution.New(cfg, config.DefaultSettings(), h.Output.Printer(), h.Prompter, h.Runner,
		logging.NewAudit(&h.AuditLog, clock))
	rt.Now = clock
	return rt
}

// Audit returns the audit lines written so far.
func (h *Harness) Audit() string {
	return h.AuditLog.String()
}
