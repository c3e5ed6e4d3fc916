// Package stow implements install, uninstall and restow.
//
// Each run validates the requested packages, previews what the linker
// would do (a simulated run per ordinary package plus the conflict
// count), asks once for the whole batch and then processes packages one
// at a time. A failing package is reported and audited; the rest of the
// batch still runs. Privileged packages bypass the linker and go through
// the privileged-file handler, optionally narrowed to one mapping with a
// "name:file" token.
package stow

import (
	"context"
	"strings"

	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/conflicts"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/linker"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/packages"
	"github.com/arthur-debert/stowman/pkg/privileged"
	"github.com/arthur-debert/stowman/pkg/runner"
)

// Operation names a batch operation.
type Operation string

const (
	OpInstall   Operation = "install"
	OpUninstall Operation = "uninstall"
)

// MsgNoPackages is the error text when neither packages nor --all are given.
const MsgNoPackages = "Specify packages or use --all"

// maxConflictExamples caps the conflicting paths listed per package
const maxConflictExamples = 3

// Options holds options for install, uninstall and restow
type Options struct {
	// Packages are "name" or "name:file" tokens
	Packages []string
	// All selects every configured package
	All bool
	// DryRun stops after the preview
	DryRun bool
	// AssumeYes skips the batch confirmation
	AssumeYes bool
}

// Result describes what a run did.
type Result struct {
	Operation Operation
	// Packages are the valid packages, in request order
	Packages  []string
	Ready     []string
	Conflicts []conflicts.Conflict
	BackupDir string
	Succeeded []string
	Failed    []string
	Cancelled bool
}

type preview struct {
	spec      packages.Spec
	ok        bool
	output    string
	conflicts []conflicts.Conflict
}

// Install links packages with the linker's restow mode, backing up any
// conflicting files first.
func Install(ctx context.Context, rt *execution.Runtime, opts Options) (*Result, error) {
	return run(ctx, rt, OpInstall, opts)
}

// Uninstall removes package links.
func Uninstall(ctx context.Context, rt *execution.Runtime, opts Options) (*Result, error) {
	return run(ctx, rt, OpUninstall, opts)
}

// Restow is Install under another name.
func Restow(ctx context.Context, rt *execution.Runtime, opts Options) (*Result, error) {
	rt.Out.Info("Restow = reinstall symlinks")
	return Install(ctx, rt, opts)
}

func run(ctx context.Context, rt *execution.Runtime, op Operation, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.stow")

	tokens := opts.Packages
	if opts.All {
		tokens = rt.Config.AllPackages
	}
	if len(tokens) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, MsgNoPackages)
	}

	logger.Info().
		Str("operation", string(op)).
		Strs("packages", tokens).
		Bool("dry_run", opts.DryRun).
		Msg("Starting batch")
	rt.Log(logging.AuditInfo, "Starting %s operation for: %s", op, strings.Join(tokens, ", "))

	result := &Result{Operation: op}
	specs := rt.Validator().FilterSpecs(MergeSpecs(packages.ParseSpecs(tokens)))
	if len(specs) == 0 {
		return result, nil
	}
	result.Packages = packages.Names(specs)

	rt.Out.Info("Analyzing changes...")
	previews := analyze(ctx, rt, op, specs)
	showPreview(rt, op, previews, result)

	if opts.DryRun {
		rt.Out.Info("Dry-run mode - no changes applied")
		return result, nil
	}

	if !opts.AssumeYes && !rt.Prompter.Confirm(question(op)) {
		rt.Out.Warning("Operation cancelled")
		result.Cancelled = true
		return result, nil
	}

	if op == OpInstall {
		if !backupConflicts(rt, specs, result) {
			return result, nil
		}
	}

	rt.Out.Println()
	for _, spec := range specs {
		if rt.Config.IsSudo(spec.Name) {
			runPrivileged(ctx, rt, op, spec, result)
			continue
		}
		runLinker(ctx, rt, op, spec.Name, result)
	}

	logger.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Msg("Batch finished")
	return result, nil
}

// MergeSpecs folds repeated package names into one spec. The first
// occurrence fixes the position and the last one picks the file.
func MergeSpecs(specs []packages.Spec) []packages.Spec {
	index := make(map[string]int, len(specs))
	var merged []packages.Spec
	for _, s := range specs {
		if i, ok := index[s.Name]; ok {
			merged[i].File = s.File
			continue
		}
		index[s.Name] = len(merged)
		merged = append(merged, s)
	}
	return merged
}

func question(op Operation) string {
	if op == OpUninstall {
		return "Remove symlinks for these packages?"
	}
	return "Install symlinks for these packages?"
}

func analyze(ctx context.Context, rt *execution.Runtime, op Operation, specs []packages.Spec) []preview {
	stow := rt.Linker()
	previews := make([]preview, 0, len(specs))

	for _, spec := range specs {
		p := preview{spec: spec}
		if rt.Config.IsSudo(spec.Name) {
			p.ok = true
			p.output = "privileged package - no linker dry-run"
			previews = append(previews, p)
			continue
		}

		res, err := stow.Run(ctx, linkerOp(op), spec.Name, rt.Config.TargetFor(spec.Name), true)
		p.ok = err == nil
		p.output = failureText(res, err)
		if op == OpInstall {
			found, cerr := conflicts.Check(rt.Config, spec.Name)
			if cerr != nil {
				logger := logging.GetLogger("commands.stow")
				logger.Warn().Err(cerr).Str("package", spec.Name).Msg("Conflict check failed")
			}
			p.conflicts = found
		}
		previews = append(previews, p)
	}
	return previews
}

func showPreview(rt *execution.Runtime, op Operation, previews []preview, result *Result) {
	out := rt.Out
	out.Header("Preview: %s", strings.ToUpper(string(op)))
	out.Printf("Operation: %s\n", op)
	out.Printf("Packages: %s\n", strings.Join(result.Packages, ", "))
	out.Printf("Target: %s\n", rt.Config.TargetDir)

	for _, p := range previews {
		name := p.spec.Name
		if p.ok {
			out.Success("Package '%s' ready", name)
			result.Ready = append(result.Ready, name)
			if t, ok := rt.Config.CustomTarget(name); ok {
				out.Printf("    target: %s\n", t)
			}
		} else {
			out.Error("Package '%s' - error", name)
			if rt.Config.Verbose && p.output != "" {
				out.Printf("    %s\n", strings.TrimSpace(p.output))
			}
		}

		if len(p.conflicts) == 0 {
			continue
		}
		result.Conflicts = append(result.Conflicts, p.conflicts...)
		out.Warning("  Found conflicts: %d", len(p.conflicts))
		for i, c := range p.conflicts {
			if i == maxConflictExamples {
				break
			}
			out.Printf("    %s\n", c.Target)
		}
	}

	out.Printf("\nTotal: %d/%d packages ready\n", len(result.Ready), len(previews))
	if len(result.Conflicts) > 0 {
		out.Warning("Conflicts: %d (backups will be created)", len(result.Conflicts))
	}
}

// backupConflicts copies every file the install would collide with. It
// reports false when the backup failed and the batch must stop.
func backupConflicts(rt *execution.Runtime, specs []packages.Spec, result *Result) bool {
	var targets []string
	for _, spec := range specs {
		if rt.Config.IsSudo(spec.Name) {
			continue
		}
		found, err := conflicts.Check(rt.Config, spec.Name)
		if err != nil {
			continue
		}
		targets = append(targets, conflicts.Targets(found)...)
	}
	if len(targets) == 0 {
		return true
	}

	dir, err := rt.Backups().BackupFiles(targets)
	if err != nil {
		rt.Out.Error("Backup failed: %s", errors.Reason(err))
		rt.Out.Warning("Operation aborted, nothing was installed")
		rt.Log(logging.AuditError, "Backup failed: %s", errors.Reason(err))
		return false
	}
	for _, t := range targets {
		rt.Audit.Info("Backup created: %s -> %s", t, dir)
	}
	rt.Out.Success("Backup created: %s", dir)
	result.BackupDir = dir
	return true
}

func runLinker(ctx context.Context, rt *execution.Runtime, op Operation, name string, result *Result) {
	res, err := rt.Linker().Run(ctx, linkerOp(op), name, rt.Config.TargetFor(name), false)
	if err != nil {
		rt.Out.Error("Error %s '%s'", failVerb(op), name)
		rt.Log(logging.AuditError, "Failed to %s '%s': %s", op, name, strings.TrimSpace(failureText(res, err)))
		rt.Out.Raw(failureText(res, err))
		result.Failed = append(result.Failed, name)
		return
	}

	if op == OpUninstall {
		rt.Out.Success("Package '%s' removed", name)
		rt.Log(logging.AuditSuccess, "Package '%s' uninstalled successfully", name)
	} else {
		rt.Out.Success("Package '%s' installed", name)
		rt.Log(logging.AuditSuccess, "Package '%s' installed successfully", name)
	}
	rt.Echo(res.Stderr)
	result.Succeeded = append(result.Succeeded, name)
}

func runPrivileged(ctx context.Context, rt *execution.Runtime, op Operation, spec packages.Spec, result *Result) {
	privOp := privileged.Install
	if op == OpUninstall {
		privOp = privileged.Uninstall
	}
	res := rt.Privileged().Handle(ctx, spec.Name, privOp, spec.File)
	if len(res.Failed) > 0 {
		result.Failed = append(result.Failed, spec.Name)
		return
	}
	result.Succeeded = append(result.Succeeded, spec.Name)
}

func linkerOp(op Operation) linker.Op {
	if op == OpUninstall {
		return linker.OpUninstall
	}
	return linker.OpInstall
}

func failVerb(op Operation) string {
	if op == OpUninstall {
		return "removing"
	}
	return "installing"
}

// failureText prefers the linker's own diagnostics over the wrapped error.
func failureText(res runner.Result, err error) string {
	if res.Stderr != "" || err == nil {
		return res.Stderr
	}
	return errors.Reason(err)
}
