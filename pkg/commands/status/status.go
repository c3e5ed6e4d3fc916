// Package status provides the status command implementation.
//
// Status answers one question per package file: is it installed where the
// package links to? Ordinary packages are inspected file by file at their
// effective target. Privileged packages are reported per special_files
// mapping, installed meaning only that the destination exists.
package status

import (
	"os"

	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/conflicts"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/ui"
)

// Options contains options for the status command
type Options struct {
	// Packages to report on. Empty means every configured package
	Packages []string
}

// PackageStatus is the state of one package.
type PackageStatus struct {
	Name       string
	Privileged bool
	// Unconfigured is set for privileged packages missing from special_files
	Unconfigured bool
	// Files holds one entry per package file or mapping. For privileged
	// packages Rel is the mapping src and Target its dst.
	Files []conflicts.FileState
}

// Result holds the status of each requested package, in order.
type Result struct {
	Packages []PackageStatus
}

// Status inspects the requested packages and prints the report.
func Status(rt *execution.Runtime, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.status")

	names := rt.Config.AllPackages
	if len(opts.Packages) > 0 {
		names = rt.Validator().Filter(opts.Packages)
	}
	logger.Debug().Strs("packages", names).Msg("Checking package status")

	result := &Result{Packages: make([]PackageStatus, 0, len(names))}
	for _, name := range names {
		var ps PackageStatus
		if rt.Config.IsSudo(name) {
			ps = privilegedStatus(rt, name)
		} else {
			ps = PackageStatus{Name: name}
			files, err := conflicts.Inspect(rt.Config, name)
			if err != nil {
				logger.Warn().Err(err).Str("package", name).Msg("Could not inspect package")
			}
			ps.Files = files
		}
		result.Packages = append(result.Packages, ps)
	}

	render(rt.Out, result)
	return result, nil
}

func privilegedStatus(rt *execution.Runtime, name string) PackageStatus {
	ps := PackageStatus{Name: name, Privileged: true}
	mappings, ok := rt.Config.Mappings(name)
	if !ok {
		ps.Unconfigured = true
		return ps
	}
	for _, m := range mappings {
		if m.Src == "" || m.Dst == "" {
			continue
		}
		state := conflicts.StateMissing
		if _, err := os.Stat(m.Dst); err == nil {
			state = conflicts.StateLinked
		}
		ps.Files = append(ps.Files, conflicts.FileState{Rel: m.Src, Target: m.Dst, State: state})
	}
	return ps
}

func render(out *ui.Printer, result *Result) {
	out.Header("Package Status")

	for _, ps := range result.Packages {
		out.Printf("\n%s:\n", out.Style("Package", ps.Name))

		if ps.Unconfigured {
			out.Warning("  No configuration in special_files")
			continue
		}
		if len(ps.Files) == 0 {
			out.Warning("  Empty")
			continue
		}

		for _, f := range ps.Files {
			if ps.Privileged {
				if f.State == conflicts.StateLinked {
					out.Printf("  %s %s → %s\n", out.Style("Success", ui.MarkSuccess), f.Rel, f.Target)
				} else {
					out.Printf("  %s %s (not installed)\n", out.Style("Info", ui.MarkPending), f.Rel)
				}
				continue
			}

			switch f.State {
			case conflicts.StateLinked:
				out.Printf("  %s %s\n", out.Style("Success", ui.MarkSuccess), f.Rel)
			case conflicts.StateWrongTarget, conflicts.StateBroken:
				out.Printf("  %s %s (wrong target)\n", out.Style("Warning", ui.MarkWarning), f.Rel)
			case conflicts.StateBlocked:
				out.Printf("  %s %s (file exists, not symlink)\n", out.Style("Error", ui.MarkError), f.Rel)
			default:
				out.Printf("  %s %s (not installed)\n", out.Style("Info", ui.MarkPending), f.Rel)
			}
		}
	}
}
