// Package check looks for dangling symlinks left at package targets.
package check

import (
	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/conflicts"
	"github.com/arthur-debert/stowman/pkg/logging"
)

// Options contains options for the check command
type Options struct {
	// Packages to check. Empty means every configured package
	Packages []string
}

// BrokenLink is a target symlink whose destination is gone.
type BrokenLink struct {
	Package string
	Rel     string
	Target  string
}

// Result lists every broken link found.
type Result struct {
	Broken []BrokenLink
}

// OK reports whether no broken link was found.
func (r *Result) OK() bool { return len(r.Broken) == 0 }

// Check inspects package files at their targets and reports dangling
// symlinks.
func Check(rt *execution.Runtime, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.check")

	names := rt.Config.AllPackages
	if len(opts.Packages) > 0 {
		names = rt.Validator().Filter(opts.Packages)
	}

	out := rt.Out
	out.Header("Integrity Check")

	result := &Result{}
	for _, name := range names {
		if rt.Config.IsSudo(name) {
			continue
		}
		states, err := conflicts.Inspect(rt.Config, name)
		if err != nil {
			logger.Warn().Err(err).Str("package", name).Msg("Could not inspect package")
			continue
		}
		for _, s := range states {
			if s.State == conflicts.StateBroken {
				result.Broken = append(result.Broken, BrokenLink{Package: name, Rel: s.Rel, Target: s.Target})
			}
		}
	}

	if result.OK() {
		out.Success("All symlinks are OK!")
		return result, nil
	}

	out.Error("Found broken symlinks: %d", len(result.Broken))
	for _, b := range result.Broken {
		out.Printf("  %s/%s -> %s\n", b.Package, b.Rel, b.Target)
	}
	logger.Info().Int("broken", len(result.Broken)).Msg("Integrity check finished")
	return result, nil
}
