package adopt

import (
	"context"
	"strings"

	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/conflicts"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/linker"
	"github.com/arthur-debert/stowman/pkg/logging"
)

// Options holds options for the adopt command
type Options struct {
	Packages []string
	// NoGit skips the commit offered after adopting
	NoGit bool
	// AssumeYes skips the confirmation; used when another workflow
	// already asked
	AssumeYes bool
}

// Result describes an adopt run.
type Result struct {
	// Conflicts are the home files that were to be moved into the repository
	Conflicts []conflicts.Conflict
	Adopted   []string
	Failed    []string
	Cancelled bool
	Committed bool
}

// Adopt moves existing files at the install target into their packages
// with the linker's adopt mode and links them back. Repository copies of
// those files are overwritten.
func Adopt(ctx context.Context, rt *execution.Runtime, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.adopt")
	logger.Info().
		Strs("packages", opts.Packages).
		Bool("no_git", opts.NoGit).
		Bool("assume_yes", opts.AssumeYes).
		Msg("Adopting files into packages")

	rt.Log(logging.AuditInfo, "Starting adopt operation for: %s", strings.Join(opts.Packages, ", "))

	result := &Result{}
	var valid []string
	for _, name := range rt.Validator().Filter(opts.Packages) {
		if rt.Config.IsSudo(name) {
			rt.Out.Warning("Package '%s' is privileged, adopt only handles ordinary packages", name)
			continue
		}
		valid = append(valid, name)
	}
	if len(valid) == 0 {
		return result, nil
	}

	rt.Out.Header("Analyzing existing files")
	for _, name := range valid {
		found, err := conflicts.Check(rt.Config, name)
		if err != nil {
			rt.Out.Error("Could not inspect '%s': %s", name, err)
			continue
		}
		if len(found) == 0 {
			continue
		}
		result.Conflicts = append(result.Conflicts, found...)
		rt.Out.Printf("\n%s:\n", rt.Out.Style("Package", name))
		for _, c := range found {
			rt.Out.Printf("  %s -> dotfiles/%s/...\n", c.Target, name)
		}
	}

	if len(result.Conflicts) == 0 {
		rt.Out.Warning("No conflicts to adopt. Use 'install' to create symlinks.")
		return result, nil
	}

	rt.Out.Println()
	rt.Out.Warning("Total files to adopt: %d", len(result.Conflicts))
	rt.Out.Warning("WARNING: Files in dotfiles repository will be OVERWRITTEN!")

	if !opts.AssumeYes && !rt.Prompter.Confirm("Continue with adopt?") {
		rt.Out.Warning("Operation cancelled")
		result.Cancelled = true
		return result, nil
	}

	rt.Out.Println()
	stow := rt.Linker()
	for _, name := range valid {
		res, err := stow.Run(ctx, linker.OpAdopt, name, rt.Config.TargetFor(name), false)
		if err != nil {
			text := res.Stderr
			if text == "" {
				text = errors.Reason(err)
			}
			rt.Out.Error("Error adopting '%s'", name)
			rt.Log(logging.AuditError, "Failed to adopt '%s': %s", name, strings.TrimSpace(text))
			rt.Out.Raw(text)
			result.Failed = append(result.Failed, name)
			continue
		}
		rt.Out.Success("Package '%s' adopted", name)
		rt.Log(logging.AuditSuccess, "Package '%s' adopted successfully", name)
		rt.Echo(res.Stderr)
		result.Adopted = append(result.Adopted, name)
	}

	if !opts.NoGit && len(result.Adopted) > 0 {
		result.Committed = rt.Git().CommitAdopted(ctx, result.Adopted)
	}

	logger.Info().
		Strs("adopted", result.Adopted).
		Strs("failed", result.Failed).
		Bool("committed", result.Committed).
		Msg("Adopt finished")
	return result, nil
}
