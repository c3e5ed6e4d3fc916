// Package create implements "new": it makes a package skeleton, registers
// the package in the descriptor and, when created from existing files,
// brings those files into the repository.
//
// Ordinary packages take their files over through the adopt workflow.
// Privileged packages import copies and get one special_files mapping
// per file instead, since the linker never handles them.
package create

import (
	"context"
	"os"

	"github.com/arthur-debert/stowman/pkg/commands/adopt"
	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/packages"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// Options holds options for the new command
type Options struct {
	Name string
	// From is an existing file or directory the package is built from
	From string
	// Sudo forces a privileged package
	Sudo bool
	// Target overrides the install target; stored unexpanded
	Target string
	DryRun bool
}

// Result describes what happened.
type Result struct {
	Name   string
	Layout Layout
	// Dirs are the directories created, outermost first
	Dirs      []string
	Created   bool
	Adopted   bool
	Imported  []config.FileMapping
	Cancelled bool
	// Err is why the package was not created; it has been reported
	Err error
}

// New runs the creation workflow. Failures are reported to the operator
// and recorded in the Result.
func New(ctx context.Context, rt *execution.Runtime, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.create")
	logger.Info().
		Str("name", opts.Name).
		Str("from", opts.From).
		Bool("sudo", opts.Sudo).
		Str("target", opts.Target).
		Bool("dry_run", opts.DryRun).
		Msg("Creating package")

	out := rt.Out
	result := &Result{Name: opts.Name}
	rt.Log(logging.AuditInfo, "Starting new package creation: %s", opts.Name)

	out.Info("Validating package name...")
	if err := packages.ValidateNewName(opts.Name); err != nil {
		out.Error("Invalid package name: %s", errors.Reason(err))
		result.Err = err
		return result, nil
	}

	layout := InferLayout(opts.Name, opts.From, rt.Config.HomeDir, opts.Sudo)
	result.Layout = layout

	out.Info("Checking if package already exists...")
	if exists, where := rt.Validator().CheckExists(opts.Name); exists {
		out.Error("Package already exists: %s", where)
		result.Err = errors.New(errors.ErrAlreadyExists, where)
		return result, nil
	}

	sourceExists := layout.Source != "" && pathExists(layout.Source)
	showPreview(rt, opts, layout, sourceExists)

	if opts.DryRun {
		out.Info("Dry-run mode - no changes will be made")
		out.Success("Validation passed! Run without --dry-run to create.")
		return result, nil
	}

	if !rt.Prompter.Confirm("Create this package?") {
		out.Warning("Operation cancelled")
		result.Cancelled = true
		return result, nil
	}

	out.Println()
	out.Info("Creating directory structure...")
	sk, err := makeSkeleton(rt.Config.DotfilesDir, opts.Name, layout)
	if err != nil {
		out.Error("Failed to create package structure: %s", errors.Reason(err))
		result.Err = err
		return result, nil
	}
	result.Dirs = sk.Dirs
	for _, dir := range sk.Dirs {
		out.Success("Created: %s", dir)
	}
	rt.Log(logging.AuditInfo, "Created package structure: %s", sk.Leaf)

	out.Info("Updating configuration...")
	err = config.UpdateFile(rt.Config.DotfilesDir, func(doc *config.Document) error {
		config.AddPackage(doc, opts.Name, layout.Privileged(), opts.Target)
		return nil
	})
	if err != nil {
		out.Error("Failed to update configuration: %s", errors.Reason(err))
		rollback(rt, sk)
		result.Err = err
		return result, nil
	}
	out.Success("Configuration updated")
	result.Created = true

	created := rt.WithConfig(rt.Config.WithPackage(opts.Name, layout.Privileged(), opts.Target))

	switch {
	case layout.Source == "":
	case !sourceExists:
		out.Warning("Path does not exist: %s", opts.From)
		out.Info("Package structure created, but no files adopted")
	case layout.Privileged():
		result.Imported = importSource(created, opts, sk, layout)
	default:
		result.Adopted = adoptSource(ctx, created, opts, sk, layout)
	}

	out.Println()
	showNextSteps(rt, opts, layout, sk, result)
	rt.Log(logging.AuditSuccess, "Package '%s' created successfully", opts.Name)
	return result, nil
}

func showPreview(rt *execution.Runtime, opts Options, layout Layout, sourceExists bool) {
	out := rt.Out
	out.Header("New Package Preview")

	out.Printf("Package name: %s\n", out.Style("Package", opts.Name))
	if opts.From != "" {
		out.Printf("Source:       %s\n", opts.From)
	}
	labelStyle := "Info"
	if layout.Privileged() {
		labelStyle = "Warning"
	}
	out.Printf("Package type: %s\n", out.Style(labelStyle, layout.Label()))
	out.Printf("Structure:    %s\n", layout.Display(opts.Name))
	if opts.Target != "" {
		out.Printf("Target:       %s\n", opts.Target)
	}

	out.Printf("\n%s\n", out.Style("Bold", "Configuration changes:"))
	out.Printf("  • Add '%s' to all_packages\n", opts.Name)
	if layout.Privileged() {
		out.Printf("  • Add '%s' to sudo_packages\n", opts.Name)
	}
	if opts.Target != "" {
		out.Printf("  • Set custom target: %s\n", opts.Target)
	}
	if sourceExists && layout.Privileged() {
		out.Printf("  • Add special_files mappings for the files in %s\n", layout.Source)
	}
	if sourceExists && !layout.Privileged() {
		out.Printf("\nFiles in %s will be adopted into the package.\n", layout.Source)
	}
}

func rollback(rt *execution.Runtime, sk *skeleton) {
	rt.Out.Warning("Rolling back changes...")
	if _, err := os.Lstat(sk.Base); err != nil {
		return
	}
	if err := os.RemoveAll(sk.Base); err != nil {
		rt.Out.Error("Failed to rollback: %s", err)
		rt.Log(logging.AuditError, "Failed to rollback %s: %s", sk.Base, err)
		return
	}
	rt.Out.Info("Removed: %s", sk.Base)
}

func adoptSource(ctx context.Context, rt *execution.Runtime, opts Options, sk *skeleton, layout Layout) bool {
	rt.Out.Println()
	rt.Out.Info("Adopting files from %s...", opts.From)

	seeded, err := seedPlaceholders(sk, layout.Source)
	if err != nil {
		rt.Out.Warning("Adopt failed: %s", errors.Reason(err))
		rt.Out.Info("You can run adopt manually later")
		return false
	}
	logger := logging.GetLogger("commands.create")
	logger.Debug().Strs("files", seeded).Msg("Seeded placeholders")

	res, err := adopt.Adopt(ctx, rt, adopt.Options{
		Packages:  []string{opts.Name},
		NoGit:     true,
		AssumeYes: true,
	})
	if err != nil || len(res.Adopted) == 0 {
		reason := "nothing was adopted"
		if err != nil {
			reason = errors.Reason(err)
		}
		rt.Out.Warning("Adopt failed: %s", reason)
		rt.Out.Info("You can run adopt manually later")
		return false
	}
	return true
}

func importSource(rt *execution.Runtime, opts Options, sk *skeleton, layout Layout) []config.FileMapping {
	rt.Out.Println()
	rt.Out.Info("Importing files from %s...", opts.From)

	mappings, err := importFiles(sk, layout.Source, rt.Config.HomeDir)
	if err != nil {
		rt.Out.Warning("Import failed: %s", errors.Reason(err))
		rt.Out.Info("Copy the files into %s/ and add special_files mappings by hand", sk.Base)
		return nil
	}

	for _, m := range mappings {
		rt.Out.Success("Imported %s → %s", m.Src, m.Dst)
	}
	err = config.UpdateFile(rt.Config.DotfilesDir, func(doc *config.Document) error {
		config.AddMappings(doc, opts.Name, mappings)
		return nil
	})
	if err != nil {
		rt.Out.Warning("Could not record file mappings: %s", errors.Reason(err))
		return nil
	}
	rt.Log(logging.AuditInfo, "Imported %d files into '%s'", len(mappings), opts.Name)
	return mappings
}

func showNextSteps(rt *execution.Runtime, opts Options, layout Layout, sk *skeleton, result *Result) {
	out := rt.Out
	steps := out.Style("Bold", "Next steps:")

	switch {
	case result.Adopted:
		out.Header("Package Created and Adopted Successfully!")
		out.Println()
		out.Success("Files moved from %s to dotfiles/%s/", opts.From, opts.Name)
		out.Success("Symlinks created")
		out.Printf("\n%s\n", steps)
		out.Println("1. Review changes: git diff")
		out.Printf("2. Commit: git add . && git commit -m \"feat(dotfiles): add %s config\"\n", opts.Name)

	case len(result.Imported) > 0:
		out.Header("Package Created and Imported Successfully!")
		out.Println()
		out.Success("Files copied from %s to %s", opts.From, layout.Display(opts.Name))
		out.Success("File mappings added to special_files")
		out.Printf("\n%s\n", steps)
		out.Printf("1. Review the mappings in %s\n", paths.ConfigFileName)
		out.Printf("2. Install: stowman install %s\n", opts.Name)

	default:
		out.Header("Package Created Successfully!")
		out.Printf("\n%s\n\n", steps)
		out.Println("If you have existing configs:")
		out.Printf("   stowman adopt %s\n\n", opts.Name)
		out.Println("Or add files manually:")
		out.Printf("   1. Copy your configuration to: %s/\n", sk.Base)
		if layout.Kind == KindXDG {
			out.Printf("      (XDG structure: %s)\n", sk.Leaf)
		}
		out.Printf("   2. Install: stowman install %s\n", opts.Name)

		if layout.Privileged() {
			out.Printf("\n%s This is a sudo package.\n", out.Style("Warning", "Note:"))
			out.Printf("   Configure file mappings in %s\n", paths.ConfigFileName)
			out.Printf("   under 'special_files' -> '%s'\n", opts.Name)
		}
	}
	out.Println()
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
