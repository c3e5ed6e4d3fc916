// Package remove implements "delete": it takes packages out of the
// repository entirely.
//
// Each package goes through the same steps on its own: preview, typed
// confirmation, uninstall, a check that no link into the package
// survived, a whole-package backup, directory removal and finally the
// descriptor edit. Trouble with one package never stops the next one.
//
// When the operator chooses to continue although links into the package
// remain, those links are left dangling.
package remove

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/arthur-debert/stowman/pkg/backup"
	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/commands/stow"
	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/conflicts"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/packages"
	"github.com/arthur-debert/stowman/pkg/paths"
)

// Options holds options for the delete command
type Options struct {
	Packages []string
	// Force skips the typed confirmation
	Force  bool
	DryRun bool
	// KeepFiles leaves the package directory in place
	KeepFiles bool
	// NoBackup skips the whole-package backup
	NoBackup bool
}

// Outcome is what happened to one package.
type Outcome string

const (
	Deleted   Outcome = "deleted"
	Invalid   Outcome = "invalid"
	NotFound  Outcome = "not-found"
	Previewed Outcome = "previewed"
	Cancelled Outcome = "cancelled"
	Failed    Outcome = "failed"
)

// PackageResult describes one package.
type PackageResult struct {
	Name     string
	Outcome  Outcome
	Metadata packages.Metadata
	// Backup is the whole-package backup directory, if one was made
	Backup string
	// Sections are the descriptor sections the package was removed from
	Sections []string
	// Dangling lists links into the package left behind on request
	Dangling []string
}

// Result holds one PackageResult per requested name, in order.
type Result struct {
	Packages []PackageResult
}

// Outcomes maps package names to outcomes.
func (r *Result) Outcomes() map[string]Outcome {
	m := make(map[string]Outcome, len(r.Packages))
	for _, p := range r.Packages {
		m[p.Name] = p.Outcome
	}
	return m
}

// Delete runs the deletion workflow for every requested package.
func Delete(ctx context.Context, rt *execution.Runtime, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.remove")
	logger.Info().
		Strs("packages", opts.Packages).
		Bool("force", opts.Force).
		Bool("dry_run", opts.DryRun).
		Bool("keep_files", opts.KeepFiles).
		Bool("no_backup", opts.NoBackup).
		Msg("Deleting packages")

	rt.Out.Header("DELETE PACKAGES")

	result := &Result{}
	for _, name := range opts.Packages {
		pr := deleteOne(ctx, rt, opts, name)
		logger.Info().Str("package", name).Str("outcome", string(pr.Outcome)).Msg("Package processed")
		result.Packages = append(result.Packages, pr)
	}
	return result, nil
}

func deleteOne(ctx context.Context, rt *execution.Runtime, opts Options, name string) PackageResult {
	out := rt.Out
	pr := PackageResult{Name: name}

	// Reserved and path-like names resolve to repository bookkeeping
	if err := packages.ValidateNewName(name); err != nil {
		out.Error("Invalid package name '%s': %s", name, errors.Reason(err))
		rt.Log(logging.AuditError, "Refused to delete '%s': %s", name, errors.Reason(err))
		pr.Outcome = Invalid
		return pr
	}

	meta := rt.Validator().Metadata(name)
	pr.Metadata = meta

	if !meta.Exists() {
		out.Error("Package '%s' does not exist", name)
		out.Info("  Not found in configuration or as directory")
		pr.Outcome = NotFound
		return pr
	}

	showPreview(rt, opts, meta)

	if opts.DryRun {
		out.Success("Dry-run: Would delete package '%s'", name)
		pr.Outcome = Previewed
		return pr
	}

	if !opts.Force && !confirmName(rt, name) {
		pr.Outcome = Cancelled
		return pr
	}

	if meta.IsDirectory {
		dangling, ok := uninstall(ctx, rt, meta)
		if !ok {
			out.Warning("Deletion of '%s' cancelled", name)
			pr.Outcome = Cancelled
			return pr
		}
		pr.Dangling = dangling
	}

	if meta.IsDirectory && !opts.NoBackup && !opts.KeepFiles {
		out.Info("Creating backup...")
		dir, err := rt.Backups().BackupPackage(name, meta.SudoDir != "")
		if err != nil {
			out.Error("Failed to create backup: %s", errors.Reason(err))
			out.Println()
			if !rt.Prompter.Confirm("Continue deletion WITHOUT backup?") {
				out.Warning("Deletion of '%s' cancelled", name)
				pr.Outcome = Cancelled
				return pr
			}
		}
		pr.Backup = dir
	}

	if meta.IsDirectory && !opts.KeepFiles {
		out.Info("Removing package directory...")
		dir := meta.Location()
		if err := os.RemoveAll(dir); err != nil {
			rt.Log(logging.AuditError, "Failed to remove directory: %s", err)
			out.Error("Failed to remove directory: %s", err)
			pr.Outcome = Failed
			return pr
		}
		rt.Log(logging.AuditInfo, "Removed directory: %s", dir)
	}

	if len(configSections(rt.Config, name)) > 0 {
		out.Info("Updating configuration...")
		err := config.UpdateFile(rt.Config.DotfilesDir, func(doc *config.Document) error {
			pr.Sections = config.RemovePackage(doc, name)
			return nil
		})
		if err != nil {
			rt.Log(logging.AuditError, "Failed to update configuration: %s", errors.Reason(err))
			showManualRecovery(rt, name, pr.Backup)
			pr.Outcome = Failed
			return pr
		}
	}

	showSummary(rt, opts, meta, pr)
	rt.Log(logging.AuditSuccess, "Package '%s' deleted successfully", name)
	pr.Outcome = Deleted
	return pr
}

func showPreview(rt *execution.Runtime, opts Options, meta packages.Metadata) {
	out := rt.Out
	name := meta.Name
	root := rt.Config.DotfilesDir

	out.Header("Delete Package Preview: %s", name)
	out.Println()

	if meta.IsDirectory {
		out.Printf("Location:  %s\n", meta.RelLocation(root))
	} else {
		out.Printf("Location:  %s\n", out.Style("Warning", "(directory not found)"))
	}

	sections := configSections(rt.Config, name)
	if meta.InConfig {
		out.Printf("In config: %s (%s)\n", out.Style("Success", "Yes"), strings.Join(sections, ", "))
	} else {
		out.Printf("In config: %s\n", out.Style("Warning", "No"))
	}
	out.Println()

	switch {
	case meta.InConfig && !meta.IsDirectory:
		out.Warning("Package directory does not exist, will only remove from configuration")
		out.Println()
	case meta.IsDirectory && !meta.InConfig:
		out.Warning("Package not in configuration, will only remove directory")
		out.Println()
	}

	out.Printf("%s\n", out.Style("Header", "Actions:"))
	if meta.IsDirectory {
		out.Printf("  • Uninstall symlinks from %s\n", meta.Target)
	}
	if meta.IsDirectory && !opts.NoBackup && !opts.KeepFiles {
		stamp := rt.Now().Format(backup.TimestampFormat)
		out.Printf("  • Backup to: %s/%s%s/%s/\n", paths.BackupDirName, backup.DeletePrefix, stamp, name)
	}
	if meta.IsDirectory && !opts.KeepFiles {
		out.Printf("  • Remove directory: %s\n", meta.RelLocation(root))
	}
	if len(sections) > 0 {
		out.Println("  • Remove from configuration:")
		for _, s := range sections {
			out.Printf("    - %s\n", s)
		}
	}

	out.Println()
	out.Warning("This action cannot be undone (except via backup restore)")
	out.Println()
}

// configSections lists the descriptor sections that mention the package.
func configSections(cfg *config.Config, name string) []string {
	var sections []string
	if cfg.InConfig(name) {
		sections = append(sections, "all_packages")
	}
	if slices.Contains(cfg.SudoPackages, name) {
		sections = append(sections, "sudo_packages")
	}
	if _, ok := cfg.CustomTarget(name); ok {
		sections = append(sections, "package_targets")
	}
	if _, ok := cfg.SpecialFiles[name]; ok {
		sections = append(sections, "special_files")
	}
	return sections
}

func confirmName(rt *execution.Runtime, name string) bool {
	out := rt.Out
	out.Printf("%s %s\n", out.Style("Warning", "To confirm deletion, type the package name:"), name)
	answer, err := rt.Prompter.Ask("> ")
	if err != nil {
		out.Println()
		out.Warning("Operation cancelled by user")
		return false
	}
	if answer != name {
		out.Warning("Confirmation failed. Package not deleted.")
		return false
	}
	out.Success("Confirmed")
	out.Println()
	return true
}

// uninstall removes the package's links and checks none survived. It
// returns the links left behind and whether deletion may continue.
func uninstall(ctx context.Context, rt *execution.Runtime, meta packages.Metadata) ([]string, bool) {
	out := rt.Out
	name := meta.Name
	out.Info("Uninstalling symlinks for '%s'...", name)

	nested := rt
	if meta.SudoDir != "" && !rt.Config.IsSudo(name) {
		nested = rt.WithConfig(rt.Config.WithPackage(name, true, ""))
	}
	res, err := stow.Uninstall(ctx, nested, stow.Options{Packages: []string{name}, AssumeYes: true})
	if err != nil {
		rt.Log(logging.AuditWarning, "Uninstall had errors: %s", errors.Reason(err))
	} else if len(res.Failed) > 0 {
		rt.Log(logging.AuditWarning, "Uninstall had errors for '%s'", name)
	}

	remaining, err := conflicts.RemainingSymlinks(nested.Config, name)
	if err != nil {
		logger := logging.GetLogger("commands.remove")
		logger.Warn().Err(err).Str("package", name).Msg("Could not verify symlinks")
	}
	if len(remaining) == 0 {
		return nil, true
	}

	out.Warning("Some symlinks could not be removed:")
	for _, link := range remaining {
		out.Printf("  %s\n", link)
	}
	out.Println()
	out.Println("This may happen if:")
	out.Println("  - Files were modified manually")
	out.Println("  - Permission issues")
	out.Println("  - Stow encountered an error")
	out.Println()
	out.Println("Continue with deletion? This will remove the package from dotfiles,")
	out.Println("but symlinks will remain pointing to non-existent files.")

	if !rt.Prompter.Confirm("Continue with deletion?") {
		return remaining, false
	}
	rt.Log(logging.AuditWarning, "Deleting '%s' with %d symlinks left in place", name, len(remaining))
	return remaining, true
}

func showManualRecovery(rt *execution.Runtime, name, backupDir string) {
	out := rt.Out
	out.Error("Failed to update configuration file")
	out.Println()
	if backupDir != "" {
		out.Println("Package directory has been removed and backed up to:")
		out.Printf("  %s\n", backupDir)
		out.Println()
	}
	out.Printf("%s\n", out.Style("Warning", "MANUAL ACTION REQUIRED:"))
	out.Printf("1. Check %s permissions\n", paths.ConfigFileName)
	out.Printf("2. Manually remove '%s' from %s\n", name, paths.ConfigFileName)
	out.Printf("3. Or restore from backup: %s%s\n", paths.ConfigFileName, paths.ConfigBackupSuffix)
}

func showSummary(rt *execution.Runtime, opts Options, meta packages.Metadata, pr PackageResult) {
	out := rt.Out
	name := meta.Name
	rel := meta.RelLocation(rt.Config.DotfilesDir)

	out.Println()
	out.Header("Package Deleted Successfully!")
	out.Println()

	if meta.IsDirectory {
		out.Success("Symlinks removed from %s", meta.Target)
	}
	if pr.Backup != "" {
		out.Success("Backup created: %s", pr.Backup)
	}
	if meta.IsDirectory && !opts.KeepFiles {
		out.Success("Directory removed: %s", rel)
	}
	if len(pr.Sections) > 0 {
		out.Success("Configuration updated")
	}
	if len(pr.Dangling) > 0 {
		out.Warning("%d symlinks left pointing into the deleted package", len(pr.Dangling))
	}

	if pr.Backup != "" {
		dest := "."
		if meta.SudoDir != "" {
			dest = paths.SudoPackagesDir + string(filepath.Separator)
		}
		out.Println()
		out.Printf("%s\n", out.Style("Header", "To restore this package:"))
		out.Printf("1. Copy from backup: cp -r %s %s\n", pr.Backup, dest)
		out.Printf("2. Manually add '%s' back to %s\n", name, paths.ConfigFileName)
		out.Printf("3. Install: stowman install %s\n", name)
	}
	out.Println()
}
