// Package privileged installs the files of privileged packages.
//
// A privileged package lives under sudo_packages/<name>/ and is never
// handed to the linker. Each special_files mapping copies one file to an
// absolute destination, through the elevation wrapper when the mapping
// sets sudo. Failures are per file: one bad mapping never stops the rest.
package privileged

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/stowman/pkg/config"
	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/filesystem"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/paths"
	"github.com/arthur-debert/stowman/pkg/prompt"
	"github.com/arthur-debert/stowman/pkg/runner"
	"github.com/arthur-debert/stowman/pkg/ui"
)

// Operation selects what Handle does with each mapping.
type Operation string

const (
	Install   Operation = "install"
	Uninstall Operation = "uninstall"
)

// BackupSuffix names the single backup slot next to an overwritten
// destination. Each install overwrites the previous backup.
const BackupSuffix = ".backup"

// RootOwner is applied to destinations copied with elevation.
const RootOwner = "root:root"

// Result lists what happened to each destination.
type Result struct {
	Installed []string
	Removed   []string
	Skipped   []string
	Failed    []string
}

// Handler performs privileged installs and removals.
type Handler struct {
	cfg      *config.Config
	elevator string
	runner   runner.Runner
	prompter prompt.Prompter
	out      *ui.Printer
	audit    *logging.Audit
}

// NewHandler creates a Handler. elevator is the wrapper binary, usually
// sudo.
func NewHandler(cfg *config.Config, elevator string, r runner.Runner, p prompt.Prompter, out *ui.Printer, audit *logging.Audit) *Handler {
	if elevator == "" {
		elevator = "sudo"
	}
	if audit == nil {
		audit = logging.NopAudit()
	}
	return &Handler{
		cfg:      cfg,
		elevator: elevator,
		runner:   r,
		prompter: p,
		out:      out,
		audit:    audit,
	}
}

// Handle runs op for every mapping of pkg, or only for the mapping whose
// src equals file when file is not empty.
func (h *Handler) Handle(ctx context.Context, pkg string, op Operation, file string) *Result {
	result := &Result{}
	logger := logging.GetLogger("privileged")

	files, ok := h.cfg.Mappings(pkg)
	if !ok {
		h.out.Warning("Package '%s' not found in special_files configuration", pkg)
		return result
	}

	if file != "" {
		files = Filter(files, file)
		if len(files) == 0 {
			h.out.Error("File '%s' not found in package '%s' configuration", file, pkg)
			return result
		}
	}

	if len(files) == 0 {
		h.out.Warning("No files configured for package '%s'", pkg)
		return result
	}

	root := paths.PackageDir(h.cfg.DotfilesDir, pkg, true)
	for _, m := range files {
		if err := m.Validate(); err != nil {
			h.out.Error("Invalid file configuration in package '%s': %s", pkg, m)
			result.Failed = append(result.Failed, m.Dst)
			continue
		}

		src := filepath.Join(root, m.Src)
		if _, err := os.Stat(src); err != nil {
			h.out.Error("Source file not found: %s", src)
			result.Failed = append(result.Failed, m.Dst)
			continue
		}

		logger.Debug().Str("package", pkg).Str("src", src).Str("dst", m.Dst).Bool("sudo", m.Sudo).Str("op", string(op)).Msg("Processing mapping")

		switch op {
		case Install:
			h.install(ctx, pkg, src, m, result)
		case Uninstall:
			h.uninstall(ctx, pkg, m, result)
		}
	}

	return result
}

// Filter keeps the mappings whose src equals file.
func Filter(files []config.FileMapping, file string) []config.FileMapping {
	var out []config.FileMapping
	for _, m := range files {
		if m.Src == file {
			out = append(out, m)
		}
	}
	return out
}

func (h *Handler) install(ctx context.Context, pkg, src string, m config.FileMapping, result *Result) {
	h.out.Info("Installing %s → %s (sudo=%t)", filepath.Base(src), m.Dst, m.Sudo)

	if _, err := os.Stat(m.Dst); err == nil {
		backupPath := m.Dst + BackupSuffix
		if err := h.copy(ctx, m.Dst, backupPath, m.Sudo); err != nil {
			h.out.Warning("Could not create backup: %s", errors.Reason(err))
		} else {
			h.out.Info("Backup created: %s", backupPath)
		}
	}

	if err := h.copy(ctx, src, m.Dst, m.Sudo); err != nil {
		h.out.Error("Error installing %s: %s", m.Dst, errors.Reason(err))
		h.audit.Error("Failed to install '%s': %s", pkg, errors.Reason(err))
		result.Failed = append(result.Failed, m.Dst)
		return
	}

	if m.Sudo {
		if err := h.elevate(ctx, "chown", RootOwner, m.Dst); err != nil {
			h.out.Error("Error installing %s: %s", m.Dst, errors.Reason(err))
			h.audit.Error("Failed to install '%s': %s", pkg, errors.Reason(err))
			result.Failed = append(result.Failed, m.Dst)
			return
		}
		h.out.Success("System file installed: %s", m.Dst)
		h.audit.Success("Sudo package '%s' installed: %s → %s", pkg, src, m.Dst)
	} else {
		h.out.Success("File installed: %s", m.Dst)
		h.audit.Success("Package '%s' installed: %s → %s", pkg, src, m.Dst)
	}
	result.Installed = append(result.Installed, m.Dst)
}

func (h *Handler) uninstall(ctx context.Context, pkg string, m config.FileMapping, result *Result) {
	if _, err := os.Lstat(m.Dst); err != nil {
		h.out.Info("File not found (already removed): %s", m.Dst)
		result.Skipped = append(result.Skipped, m.Dst)
		return
	}

	question := fmt.Sprintf("Remove %s?", m.Dst)
	if m.Sudo {
		question += " (requires sudo)"
	}
	if !h.prompter.Confirm(question) {
		h.out.Warning("Skipped: %s", m.Dst)
		result.Skipped = append(result.Skipped, m.Dst)
		return
	}

	var err error
	if m.Sudo {
		err = h.elevate(ctx, "rm", m.Dst)
	} else if rmErr := os.Remove(m.Dst); rmErr != nil {
		err = errors.Wrap(rmErr, errors.ErrFileRemove, "remove failed")
	}
	if err != nil {
		h.out.Error("Error removing %s: %s", m.Dst, errors.Reason(err))
		h.audit.Error("Failed to uninstall '%s': %s", pkg, errors.Reason(err))
		result.Failed = append(result.Failed, m.Dst)
		return
	}

	if m.Sudo {
		h.out.Success("System file removed: %s", m.Dst)
		h.audit.Success("Sudo package '%s' uninstalled: %s", pkg, m.Dst)
	} else {
		h.out.Success("File removed: %s", m.Dst)
		h.audit.Success("Package '%s' uninstalled: %s", pkg, m.Dst)
	}
	result.Removed = append(result.Removed, m.Dst)
}

// copy copies src to dst, locally with metadata or through the elevator.
func (h *Handler) copy(ctx context.Context, src, dst string, elevated bool) error {
	if elevated {
		return h.elevate(ctx, "cp", src, dst)
	}
	if err := filesystem.CopyFile(src, dst); err != nil {
		return errors.Wrap(err, errors.ErrFileCopy, "copy failed")
	}
	return nil
}

func (h *Handler) elevate(ctx context.Context, args ...string) error {
	cmd := runner.Command{Name: h.elevator, Args: args}
	logging.LogCommand(logging.GetLogger("privileged"), cmd.Name, cmd.Args, "")
	res, err := h.runner.Run(ctx, cmd)
	if err != nil {
		return errors.Wrapf(err, errors.ErrElevation, "%s %s failed", h.elevator, args[0]).
			WithDetail("stderr", res.Stderr)
	}
	return nil
}
