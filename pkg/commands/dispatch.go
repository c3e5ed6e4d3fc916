package commands

import (
	"context"
	"fmt"

	"github.com/arthur-debert/stowman/pkg/commands/adopt"
	"github.com/arthur-debert/stowman/pkg/commands/check"
	"github.com/arthur-debert/stowman/pkg/commands/create"
	"github.com/arthur-debert/stowman/pkg/commands/list"
	"github.com/arthur-debert/stowman/pkg/commands/remove"
	"github.com/arthur-debert/stowman/pkg/commands/status"
	"github.com/arthur-debert/stowman/pkg/commands/stow"
	"github.com/arthur-debert/stowman/pkg/logging"
)

// CommandType represents the command being executed
type CommandType string

const (
	// Linker commands
	CommandInstall   CommandType = "install"
	CommandUninstall CommandType = "uninstall"
	CommandRestow    CommandType = "restow"
	CommandAdopt     CommandType = "adopt"

	// Reports
	CommandStatus CommandType = "status"
	CommandList   CommandType = "list"
	CommandCheck  CommandType = "check"

	// Package lifecycle
	CommandNew    CommandType = "new"
	CommandDelete CommandType = "delete"
)

// NeedsLinker reports whether the command cannot run without the linker
// binary.
func (c CommandType) NeedsLinker() bool {
	switch c {
	case CommandInstall, CommandUninstall, CommandRestow, CommandAdopt, CommandNew, CommandDelete:
		return true
	}
	return false
}

// DispatchOptions contains all possible options for the commands.
// Each command uses only the fields it needs.
type DispatchOptions struct {
	// Common fields
	Packages []string
	DryRun   bool

	// For install, uninstall and restow
	All bool

	// For adopt
	NoGit bool

	// For new
	Name   string
	From   string
	Sudo   bool
	Target string

	// For delete
	Force     bool
	KeepFiles bool
	NoBackup  bool
}

// DispatchResult holds the result of whichever command ran.
type DispatchResult struct {
	Command CommandType

	Stow   *stow.Result
	Adopt  *adopt.Result
	Create *create.Result
	Delete *remove.Result
	Status *status.Result
	List   *list.Result
	Check  *check.Result
}

// Dispatch runs cmdType with the relevant fields of opts. Per-package
// failures are reported by the command and never surface as an error;
// an error means the invocation itself was unusable.
func Dispatch(ctx context.Context, rt *Runtime, cmdType CommandType, opts DispatchOptions) (*DispatchResult, error) {
	logger := logging.GetLogger("commands.dispatch")
	logger.Debug().
		Str("command", string(cmdType)).
		Str("dotfilesDir", rt.Config.DotfilesDir).
		Strs("packages", opts.Packages).
		Bool("dryRun", opts.DryRun).
		Msg("Dispatching command")

	result := &DispatchResult{Command: cmdType}
	var err error

	stowOpts := stow.Options{Packages: opts.Packages, All: opts.All, DryRun: opts.DryRun}

	switch cmdType {
	case CommandInstall:
		result.Stow, err = stow.Install(ctx, rt, stowOpts)
	case CommandUninstall:
		result.Stow, err = stow.Uninstall(ctx, rt, stowOpts)
	case CommandRestow:
		result.Stow, err = stow.Restow(ctx, rt, stowOpts)

	case CommandAdopt:
		result.Adopt, err = adopt.Adopt(ctx, rt, adopt.Options{
			Packages: opts.Packages,
			NoGit:    opts.NoGit,
		})

	case CommandStatus:
		result.Status, err = status.Status(rt, status.Options{Packages: opts.Packages})
	case CommandList:
		result.List, err = list.List(rt)
	case CommandCheck:
		result.Check, err = check.Check(rt, check.Options{Packages: opts.Packages})

	case CommandNew:
		result.Create, err = create.New(ctx, rt, create.Options{
			Name:   opts.Name,
			From:   opts.From,
			Sudo:   opts.Sudo,
			Target: opts.Target,
			DryRun: opts.DryRun,
		})

	case CommandDelete:
		result.Delete, err = remove.Delete(ctx, rt, remove.Options{
			Packages:  opts.Packages,
			Force:     opts.Force,
			DryRun:    opts.DryRun,
			KeepFiles: opts.KeepFiles,
			NoBackup:  opts.NoBackup,
		})

	default:
		return nil, fmt.Errorf("unknown command type: %s", cmdType)
	}

	if err != nil {
		logger.Error().
			Str("command", string(cmdType)).
			Err(err).
			Msg("Command execution failed")
		return nil, err
	}

	logger.Info().Str("command", string(cmdType)).Msg("Command completed")
	return result, nil
}
