// Package commands provides the command implementations for stowman.
//
// This package contains the orchestration layer that sits between the
// CLI and the building blocks (linker, privileged handler, backups,
// configuration). Every command runs against an execution.Runtime.
//
// Each command is implemented in its own subdirectory:
//   - stow/      - install, uninstall, restow
//   - adopt/     - adopt existing files into packages
//   - create/    - new package scaffolding
//   - remove/    - package deletion
//   - status/    - per-file status report
//   - list/      - configured package listing
//   - check/     - dangling symlink check
//   - execution/ - the shared Runtime
//
// Dispatch in dispatch.go is the single entry point the CLI uses.
package commands

import (
	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/commands/remove"
)

// Runtime carries configuration, output and collaborators to a command.
type Runtime = execution.Runtime

// DeleteOutcome is what delete did to one package.
type DeleteOutcome = remove.Outcome
