// Package testutil provides utilities for testing stowman components.
//
// Key components:
//   - TestEnvironment: temporary repository and home directory with the
//     environment variables pointing into them
//   - FakeRunner: records external commands and answers through handlers;
//     FakeStow and FakeElevator emulate stow and sudo on the real
//     filesystem
//   - ScriptedPrompter: canned answers for confirmation gates
//   - Output: captured, uncolored printer output
//
// Usage guidelines:
//   - Workflow tests use a real filesystem under t.TempDir(); nothing
//     touches the user's home
//   - All test data is defined inline, not in external files
//   - Packages that import testutil are tested from their _test package
//     to avoid import cycles
package testutil
