// Package list prints the configured packages.
package list

import (
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/stowman/pkg/commands/execution"
	"github.com/arthur-debert/stowman/pkg/logging"
)

// WSLPackage is only meaningful under Windows Subsystem for Linux.
const WSLPackage = "wsl"

// ProcVersionPath is read to detect WSL.
var ProcVersionPath = "/proc/version"

// Entry is one listed package.
type Entry struct {
	Name string
	Sudo bool
	// WSLOnly marks the wsl package when not running under WSL
	WSLOnly bool
}

// Result holds the listed packages, sorted by name.
type Result struct {
	Packages []Entry
}

// List prints all_packages sorted by name with their markers. Packages
// are taken from configuration, not from the repository tree.
func List(rt *execution.Runtime) (*Result, error) {
	logger := logging.GetLogger("commands.list")

	names := append([]string(nil), rt.Config.AllPackages...)
	sort.Strings(names)
	wsl := IsWSL(ProcVersionPath)
	logger.Debug().Int("count", len(names)).Bool("wsl", wsl).Msg("Listing packages")

	result := &Result{Packages: make([]Entry, 0, len(names))}
	out := rt.Out
	out.Header("Available Packages")

	for _, name := range names {
		e := Entry{Name: name}
		switch {
		case rt.Config.IsSudo(name):
			e.Sudo = true
			out.Printf("  %s %s\n", name, out.Style("Warning", "(requires sudo)"))
		case name == WSLPackage && !wsl:
			e.WSLOnly = true
			out.Printf("  %s %s\n", name, out.Style("Info", "(WSL only)"))
		default:
			out.Printf("  %s\n", name)
		}
		result.Packages = append(result.Packages, e)
	}

	out.Printf("\nTotal: %d packages\n", len(names))
	return result, nil
}

// IsWSL reports whether the kernel version file mentions Microsoft.
func IsWSL(procVersion string) bool {
	data, err := os.ReadFile(procVersion)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}
