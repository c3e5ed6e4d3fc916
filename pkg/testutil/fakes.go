// pkg/testutil/fakes.go
// DEPENDENCIES: pkg/runner, pkg/filesystem
// PURPOSE: Filesystem-level emulations of stow and sudo for workflow tests

package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/stowman/pkg/filesystem"
	"github.com/arthur-debert/stowman/pkg/paths"
	"github.com/arthur-debert/stowman/pkg/runner"
)

// Route dispatches commands to handlers by binary name. Unrouted
// commands succeed with no output.
func Route(handlers map[string]RunHandler) RunHandler {
	return func(cmd runner.Command) (runner.Result, error) {
		if h, ok := handlers[cmd.Name]; ok {
			return h(cmd)
		}
		return runner.Result{}, nil
	}
}

// NewStowRunner returns a FakeRunner whose "stow" behaves like FakeStow,
// whose "sudo" behaves like FakeElevator and whose other commands succeed.
func NewStowRunner() *FakeRunner {
	r := NewFakeRunner()
	r.Handler = Route(map[string]RunHandler{
		"stow": FakeStow,
		"sudo": FakeElevator,
	})
	return r
}

// FakeStow emulates the stow invocations stowman makes: -R, -D or
// --adopt, with -t <target>, optional -n and -v, package name last, run
// from the repository root. Links are made file by file with relative
// link texts. Placeholder files are not linked. As with stow, any
// conflict aborts the whole package before anything changes.
func FakeStow(cmd runner.Command) (runner.Result, error) {
	var (
		mode     string
		target   string
		simulate bool
		pkg      string
	)
	for i := 0; i < len(cmd.Args); i++ {
		switch a := cmd.Args[i]; a {
		case "--version":
			return runner.Result{Stdout: "stow (GNU Stow) version 2.3.1\n"}, nil
		case "-R", "-D", "--adopt", "-S":
			mode = a
		case "-n":
			simulate = true
		case "-v":
		case "-t":
			i++
			if i < len(cmd.Args) {
				target = cmd.Args[i]
			}
		default:
			pkg = a
		}
	}

	pkgDir := filepath.Join(cmd.Dir, pkg)
	if info, err := os.Stat(pkgDir); err != nil || !info.IsDir() {
		return Fail(cmd, 2, fmt.Sprintf("stow: ERROR: The stow directory %s does not contain package %s\n", cmd.Dir, pkg))
	}

	files, err := packageFiles(pkgDir)
	if err != nil {
		return Fail(cmd, 2, err.Error())
	}

	var log strings.Builder
	switch mode {
	case "-D":
		for _, rel := range files {
			dst := filepath.Join(target, rel)
			if !pointsAt(dst, filepath.Join(pkgDir, rel)) {
				continue
			}
			fmt.Fprintf(&log, "UNLINK: %s\n", rel)
			if !simulate {
				if err := os.Remove(dst); err != nil {
					return Fail(cmd, 2, err.Error())
				}
			}
		}
	default:
		var conflicts []string
		for _, rel := range files {
			dst := filepath.Join(target, rel)
			info, err := os.Lstat(dst)
			if err != nil || pointsAt(dst, filepath.Join(pkgDir, rel)) {
				continue
			}
			if info.Mode().IsRegular() && mode == "--adopt" {
				continue
			}
			conflicts = append(conflicts, rel)
		}
		if len(conflicts) > 0 {
			msg := fmt.Sprintf("WARNING! stowing %s would cause conflicts:\n", pkg)
			for _, c := range conflicts {
				msg += fmt.Sprintf("  * existing target is neither a link nor a directory: %s\n", c)
			}
			msg += "All operations aborted.\n"
			return Fail(cmd, 1, msg)
		}

		for _, rel := range files {
			src := filepath.Join(pkgDir, rel)
			dst := filepath.Join(target, rel)
			if pointsAt(dst, src) {
				continue
			}
			if IsRegularFile(dst) {
				fmt.Fprintf(&log, "MV: %s -> %s/%s\n", rel, pkg, rel)
				if !simulate {
					if err := os.Rename(dst, src); err != nil {
						return Fail(cmd, 2, err.Error())
					}
				}
			}
			linkText, _ := filepath.Rel(filepath.Dir(dst), src)
			fmt.Fprintf(&log, "LINK: %s => %s\n", rel, linkText)
			if simulate {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return Fail(cmd, 2, err.Error())
			}
			if err := os.Symlink(linkText, dst); err != nil {
				return Fail(cmd, 2, err.Error())
			}
		}
	}

	if simulate {
		log.WriteString("WARNING: in simulation mode so not modifying filesystem.\n")
	}
	return runner.Result{Stderr: log.String()}, nil
}

// FakeElevator runs the wrapped cp, rm and chown commands directly.
// chown is accepted and ignored so tests need not run as root.
func FakeElevator(cmd runner.Command) (runner.Result, error) {
	if len(cmd.Args) == 0 {
		return Fail(cmd, 1, "usage: sudo command\n")
	}
	args := cmd.Args[1:]
	switch cmd.Args[0] {
	case "cp":
		operands := withoutFlags(args)
		if len(operands) != 2 {
			return Fail(cmd, 1, "cp: missing operand\n")
		}
		if err := filesystem.CopyFile(operands[0], operands[1]); err != nil {
			return Fail(cmd, 1, fmt.Sprintf("cp: %v\n", err))
		}
	case "rm":
		for _, p := range withoutFlags(args) {
			if err := os.Remove(p); err != nil {
				return Fail(cmd, 1, fmt.Sprintf("rm: %v\n", err))
			}
		}
	case "chown":
	default:
		return Fail(cmd, 1, fmt.Sprintf("sudo: %s: command not found\n", cmd.Args[0]))
	}
	return runner.Result{}, nil
}

func withoutFlags(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

func packageFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || d.Name() == paths.PlaceholderFile {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	sort.Strings(files)
	return files, err
}

func pointsAt(link, src string) bool {
	if !IsSymlink(link) {
		return false
	}
	got, err := filepath.EvalSymlinks(link)
	if err != nil {
		return false
	}
	want, err := filepath.EvalSymlinks(src)
	return err == nil && got == want
}
