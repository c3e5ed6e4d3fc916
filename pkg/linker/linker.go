// Package linker drives GNU Stow. stowman never creates package symlinks
// itself: every link, unlink and adopt goes through one stow invocation
// per package, run from the repository root.
package linker

import (
	"context"

	"github.com/arthur-debert/stowman/pkg/errors"
	"github.com/arthur-debert/stowman/pkg/logging"
	"github.com/arthur-debert/stowman/pkg/runner"
)

// Op is a stow operation.
type Op string

const (
	// OpInstall (re)creates the package links; stow -R
	OpInstall Op = "install"
	// OpUninstall removes the package links; stow -D
	OpUninstall Op = "uninstall"
	// OpAdopt moves existing target files into the package, then links; stow --adopt
	OpAdopt Op = "adopt"
)

func (o Op) flag() string {
	switch o {
	case OpUninstall:
		return "-D"
	case OpAdopt:
		return "--adopt"
	default:
		return "-R"
	}
}

// Stow invokes the linker binary through a runner.
type Stow struct {
	Binary string
	// Dir is the stow directory, i.e. the repository root
	Dir    string
	runner runner.Runner
}

// New creates a Stow. An empty binary means "stow".
func New(binary, dir string, r runner.Runner) *Stow {
	if binary == "" {
		binary = "stow"
	}
	return &Stow{Binary: binary, Dir: dir, runner: r}
}

// Command builds the invocation for op on pkg into target.
func (s *Stow) Command(op Op, pkg, target string, simulate bool) runner.Command {
	args := []string{"-v"}
	if simulate {
		args = append(args, "-n")
	}
	args = append(args, op.flag(), "-t", target, pkg)
	return runner.Command{Name: s.Binary, Args: args, Dir: s.Dir}
}

// Run executes op for one package. A non-zero exit is returned as an
// ErrLinker error carrying the linker's diagnostics together with the
// captured result.
func (s *Stow) Run(ctx context.Context, op Op, pkg, target string, simulate bool) (runner.Result, error) {
	cmd := s.Command(op, pkg, target, simulate)
	logger := logging.GetLogger("linker")
	logging.LogCommand(logger, cmd.Name, cmd.Args, cmd.Dir)

	res, err := s.runner.Run(ctx, cmd)
	if err != nil {
		logger.Debug().Str("package", pkg).Int("exit", res.ExitCode).Msg("stow failed")
		return res, errors.Wrapf(err, errors.ErrLinker, "stow %s failed for '%s'", op, pkg).
			WithDetail("package", pkg).
			WithDetail("stderr", res.Stderr)
	}
	return res, nil
}

// Available reports whether the linker binary can be run.
func (s *Stow) Available(ctx context.Context) error {
	if _, err := s.runner.LookPath(s.Binary); err != nil {
		return errors.Wrapf(err, errors.ErrToolMissing, "%s is not installed", s.Binary)
	}
	if _, err := s.runner.Run(ctx, runner.Command{Name: s.Binary, Args: []string{"--version"}}); err != nil {
		return errors.Wrapf(err, errors.ErrToolMissing, "%s is not usable", s.Binary)
	}
	return nil
}
