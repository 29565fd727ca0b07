// Package runner installs loaded packages by materializing and executing
// their actions in declaration order.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kassick/dotdot/internal/audit"
	"github.com/kassick/dotdot/internal/color"
	"github.com/kassick/dotdot/internal/dot"
	"github.com/kassick/dotdot/internal/logging"
)

// Runner orchestrates package installation.
type Runner struct {
	DryRun bool
	Out    io.Writer
}

// New creates a Runner writing progress to stdout.
func New(dryRun bool) *Runner {
	return &Runner{DryRun: dryRun, Out: os.Stdout}
}

// InstallAll installs the packages in order. The first failing package stops
// the run; packages already installed are not rolled back.
func (r *Runner) InstallAll(ctx context.Context, pkgs []*dot.Package) error {
	for _, pkg := range pkgs {
		if err := r.InstallPackage(ctx, pkg); err != nil {
			return err
		}
	}
	return nil
}

// InstallPackage materializes and executes every action of one package, in
// declaration order. The first failing action aborts the package's remaining
// actions; completed actions are not undone.
func (r *Runner) InstallPackage(ctx context.Context, pkg *dot.Package) error {
	log := logging.GetLogger("runner")
	fmt.Fprintf(r.Out, "\n==> %s\n", color.Bold(pkg.Name))

	for _, declared := range pkg.Actions {
		action, err := declared.Materialize()
		if err != nil {
			fmt.Fprintf(r.Out, "  %s %s\n", color.BoldRed("error:"), err)
			return fmt.Errorf("package %q: %w", pkg.Name, err)
		}

		desc := action.Describe()
		if r.DryRun {
			fmt.Fprintf(r.Out, "  %s\n", color.Dim("[dry-run] "+desc))
		} else {
			fmt.Fprintf(r.Out, "  -> %s\n", desc)
		}

		execErr := action.Execute(ctx, r.DryRun)
		outcome := "success"
		errMsg := ""
		if execErr != nil {
			outcome = "failure"
			errMsg = execErr.Error()
		}
		audit.Log(audit.Entry{
			Package: pkg.Name,
			Action:  desc,
			Outcome: outcome,
			Error:   errMsg,
			DryRun:  r.DryRun,
		})

		if execErr != nil {
			log.Error().Err(execErr).Str("package", pkg.Name).Str("action", desc).Msg("action failed")
			fmt.Fprintf(r.Out, "  %s %s\n", color.BoldRed("error:"), execErr)
			return fmt.Errorf("package %q: action failed: %w", pkg.Name, execErr)
		}
	}
	return nil
}
