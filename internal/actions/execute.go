package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kassick/dotdot/internal/shellrun"
)

// ExecuteAction runs an ordered sequence of shell commands under the package
// directory. The commands are chained into one guarded script: the first
// non-zero exit aborts the remaining commands.
type ExecuteAction struct {
	// Cmds are the command strings, in declaration order. Each entry may be
	// a multi-line script fragment, guarded as a single unit.
	Cmds []string

	// PackagePath is the working directory for the script. Materialize
	// resolves it to an absolute path.
	PackagePath string

	materialized bool
}

// ParseExecuteEntries builds one execute action holding all commands of the
// raw entry list, preserving order.
func ParseExecuteEntries(packagePath string, entries []any) ([]Action, error) {
	cmds, err := stringEntries(entries, "execute")
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 {
		return nil, nil
	}
	return []Action{ExecuteAction{Cmds: cmds, PackagePath: packagePath}}, nil
}

// Materialize resolves the package directory to an absolute path so the
// action stays runnable when the process's working directory moves.
func (a ExecuteAction) Materialize() (Action, error) {
	if a.materialized {
		return a, nil
	}
	abs, err := filepath.Abs(a.PackagePath)
	if err != nil {
		return nil, fmt.Errorf("resolve package path %q: %w", a.PackagePath, err)
	}
	return ExecuteAction{Cmds: a.Cmds, PackagePath: abs, materialized: true}, nil
}

func (a ExecuteAction) Describe() string {
	if len(a.Cmds) == 1 {
		return fmt.Sprintf("run %q", a.Cmds[0])
	}
	return fmt.Sprintf("run %d commands", len(a.Cmds))
}

func (a ExecuteAction) Execute(ctx context.Context, dryRun bool) error {
	if dryRun {
		return nil
	}
	return shellrun.Run(ctx, a.Cmds, a.PackagePath, os.Stdout, os.Stderr)
}
