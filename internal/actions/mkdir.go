package actions

import (
	"context"
	"fmt"
	"os"

	"github.com/kassick/dotdot/internal/errs"
	"github.com/kassick/dotdot/internal/paths"
)

// MkdirAction creates a directory chain under the home tree. An existing
// directory at the target is a no-op.
type MkdirAction struct {
	// TargetDir is relative to the user's home, or absolute.
	TargetDir string

	materialized bool
}

// ParseMkdirEntries builds the declared mkdir actions from bare strings or
// string lists.
func ParseMkdirEntries(packagePath string, entries []any) ([]Action, error) {
	dirs, err := stringEntries(entries, "mkdir")
	if err != nil {
		return nil, err
	}
	out := make([]Action, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, MkdirAction{TargetDir: dir})
	}
	return out, nil
}

func (a MkdirAction) Materialize() (Action, error) {
	if a.materialized {
		return a, nil
	}
	return MkdirAction{
		TargetDir:    paths.ResolveDestination(a.TargetDir),
		materialized: true,
	}, nil
}

func (a MkdirAction) Describe() string {
	return fmt.Sprintf("mkdir -p %s", a.TargetDir)
}

func (a MkdirAction) Execute(ctx context.Context, dryRun bool) error {
	dir, err := paths.ExpandHome(a.TargetDir)
	if err != nil {
		return err
	}

	if fi, serr := os.Stat(dir); serr == nil {
		if fi.IsDir() {
			return nil
		}
		return errs.Newf(errs.NotADirectory, "%s exists and is not a directory", dir)
	}

	if dryRun {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrapf(err, errs.TargetUnwritable, "cannot create directory %s", dir)
	}
	return nil
}
