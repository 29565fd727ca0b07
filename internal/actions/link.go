package actions

import (
	"context"
	"os"

	"github.com/kassick/dotdot/internal/errs"
	"github.com/kassick/dotdot/internal/logging"
	"github.com/kassick/dotdot/internal/paths"
)

// LinkAction symlinks a file or directory from the package into the home tree.
type LinkAction struct {
	SrcDest
}

// ParseLinkEntries builds the declared link actions for a raw spec entry
// list. Entries are strings, {from, to} mappings, or the "*" wildcard.
func ParseLinkEntries(packagePath string, entries []any) ([]Action, error) {
	parsed, err := parseSrcDestEntries(packagePath, entries)
	if err != nil {
		return nil, err
	}
	out := make([]Action, 0, len(parsed))
	for _, e := range parsed {
		out = append(out, LinkAction{SrcDest{
			Source:        e.src,
			Destination:   e.dst,
			SourceIsLocal: true,
			PackagePath:   packagePath,
		}})
	}
	return out, nil
}

func (a LinkAction) Materialize() (Action, error) {
	sd, err := a.SrcDest.materialize()
	if err != nil {
		return nil, err
	}
	return LinkAction{sd}, nil
}

func (a LinkAction) Describe() string {
	return describeSrcDest("symlink", a.SrcDest)
}

func (a LinkAction) Execute(ctx context.Context, dryRun bool) error {
	dest, err := paths.ExpandHome(a.Destination)
	if err != nil {
		return err
	}

	if fi, lerr := os.Lstat(dest); lerr == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			if target, rerr := os.Readlink(dest); rerr == nil && target == a.Source {
				// Already installed. Intentional no-op, not a failure.
				log := logging.GetLogger("actions")
				log.Info().Str("destination", dest).Msg("already linked, skipping")
				return nil
			}
		}
		if dryRun {
			return nil
		}
		backup, berr := paths.BackupName(dest)
		if berr != nil {
			return berr
		}
		if rerr := os.Rename(dest, backup); rerr != nil {
			return errs.Wrapf(rerr, errs.TargetUnwritable, "cannot back up %s", dest)
		}
	}

	if dryRun {
		return nil
	}
	if err := os.Symlink(a.Source, dest); err != nil {
		return errs.Wrapf(err, errs.TargetUnwritable, "cannot create symlink at %s", dest)
	}
	return nil
}
