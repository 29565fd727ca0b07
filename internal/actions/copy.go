package actions

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kassick/dotdot/internal/errs"
	"github.com/kassick/dotdot/internal/paths"
)

// CopyAction copies a file or directory tree from the package into the home
// tree. Unlike LinkAction, the installed object does not follow later edits
// to the package copy.
type CopyAction struct {
	SrcDest
}

// ParseCopyEntries builds the declared copy actions for a raw spec entry
// list. The entry shapes match ParseLinkEntries.
func ParseCopyEntries(packagePath string, entries []any) ([]Action, error) {
	parsed, err := parseSrcDestEntries(packagePath, entries)
	if err != nil {
		return nil, err
	}
	out := make([]Action, 0, len(parsed))
	for _, e := range parsed {
		out = append(out, CopyAction{SrcDest{
			Source:        e.src,
			Destination:   e.dst,
			SourceIsLocal: true,
			PackagePath:   packagePath,
		}})
	}
	return out, nil
}

func (a CopyAction) Materialize() (Action, error) {
	sd, err := a.SrcDest.materialize()
	if err != nil {
		return nil, err
	}
	return CopyAction{sd}, nil
}

func (a CopyAction) Describe() string {
	return describeSrcDest("copy", a.SrcDest)
}

func (a CopyAction) Execute(ctx context.Context, dryRun bool) error {
	dest, err := paths.ExpandHome(a.Destination)
	if err != nil {
		return err
	}

	// A materialized source is relative to the destination's parent, so a
	// source that is still relative after home expansion is anchored there,
	// never at the process's working directory.
	src, err := paths.ExpandHome(a.Source)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(dest), src)
	}

	info, err := os.Stat(src)
	if err != nil {
		return errs.Wrapf(err, errs.InvalidActionDescription, "copy source %s", src)
	}

	if dryRun {
		return nil
	}

	if _, lerr := os.Lstat(dest); lerr == nil {
		backup, berr := paths.BackupName(dest)
		if berr != nil {
			return berr
		}
		if rerr := os.Rename(dest, backup); rerr != nil {
			return errs.Wrapf(rerr, errs.TargetUnwritable, "cannot back up %s", dest)
		}
	}

	if info.IsDir() {
		err = copyDir(src, dest)
	} else {
		err = copyFile(src, dest)
	}
	if err != nil {
		return errs.Wrapf(err, errs.TargetUnwritable, "cannot copy to %s", dest)
	}
	return nil
}

// --- helpers -----------------------------------------------------------------

// copyFile copies a single file, preserving its permission bits.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, info.Mode().Perm())
}

// copyDir recursively copies the src directory tree into dst, preserving
// structure and creating dst if needed.
func copyDir(src, dst string) error {
	src = filepath.Clean(src)
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}
