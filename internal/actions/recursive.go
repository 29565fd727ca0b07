package actions

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/kassick/dotdot/internal/errs"
)

// LinkRecursiveAction symlinks every file inside a source directory tree to
// the corresponding path under the destination, reproducing the directory
// structure with real directories and per-file symlinks.
//
// Given a package folder
//
//	dir1/file1
//	dir1/subdir/file2
//
// LinkRecursive("dir1", ".dir1") installs
//
//	~/.dir1/file1        -> <package>/dir1/file1
//	~/.dir1/subdir/file2 -> <package>/dir1/subdir/file2
//
// Directories containing no files are not reproduced.
type LinkRecursiveAction struct {
	SrcDest

	// subActions holds the generated Mkdir/Link pairs, one pair per file
	// discovered under the source tree, in walk order.
	subActions []Action
}

// NewLinkRecursive builds the action and eagerly expands the source tree into
// its Mkdir/Link sub-actions from the declared (pre-materialize) paths.
func NewLinkRecursive(source, destination, packagePath string, sourceIsLocal bool) (LinkRecursiveAction, error) {
	if !sourceIsLocal {
		return LinkRecursiveAction{}, errs.Newf(errs.InvalidActionDescription,
			"cannot recursively link non-local source %q", source)
	}

	a := LinkRecursiveAction{SrcDest: SrcDest{
		Source:        source,
		Destination:   destination,
		SourceIsLocal: true,
		PackagePath:   packagePath,
	}}

	root := filepath.Join(packagePath, source)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		srcFile := filepath.Join(source, rel)
		dstDir := filepath.Join(destination, filepath.Dir(rel))
		dstFile := filepath.Join(dstDir, filepath.Base(rel))

		a.subActions = append(a.subActions,
			MkdirAction{TargetDir: dstDir},
			LinkAction{SrcDest{
				Source:        srcFile,
				Destination:   dstFile,
				SourceIsLocal: true,
				PackagePath:   packagePath,
			}},
		)
		return nil
	})
	if err != nil {
		return LinkRecursiveAction{}, errs.Wrapf(err, errs.InvalidActionDescription,
			"cannot walk source tree %s", root)
	}
	return a, nil
}

// ParseLinkRecursiveEntries builds the declared recursive-link actions for a
// raw spec entry list.
func ParseLinkRecursiveEntries(packagePath string, entries []any) ([]Action, error) {
	parsed, err := parseSrcDestEntries(packagePath, entries)
	if err != nil {
		return nil, err
	}
	out := make([]Action, 0, len(parsed))
	for _, e := range parsed {
		a, err := NewLinkRecursive(e.src, e.dst, packagePath, true)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// SubActions exposes the generated Mkdir/Link pairs in execution order.
func (a LinkRecursiveAction) SubActions() []Action {
	return a.subActions
}

func (a LinkRecursiveAction) Materialize() (Action, error) {
	if a.SrcDest.materialized {
		return a, nil
	}
	sd, err := a.SrcDest.materialize()
	if err != nil {
		return nil, err
	}
	subs := make([]Action, 0, len(a.subActions))
	for _, sub := range a.subActions {
		m, err := sub.Materialize()
		if err != nil {
			return nil, err
		}
		subs = append(subs, m)
	}
	return LinkRecursiveAction{SrcDest: sd, subActions: subs}, nil
}

func (a LinkRecursiveAction) Describe() string {
	return fmt.Sprintf("symlink tree %s -> %s (%d files)",
		a.Source, a.Destination, len(a.subActions)/2)
}

// Execute runs the sub-actions in order. Every Mkdir precedes the Link that
// depends on it, so the destination directory always exists before its
// symlink is created. The first failure aborts the remaining sub-actions.
func (a LinkRecursiveAction) Execute(ctx context.Context, dryRun bool) error {
	for _, sub := range a.subActions {
		if err := sub.Execute(ctx, dryRun); err != nil {
			return fmt.Errorf("%s: %w", sub.Describe(), err)
		}
	}
	return nil
}
