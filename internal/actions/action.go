// Package actions defines the typed actions a package install is made of:
// symlinking, copying, directory creation, recursive tree linking, git
// repository synchronization, and shell command execution.
//
// Every action goes through a two-phase lifecycle. Parsing a spec entry
// produces a declared action whose paths are still relative to the package
// directory. Materialize resolves those paths into their final, home-anchored
// form and returns an executable action. Execute consumes a materialized
// action exactly once.
package actions

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/kassick/dotdot/internal/errs"
	"github.com/kassick/dotdot/internal/paths"
	"github.com/kassick/dotdot/internal/spec"
)

// Action is one unit of install work.
type Action interface {
	// Materialize resolves the action's paths against its package directory
	// and the user's home, returning the executable form. Materializing an
	// already-materialized action returns it unchanged.
	Materialize() (Action, error)

	// Execute performs the action. When dryRun is true nothing is mutated.
	Execute(ctx context.Context, dryRun bool) error

	// Describe returns a human-readable, one-line description of the action.
	Describe() string
}

// SrcDest is the common shape of actions that move or reference an object
// from a package to a destination under the user's home.
type SrcDest struct {
	// Source is a path relative to PackagePath, an absolute path, or (when
	// SourceIsLocal is false) an opaque remote locator such as a git URL.
	Source string

	// Destination is a path relative to the user's home, or absolute.
	Destination string

	// SourceIsLocal is false for remote locators, which are never resolved
	// against the filesystem.
	SourceIsLocal bool

	// PackagePath anchors relative sources. Materialize replaces it with the
	// user's home directory so the action no longer depends on its origin.
	PackagePath string

	materialized bool
}

// materialize resolves the destination onto the home directory and the source
// against the destination's parent, per the rules in the paths package.
func (s SrcDest) materialize() (SrcDest, error) {
	if s.materialized {
		return s, nil
	}
	dest := paths.ResolveDestination(s.Destination)
	src, err := paths.ResolveSource(s.Source, s.PackagePath, dest, s.SourceIsLocal)
	if err != nil {
		return SrcDest{}, err
	}
	home, err := paths.Home()
	if err != nil {
		return SrcDest{}, err
	}
	return SrcDest{
		Source:        src,
		Destination:   dest,
		SourceIsLocal: s.SourceIsLocal,
		PackagePath:   home,
		materialized:  true,
	}, nil
}

// --- entry parsing -----------------------------------------------------------

// srcDestEntry is the normalized form of one parsed spec entry.
type srcDestEntry struct {
	src, dst string
}

// parseSrcDestEntry accepts either a bare string (source "x" maps to
// destination ".x") or a {from, to} mapping.
func parseSrcDestEntry(entry any) (srcDestEntry, error) {
	switch e := entry.(type) {
	case string:
		return srcDestEntry{src: e, dst: "." + e}, nil
	case map[string]any:
		src, srcOK := e["from"].(string)
		dst, dstOK := e["to"].(string)
		if !srcOK || !dstOK {
			return srcDestEntry{}, errs.Newf(errs.InvalidActionDescription,
				"entry requires `from` and `to` fields, got %v", e)
		}
		return srcDestEntry{src: src, dst: dst}, nil
	default:
		return srcDestEntry{}, errs.Newf(errs.InvalidActionDescription,
			"entry must be a string or a {from, to} mapping, got %T", entry)
	}
}

// expandWildcard handles the source "*" form: one entry per file directly
// inside the package directory, excluding the spec file itself. A destination
// other than the default ".*" redirects the generated entries under that
// common prefix.
func expandWildcard(packagePath string, e srcDestEntry) ([]srcDestEntry, error) {
	contents, err := os.ReadDir(packagePath)
	if err != nil {
		return nil, errs.Wrapf(err, errs.InvalidActionDescription,
			"cannot expand wildcard in %s", packagePath)
	}

	hasDestination := e.dst != ".*"
	names := make([]string, 0, len(contents))
	for _, entry := range contents {
		if entry.Name() == spec.FileName {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	out := make([]srcDestEntry, 0, len(names))
	for _, name := range names {
		dst := "." + name
		if hasDestination {
			dst = e.dst + "/" + name
		}
		out = append(out, srcDestEntry{src: name, dst: dst})
	}
	return out, nil
}

// parseSrcDestEntries normalizes an action's raw entry list into declared
// source/destination pairs, expanding wildcards.
func parseSrcDestEntries(packagePath string, entries []any) ([]srcDestEntry, error) {
	var out []srcDestEntry
	for _, raw := range entries {
		e, err := parseSrcDestEntry(raw)
		if err != nil {
			return nil, err
		}
		if e.src == "*" {
			expanded, err := expandWildcard(packagePath, e)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// stringEntries asserts that every raw entry is a plain string.
func stringEntries(entries []any, actionName string) ([]string, error) {
	out := make([]string, 0, len(entries))
	for _, raw := range entries {
		s, ok := raw.(string)
		if !ok {
			return nil, errs.Newf(errs.InvalidActionDescription,
				"%s entries must be strings, got %T", actionName, raw)
		}
		out = append(out, s)
	}
	return out, nil
}

// NormalizeEntries lifts a single raw spec value into the entry list shape the
// per-action parsers consume.
func NormalizeEntries(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func describeSrcDest(verb string, s SrcDest) string {
	return fmt.Sprintf("%s %s -> %s", verb, s.Source, s.Destination)
}
