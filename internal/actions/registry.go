package actions

import (
	"sort"
	"strings"

	"github.com/kassick/dotdot/internal/errs"
)

// ParseFunc turns the raw entry list of one spec key into declared actions.
type ParseFunc func(packagePath string, entries []any) ([]Action, error)

// registration describes one action type as seen by the spec parser.
type registration struct {
	Parse ParseFunc
	Help  string
}

// registry maps spec keys to their action parsers. It is built once and
// never mutated afterwards.
var registry = map[string]registration{
	"link": {
		Parse: ParseLinkEntries,
		Help: "Symlink a file or directory into the home tree.\n" +
			"Entries: a file name (linked to ~/.<name>), a {from, to} mapping,\n" +
			"or '*' for every file in the package.",
	},
	"copy": {
		Parse: ParseCopyEntries,
		Help: "Copy a file or directory into the home tree.\n" +
			"Entries match link; the installed copy does not track later edits.",
	},
	"mkdir": {
		Parse: ParseMkdirEntries,
		Help:  "Create a directory chain under the home tree.\nEntries: directory paths.",
	},
	"link_recursively": {
		Parse: ParseLinkRecursiveEntries,
		Help: "Symlink every file inside a directory tree to the corresponding\n" +
			"path under the destination, creating real directories as needed.",
	},
	"git_clone": {
		Parse: ParseGitCloneEntries,
		Help: "Clone or update a git repository.\n" +
			"Entries: {url, to} mappings with an optional branch field.",
	},
	"execute": {
		Parse: ParseExecuteEntries,
		Help: "Run shell commands under the package directory.\n" +
			"Commands run in order; the first failure aborts the rest.",
	},
}

// Lookup returns the parser for a spec key, case-insensitively.
func Lookup(name string) (ParseFunc, error) {
	reg, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, errs.Newf(errs.InvalidActionType, "invalid action %q", name)
	}
	return reg.Parse, nil
}

// Names lists the registered action type names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help returns the help text for an action type, or "" for unknown names.
func Help(name string) string {
	return registry[strings.ToLower(name)].Help
}
