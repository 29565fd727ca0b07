// Package paths converts the package-relative paths authored in a spec file
// into their final, home-anchored form, and derives backup names for
// filesystem entries that are about to be replaced.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kassick/dotdot/internal/errs"
)

// backupAttempts bounds the search for a free backup slot. The limit guards
// against runaway accumulation of stale backups, not genuine collisions.
const backupAttempts = 10

// Home returns the user's home directory, falling back to the HOME
// environment variable when os.UserHomeDir fails.
func Home() (string, error) {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home, nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	return "", fmt.Errorf("unable to determine home directory")
}

// ExpandHome expands a leading "~" or "~/" in path to the home directory.
// Paths without a tilde prefix are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := Home()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// ResolveDestination anchors a declared destination at the user's home.
// Absolute and already-anchored ("~"-prefixed) destinations are kept as-is;
// relative ones are joined onto "~", which execution later expands.
func ResolveDestination(dest string) string {
	if filepath.IsAbs(dest) || dest == "~" || strings.HasPrefix(dest, "~/") {
		return dest
	}
	return filepath.Join("~", dest)
}

// ResolveSource resolves a declared source against its package directory.
//
// Non-local sources (URLs, git refs) are opaque locators and pass through
// untouched. Local sources become a path relative to the parent directory of
// the resolved destination, so the resulting symlink target stays valid if
// the home directory is relocated together with the package tree. The
// relative prefix is anchored at the destination's parent, not at the home
// directory, which is what keeps destinations nested more than one level
// deep correct.
func ResolveSource(source, packagePath, absDest string, sourceIsLocal bool) (string, error) {
	if !sourceIsLocal {
		return source, nil
	}

	pkgAbs, err := filepath.Abs(packagePath)
	if err != nil {
		return "", fmt.Errorf("resolve package path %q: %w", packagePath, err)
	}

	destExpanded, err := ExpandHome(absDest)
	if err != nil {
		return "", err
	}
	destParent := filepath.Dir(destExpanded)
	if !filepath.IsAbs(destParent) {
		if destParent, err = filepath.Abs(destParent); err != nil {
			return "", fmt.Errorf("resolve destination parent %q: %w", destParent, err)
		}
	}

	prefix, err := filepath.Rel(destParent, pkgAbs)
	if err != nil {
		return "", fmt.Errorf("relate %q to %q: %w", destParent, pkgAbs, err)
	}
	return filepath.Join(prefix, source), nil
}

// BackupName returns a free sibling name for path, trying <base>.bk,
// <base>.bk.1, <base>.bk.2, … in order. A leading dot in the basename is
// replaced with an underscore so the backup itself is not hidden.
func BackupName(path string) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		base = "_" + base[1:]
	}

	for i := 0; i < backupAttempts; i++ {
		name := base + ".bk"
		if i > 0 {
			name = fmt.Sprintf("%s.bk.%d", base, i)
		}
		candidate := filepath.Join(dir, name)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", errs.Newf(errs.TooManyBackups, "no free backup slot for %s after %d attempts", path, backupAttempts)
}
