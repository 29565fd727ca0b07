// Package dot loads packages ("dots"): named units of configuration with an
// ordered action list describing how to install them. A package is either a
// directory with a spec file, a plain directory (every child linked), or a
// single file (linked to its hidden name).
package dot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kassick/dotdot/internal/actions"
	"github.com/kassick/dotdot/internal/errs"
	"github.com/kassick/dotdot/internal/logging"
	"github.com/kassick/dotdot/internal/spec"
)

// DefaultVariant is the variant selected when none is requested and the one
// synthesized for spec files without a variants section.
const DefaultVariant = "default"

// Package is a loaded dot with its declared actions.
type Package struct {
	Name        string
	Description string
	Path        string
	Variants    []string
	Actions     []actions.Action
}

// specFile is the YAML shape of a package spec.
type specFile struct {
	Description string           `yaml:"description"`
	Actions     []any            `yaml:"actions"`
	Variants    map[string][]any `yaml:"variants"`
}

// FromPath loads the package at path, selecting the given variant (empty
// means DefaultVariant).
func FromPath(path, variant string) (*Package, error) {
	metadata := filepath.Join(path, spec.FileName)
	if fi, err := os.Stat(metadata); err == nil && !fi.IsDir() {
		return fromSpecFile(path, metadata, variant)
	}

	if fi, err := os.Stat(path); err == nil {
		if fi.IsDir() {
			return fromDirectory(path)
		}
		return fromFile(path)
	}
	return nil, errs.Newf(errs.InvalidPackage, "path %s does not contain a valid package", path)
}

// fromSpecFile parses a spec.yaml package.
func fromSpecFile(path, metadata, variant string) (*Package, error) {
	if variant == "" {
		variant = DefaultVariant
	}

	data, err := os.ReadFile(metadata)
	if err != nil {
		return nil, errs.Wrapf(err, errs.InvalidPackage, "cannot read %s", metadata)
	}
	var sf specFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, errs.Wrapf(err, errs.InvalidPackage, "cannot parse %s", metadata)
	}

	name := filepath.Base(path)
	description := sf.Description
	if description == "" {
		description = name
	}

	variants := sf.Variants
	if len(variants) == 0 {
		variants = map[string][]any{DefaultVariant: sf.Actions}
	}
	actionList, ok := variants[variant]
	if !ok {
		return nil, errs.Newf(errs.InvalidPackage,
			"package %s does not contain a variant named %q", name, variant)
	}

	parsed, err := parseActionList(path, actionList)
	if err != nil {
		return nil, err
	}

	variantNames := make([]string, 0, len(variants))
	for v := range variants {
		variantNames = append(variantNames, v)
	}
	sort.Strings(variantNames)

	return &Package{
		Name:        name,
		Description: description,
		Path:        path,
		Variants:    variantNames,
		Actions:     parsed,
	}, nil
}

// parseActionList turns the raw YAML action list into declared actions.
// Nested lists are flattened; each item maps action keys to their entries.
func parseActionList(path string, raw []any) ([]actions.Action, error) {
	var out []actions.Action
	for _, item := range flatten(raw) {
		mapping, ok := item.(map[string]any)
		if !ok {
			return nil, errs.Newf(errs.InvalidActionDescription,
				"action item must be a mapping, got %T", item)
		}

		// Items normally hold a single action key; keys are sorted so
		// multi-key items still parse deterministically.
		keys := make([]string, 0, len(mapping))
		for key := range mapping {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parse, err := actions.Lookup(key)
			if err != nil {
				return nil, err
			}
			parsed, err := parse(path, actions.NormalizeEntries(mapping[key]))
			if err != nil {
				return nil, fmt.Errorf("action %q: %w", key, err)
			}
			out = append(out, parsed...)
		}
	}
	return out, nil
}

// flatten expands nested action lists in declaration order.
func flatten(items []any) []any {
	var out []any
	for _, item := range items {
		if nested, ok := item.([]any); ok {
			out = append(out, flatten(nested)...)
			continue
		}
		out = append(out, item)
	}
	return out
}

// fromFile builds the simplest package: a single file linked to its hidden
// name under home.
func fromFile(path string) (*Package, error) {
	name := filepath.Base(path)
	return &Package{
		Name:     name,
		Path:     filepath.Dir(path),
		Variants: []string{DefaultVariant},
		Actions: []actions.Action{actions.LinkAction{SrcDest: actions.SrcDest{
			Source:        name,
			Destination:   "." + name,
			SourceIsLocal: true,
			PackagePath:   filepath.Dir(path),
		}}},
	}, nil
}

// fromDirectory builds a package linking every child of a spec-less
// directory to its hidden name under home.
func fromDirectory(path string) (*Package, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errs.Wrapf(err, errs.InvalidPackage, "cannot read %s", path)
	}

	var acts []actions.Action
	for _, entry := range entries {
		acts = append(acts, actions.LinkAction{SrcDest: actions.SrcDest{
			Source:        entry.Name(),
			Destination:   "." + entry.Name(),
			SourceIsLocal: true,
			PackagePath:   path,
		}})
	}
	return &Package{
		Name:     filepath.Base(path),
		Path:     path,
		Variants: []string{DefaultVariant},
		Actions:  acts,
	}, nil
}

// ScanError pairs a package name with its load failure.
type ScanError struct {
	Name string
	Err  error
}

// Scan loads every package under dotsPath with the default variant. Load
// failures do not abort the scan; they are reported alongside the packages
// that did load.
func Scan(dotsPath string) ([]*Package, []ScanError) {
	log := logging.GetLogger("dot")

	entries, err := os.ReadDir(dotsPath)
	if err != nil {
		return nil, []ScanError{{Name: dotsPath, Err: err}}
	}

	var pkgs []*Package
	var scanErrs []ScanError
	for _, entry := range entries {
		path := filepath.Join(dotsPath, entry.Name())
		pkg, err := FromPath(path, "")
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("skipping invalid package")
			scanErrs = append(scanErrs, ScanError{Name: entry.Name(), Err: err})
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, scanErrs
}
