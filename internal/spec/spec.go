// Package spec holds constants shared by the spec-file loader and the
// action parsers.
package spec

// FileName is the per-package declarative spec file.
const FileName = "spec.yaml"
