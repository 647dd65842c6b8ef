// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the cxxport pipeline:
// file roles and extension mappings, per-file conversion records, audit
// verdicts, and the configuration structs consumed by each stage.
package types

import (
	"path/filepath"
	"strings"
)

// Role identifies which rule set and which audit checks apply to a file.
type Role string

const (
	// RoleHeader marks declaration files (".h" inputs).
	RoleHeader Role = "header"

	// RoleSource marks implementation files (".c" inputs).
	RoleSource Role = "source"
)

// SourceFile is one input file discovered in the migration tree. The
// content snapshot is taken once at read time; the pipeline never mutates
// the source tree.
type SourceFile struct {
	// Path is the location of the file on disk.
	Path string `json:"path" yaml:"path"`

	// Rel is the path relative to the tree root, mirrored in the output tree.
	Rel string `json:"rel" yaml:"rel"`

	// Role selects the header or source rule set.
	Role Role `json:"role" yaml:"role"`

	// Content is the raw text, filled when the file is read.
	Content []byte `json:"-" yaml:"-"`
}

// Extensions maps input file extensions to their migrated counterparts.
type Extensions struct {
	// SourceIn is the implementation input extension (default ".c").
	SourceIn string `json:"source_in" yaml:"source_in"`

	// HeaderIn is the header input extension (default ".h").
	HeaderIn string `json:"header_in" yaml:"header_in"`

	// SourceOut is the implementation output extension (default ".cpp").
	SourceOut string `json:"source_out" yaml:"source_out"`

	// HeaderOut is the header output extension (default ".hpp").
	HeaderOut string `json:"header_out" yaml:"header_out"`
}

// DefaultExtensions returns the C-to-C++ extension mapping.
func DefaultExtensions() Extensions {
	return Extensions{
		SourceIn:  ".c",
		HeaderIn:  ".h",
		SourceOut: ".cpp",
		HeaderOut: ".hpp",
	}
}

// RoleFor returns the role for a filename's extension. The second return
// is false when the extension is not a recognized input extension.
func (e Extensions) RoleFor(name string) (Role, bool) {
	switch filepath.Ext(name) {
	case e.SourceIn:
		return RoleSource, true
	case e.HeaderIn:
		return RoleHeader, true
	default:
		return "", false
	}
}

// In returns the input extension for a role.
func (e Extensions) In(role Role) string {
	if role == RoleHeader {
		return e.HeaderIn
	}
	return e.SourceIn
}

// Out returns the output extension for a role.
func (e Extensions) Out(role Role) string {
	if role == RoleHeader {
		return e.HeaderOut
	}
	return e.SourceOut
}

// DestName returns the output filename for an input filename: the same
// stem with the role-appropriate output extension.
func (e Extensions) DestName(name string, role Role) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return stem + e.Out(role)
}

// Change records one rewrite a rule applied to a file.
type Change struct {
	// Rule is the name of the rule that produced the change.
	Rule string `json:"rule" yaml:"rule"`

	// Line is the 1-based line where the change starts in the input text.
	Line int `json:"line" yaml:"line"`

	// Old is the replaced text fragment.
	Old string `json:"old" yaml:"old"`

	// New is the replacement text fragment.
	New string `json:"new" yaml:"new"`
}

// Record is the outcome of converting a single file.
type Record struct {
	// Source is the input file path.
	Source string `json:"source" yaml:"source"`

	// Dest is the output file path. Empty when the failure happened
	// before a destination was determined.
	Dest string `json:"dest,omitempty" yaml:"dest,omitempty"`

	// Role selects which rule set was applied.
	Role Role `json:"role" yaml:"role"`

	// Changes lists the rewrites applied, in rule order.
	Changes []Change `json:"changes,omitempty" yaml:"changes,omitempty"`

	// Error records a conversion failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the conversion of this file failed.
func (r Record) Failed() bool {
	return r.Error != ""
}

// Changed reports whether any rule rewrote the file.
func (r Record) Changed() bool {
	return len(r.Changes) > 0
}
