// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules declares the ordered text-rewrite rules that turn C
// sources and headers into their C++ counterparts. Every rule is a pure
// function of the file's text and name, and every rule is idempotent:
// applying it to its own output changes nothing, so the whole pipeline
// can be re-run over already-converted trees. A rule whose pattern is
// absent is a silent no-op, never an error.
package rules

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/pkg/types"
)

// File carries the per-file facts a rule may consult besides the text.
type File struct {
	// SourcePath is the input path, used in diagnostics only.
	SourcePath string

	// DestName is the output base name the guard token derives from.
	DestName string
}

// Rule rewrites one structural concern in a file's text.
type Rule interface {
	// Name identifies the rule in change records.
	Name() string

	// Role returns the file role the rule applies to.
	Role() types.Role

	// Rewrite returns the transformed text and the changes applied. Text
	// the rule does not apply to comes back unchanged with nil changes.
	Rewrite(text string, f File) (string, []types.Change)
}

// ForRole returns the rule set for a role in its fixed declared order:
// headers get the include-guard rewrite then the linkage envelope,
// sources get the include-extension rewrite then the linkage wrapper.
// The order is fixed so output is reproducible byte for byte.
func ForRole(role types.Role, reg *classify.Registry, cfg types.ProjectConfig) []Rule {
	if role == types.RoleHeader {
		return []Rule{
			guardRewrite{},
			linkageEnvelope{},
		}
	}
	return []Rule{
		newIncludeExtension(reg, cfg.Exts),
		newLinkageWrap(cfg.WrapIncludes),
	}
}

// GuardToken derives the canonical include-guard token from an output
// filename: stem and extension upper-cased, joined by an underscore, with
// non-alphanumeric characters mapped to underscores. "half_vec.hpp"
// yields "HALF_VEC_HPP".
func GuardToken(destName string) string {
	base := filepath.Base(destName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	token := sanitizeToken(stem)
	if ext != "" {
		token += "_" + sanitizeToken(strings.TrimPrefix(ext, "."))
	}
	return token
}

func sanitizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// lineAt returns the 1-based line number of byte offset off in text.
func lineAt(text string, off int) int {
	return 1 + strings.Count(text[:off], "\n")
}
