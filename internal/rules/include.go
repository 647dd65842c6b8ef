// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"path"
	"regexp"
	"strings"

	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/pkg/types"
)

// includeRe matches an include directive at the start of a line and
// captures the opening delimiter, the referenced name, and the closing
// delimiter.
var includeRe = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*include[ \t]*(["<])([^">]+)([">])`)

// Include is one parsed include directive inside a file's text. Includes
// are recomputed each run, never stored.
type Include struct {
	// Name is the referenced name as written, extension included.
	Name string

	// Ext is the extension of the referenced name (".h" in "vector.h").
	Ext string

	// Angled is true for <...> references, false for quoted ones.
	Angled bool

	// Line is the 1-based line of the directive.
	Line int

	// NameStart and NameEnd delimit Name within the scanned text.
	NameStart, NameEnd int
}

// ParseIncludes scans text for include directives. Directives with
// mismatched delimiters (quote opened, angle closed, or the reverse) are
// not includes and are skipped.
func ParseIncludes(text string) []Include {
	var out []Include
	for _, m := range includeRe.FindAllStringSubmatchIndex(text, -1) {
		open := text[m[2]:m[3]]
		closing := text[m[6]:m[7]]
		if (open == `"`) != (closing == `"`) {
			continue
		}
		name := text[m[4]:m[5]]
		out = append(out, Include{
			Name:      name,
			Ext:       path.Ext(name),
			Angled:    open == "<",
			Line:      lineAt(text, m[0]),
			NameStart: m[4],
			NameEnd:   m[5],
		})
	}
	return out
}

// includeExtension rewrites the extension of includes that reference a
// registered local header, preserving the delimiter style. Foreign
// references pass through byte-identical even when they share a base name
// with a local module.
type includeExtension struct {
	reg *classify.Registry
	in  string
	out string
}

func newIncludeExtension(reg *classify.Registry, exts types.Extensions) includeExtension {
	return includeExtension{reg: reg, in: exts.HeaderIn, out: exts.HeaderOut}
}

func (includeExtension) Name() string {
	return "include-extension"
}

func (includeExtension) Role() types.Role {
	return types.RoleSource
}

func (r includeExtension) Rewrite(text string, f File) (string, []types.Change) {
	refs := ParseIncludes(text)
	if len(refs) == 0 {
		return text, nil
	}

	var b strings.Builder
	var changes []types.Change
	last := 0
	for _, ref := range refs {
		if ref.Ext != r.in || !r.reg.Local(classify.Stem(ref.Name)) {
			continue
		}
		newName := strings.TrimSuffix(ref.Name, r.in) + r.out
		if newName == ref.Name {
			continue
		}
		b.WriteString(text[last:ref.NameStart])
		b.WriteString(newName)
		last = ref.NameEnd
		changes = append(changes, types.Change{
			Rule: r.Name(),
			Line: ref.Line,
			Old:  ref.Name,
			New:  newName,
		})
	}
	if len(changes) == 0 {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), changes
}
