// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"regexp"
	"strings"

	"github.com/pdiddy/cxxport/pkg/types"
)

// Lines of the C-linkage compatibility blocks. The opening declares C
// linkage only under a C++ compiler; the closing restores the default.
const (
	cppIfdef   = "#ifdef __cplusplus"
	externOpen = `extern "C" {`
	cppEndif   = "#endif"
	braceClose = "}"
)

// includeLineRe matches a line that consists of a single include
// directive, capturing the referenced name.
var includeLineRe = regexp.MustCompile(`^[ \t]*#[ \t]*include[ \t]*(["<])([^">]+)([">])[ \t]*$`)

// linkageWrap surrounds the include of each configured name (the
// C-runtime aggregation header by default) with a C-linkage block. Only
// the configured includes are wrapped; an include already inside a block
// is left alone.
type linkageWrap struct {
	names []string
}

func newLinkageWrap(names []string) linkageWrap {
	return linkageWrap{names: names}
}

func (linkageWrap) Name() string {
	return "linkage-wrap"
}

func (linkageWrap) Role() types.Role {
	return types.RoleSource
}

func (r linkageWrap) Rewrite(text string, f File) (string, []types.Change) {
	if len(r.names) == 0 {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	var changes []types.Change

	// Walk bottom-up so indices before the splice point stay valid.
	for i := len(lines) - 1; i >= 0; i-- {
		if !r.wrapTarget(lines[i]) || wrappedAbove(lines, i) {
			continue
		}
		orig := lines[i]
		block := []string{cppIfdef, externOpen, cppEndif, "", orig, "", cppIfdef, braceClose, cppEndif}

		rest := make([]string, len(lines[i+1:]))
		copy(rest, lines[i+1:])
		lines = append(lines[:i], append(block, rest...)...)

		changes = append(changes, types.Change{
			Rule: r.Name(),
			Line: i + 1,
			Old:  orig,
			New:  strings.Join(block, "\n"),
		})
	}
	if len(changes) == 0 {
		return text, nil
	}

	// The walk recorded changes in reverse file order.
	for a, b := 0, len(changes)-1; a < b; a, b = a+1, b-1 {
		changes[a], changes[b] = changes[b], changes[a]
	}
	return strings.Join(lines, "\n"), changes
}

// wrapTarget reports whether the line is an include of a configured name.
func (r linkageWrap) wrapTarget(line string) bool {
	m := includeLineRe.FindStringSubmatch(line)
	if m == nil || (m[1] == `"`) != (m[3] == `"`) {
		return false
	}
	for _, n := range r.names {
		if m[2] == n {
			return true
		}
	}
	return false
}

// wrappedAbove reports whether lines[i] is directly preceded, ignoring
// blank lines, by the opening of a C-linkage block.
func wrappedAbove(lines []string, i int) bool {
	j := i - 1
	for _, want := range []string{cppEndif, externOpen, cppIfdef} {
		for j >= 0 && strings.TrimSpace(lines[j]) == "" {
			j--
		}
		if j < 0 || strings.TrimSpace(lines[j]) != want {
			return false
		}
		j--
	}
	return true
}

// linkageEnvelope wraps the entire header body in a C-linkage block so
// the emitted header stays usable from unmodified C translation units. A
// body already carrying the envelope is left alone.
type linkageEnvelope struct{}

func (linkageEnvelope) Name() string {
	return "linkage-envelope"
}

func (linkageEnvelope) Role() types.Role {
	return types.RoleHeader
}

func (linkageEnvelope) Rewrite(text string, f File) (string, []types.Change) {
	if hasEnvelope(text) {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text) + 80)
	b.WriteString(cppIfdef + "\n" + externOpen + "\n" + cppEndif + "\n\n")
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("\n" + cppIfdef + "\n" + braceClose + "\n" + cppEndif + "\n")

	return b.String(), []types.Change{{
		Rule: linkageEnvelope{}.Name(),
		Line: 1,
		New:  cppIfdef + "\n" + externOpen + "\n" + cppEndif,
	}}
}

// hasEnvelope reports whether the first three and last three non-blank
// lines form the C-linkage envelope.
func hasEnvelope(text string) bool {
	lines := nonBlankLines(text)
	if len(lines) < 6 {
		return false
	}
	n := len(lines)
	return lines[0] == cppIfdef && lines[1] == externOpen && lines[2] == cppEndif &&
		lines[n-3] == cppIfdef && lines[n-2] == braceClose && lines[n-1] == cppEndif
}

// nonBlankLines returns the trimmed, non-blank lines of text.
func nonBlankLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}
