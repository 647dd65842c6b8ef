// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit verifies the structural invariants of an emitted C++
// tree. It re-derives every expected value (guard tokens, include
// classifications, wrapper shapes) through its own code paths instead of
// importing the rewrite rules, so a transformer bug cannot vouch for its
// own output. The local-name registry is the one shared component, and
// classifications are recomputed from it on every audit, never cached
// from a conversion run.
package audit

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/pkg/types"
)

// Check names as they appear on reported issues.
const (
	CheckEnvelope  = "cpp-envelope"
	CheckGuard     = "include-guard"
	CheckPlacement = "guard-placement"
	CheckInclude   = "local-include"
	CheckWrap      = "aggregate-wrap"
	CheckReadable  = "unreadable"
	CheckBuildFile = "build-file"
	CheckDocs      = "docs"
	CheckCounts    = "counts"
)

var (
	nonTokenRe = regexp.MustCompile(`[^A-Z0-9]`)
	ifndefRe   = regexp.MustCompile(`^#\s*ifndef\s+(\w+)\s*$`)
	defineRe   = regexp.MustCompile(`^#\s*define\s+(\w+)\s*$`)
	endifRe    = regexp.MustCompile(`^#\s*endif\b`)
	includeRe  = regexp.MustCompile(`^#\s*include\s*(?:"([^"]+)"|<([^>]+)>)`)
)

// File audits one emitted file against the checks for its role and
// returns the verdict. Expected values are derived from the filename and
// the registry at call time. An unreadable file yields a verdict with a
// single unreadable issue rather than an error.
func File(p string, role types.Role, reg *classify.Registry, cfg types.ProjectConfig) types.Verdict {
	v := types.Verdict{Path: p, Role: role}

	data, err := os.ReadFile(p)
	if err != nil {
		v.Issues = []types.Issue{{Check: CheckReadable, Detail: err.Error()}}
		return v
	}

	if role == types.RoleHeader {
		v.Issues = headerIssues(string(data), filepath.Base(p))
	} else {
		v.Issues = sourceIssues(string(data), reg, cfg)
	}
	return v
}

// headerIssues evaluates the header checks: the conditional C-linkage
// envelope, the canonical include guard, and the guard's placement as
// the first and last material content of the body.
func headerIssues(text, name string) []types.Issue {
	var issues []types.Issue

	lines := materialLines(text)
	enveloped := hasEnvelope(lines)
	if !enveloped {
		issues = append(issues, types.Issue{
			Check:  CheckEnvelope,
			Detail: `conditional extern "C" envelope missing`,
		})
	}

	want := guardToken(name)
	got, open := findGuard(lines)
	switch {
	case !open:
		issues = append(issues, types.Issue{
			Check:  CheckGuard,
			Detail: "include guard missing",
		})
	case got != want:
		issues = append(issues, types.Issue{
			Check:  CheckGuard,
			Detail: fmt.Sprintf("guard token %s, want %s", got, want),
		})
	}

	if open {
		body := lines
		if enveloped {
			body = lines[3 : len(lines)-3]
		}
		issues = append(issues, placementIssues(body, got)...)
	}
	return issues
}

// placementIssues checks that the guard opens before any code in the
// body and that an #endif is the body's final line. Comment lines ahead
// of the guard are tolerated.
func placementIssues(body []string, token string) []types.Issue {
	var issues []types.Issue

	opening := "#ifndef " + token
	first, ok := firstCode(body)
	if !ok || normalizeDirective(first) != opening {
		issues = append(issues, types.Issue{
			Check:  CheckPlacement,
			Detail: "guard does not open the header body",
		})
	}

	last, ok := lastCode(body)
	if !ok || !endifRe.MatchString(last) {
		issues = append(issues, types.Issue{
			Check:  CheckPlacement,
			Detail: "guard does not close the header body",
		})
	}
	return issues
}

// sourceIssues evaluates the implementation-file checks: no registered
// local include may still carry the C header extension, and every
// configured aggregation include must sit inside a C-linkage wrapper.
// Wrapper presence is only required where the include exists.
func sourceIssues(text string, reg *classify.Registry, cfg types.ProjectConfig) []types.Issue {
	var issues []types.Issue

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		name, ok := includeName(raw)
		if !ok {
			continue
		}

		if path.Ext(name) == cfg.Exts.HeaderIn && reg.Local(classify.Stem(name)) {
			issues = append(issues, types.Issue{
				Check:  CheckInclude,
				Detail: fmt.Sprintf("line %d: %s still has the %s extension", i+1, name, cfg.Exts.HeaderIn),
			})
		}

		for _, wrap := range cfg.WrapIncludes {
			if name == wrap && !wrapped(lines, i) {
				issues = append(issues, types.Issue{
					Check:  CheckWrap,
					Detail: fmt.Sprintf("line %d: %s include lacks the C-linkage wrapper", i+1, name),
				})
			}
		}
	}
	return issues
}

// wrapped reports whether lines[i] sits inside a C-linkage wrapper: the
// nearest material lines above and below must form the opening and
// closing halves of the block.
func wrapped(lines []string, i int) bool {
	above := neighbors(lines, i, -1, 3)
	below := neighbors(lines, i, +1, 3)
	return len(above) == 3 &&
		above[0] == "#endif" && above[1] == `extern "C" {` && above[2] == "#ifdef __cplusplus" &&
		len(below) == 3 &&
		below[0] == "#ifdef __cplusplus" && below[1] == "}" && below[2] == "#endif"
}

// neighbors returns up to n trimmed non-blank lines adjacent to index i,
// walking in direction step, nearest first.
func neighbors(lines []string, i, step, n int) []string {
	var out []string
	for j := i + step; j >= 0 && j < len(lines) && len(out) < n; j += step {
		t := strings.TrimSpace(lines[j])
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// guardToken derives the canonical guard token from a filename: the
// upper-cased base name with every non-alphanumeric character mapped to
// an underscore. "half_vec.hpp" yields "HALF_VEC_HPP".
func guardToken(name string) string {
	base := path.Base(filepath.ToSlash(name))
	return nonTokenRe.ReplaceAllString(strings.ToUpper(base), "_")
}

// findGuard returns the token of the first #ifndef/#define pair whose
// tokens agree, scanning material lines. Adjacent conditionals with
// differing tokens are not a guard.
func findGuard(lines []string) (string, bool) {
	for i, l := range lines[:max(len(lines)-1, 0)] {
		m := ifndefRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		d := defineRe.FindStringSubmatch(lines[i+1])
		if d != nil && d[1] == m[1] {
			return m[1], true
		}
	}
	return "", false
}

// hasEnvelope reports whether the material lines open and close with the
// conditional C-linkage envelope.
func hasEnvelope(lines []string) bool {
	if len(lines) < 6 {
		return false
	}
	n := len(lines)
	return lines[0] == "#ifdef __cplusplus" && lines[1] == `extern "C" {` && lines[2] == "#endif" &&
		lines[n-3] == "#ifdef __cplusplus" && lines[n-2] == "}" && lines[n-1] == "#endif"
}

// materialLines returns the trimmed non-blank lines of text.
func materialLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// firstCode returns the first body line that is not a comment.
func firstCode(body []string) (string, bool) {
	for _, l := range body {
		if !isComment(l) {
			return l, true
		}
	}
	return "", false
}

// lastCode returns the last body line that is not a comment.
func lastCode(body []string) (string, bool) {
	for i := len(body) - 1; i >= 0; i-- {
		if !isComment(body[i]) {
			return body[i], true
		}
	}
	return "", false
}

// isComment reports whether a trimmed line is part of a comment. Block
// comment continuation lines conventionally start with an asterisk.
func isComment(l string) bool {
	return strings.HasPrefix(l, "//") || strings.HasPrefix(l, "/*") ||
		strings.HasPrefix(l, "*")
}

// includeName extracts the referenced name from an include directive
// line, either delimiter style.
func includeName(raw string) (string, bool) {
	m := includeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

// normalizeDirective collapses the whitespace inside a preprocessor
// directive so "#  ifndef  X" compares equal to "#ifndef X".
func normalizeDirective(l string) string {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(l), "#"))
	if len(fields) == 0 {
		return ""
	}
	return "#" + strings.Join(fields, " ")
}
