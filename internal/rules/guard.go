// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"regexp"

	"github.com/pdiddy/cxxport/pkg/types"
)

// guardOpenRe matches the opening of an include guard: an #ifndef line
// immediately followed by a #define line, tokens captured separately. The
// define must end at the token; a #define carrying a value is a macro
// default, not a guard.
var guardOpenRe = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*ifndef[ \t]+(\w+)[ \t]*\r?\n[ \t]*#[ \t]*define[ \t]+(\w+)[ \t]*\r?$`)

// guardRewrite replaces an existing include-guard token pair with the
// canonical token derived from the destination filename. Any naming
// convention in the old guard is tolerated; a header without a guard is
// left alone (the audit reports it instead).
type guardRewrite struct{}

func (guardRewrite) Name() string {
	return "include-guard"
}

func (guardRewrite) Role() types.Role {
	return types.RoleHeader
}

func (guardRewrite) Rewrite(text string, f File) (string, []types.Change) {
	m := guardOpenRe.FindStringSubmatchIndex(text)
	if m == nil {
		return text, nil
	}

	ifndefTok := text[m[2]:m[3]]
	defineTok := text[m[4]:m[5]]
	if ifndefTok != defineTok {
		// Not a guard pair, just adjacent conditionals.
		return text, nil
	}

	canonical := GuardToken(f.DestName)
	if ifndefTok == canonical {
		return text, nil
	}

	out := text[:m[2]] + canonical + text[m[3]:m[4]] + canonical + text[m[5]:]
	out = rewriteGuardClose(out, ifndefTok, canonical)

	return out, []types.Change{{
		Rule: guardRewrite{}.Name(),
		Line: lineAt(text, m[2]),
		Old:  ifndefTok,
		New:  canonical,
	}}
}

// rewriteGuardClose updates #endif comments that name the old guard
// token. Both comment styles are handled; a bare #endif stays bare.
func rewriteGuardClose(text, oldTok, newTok string) string {
	blockRe := regexp.MustCompile(`(?m)^([ \t]*#[ \t]*endif[ \t]*/\*[ \t]*)` + regexp.QuoteMeta(oldTok) + `([ \t]*\*/)`)
	text = blockRe.ReplaceAllString(text, "${1}"+newTok+"${2}")

	lineRe := regexp.MustCompile(`(?m)^([ \t]*#[ \t]*endif[ \t]*//[ \t]*)` + regexp.QuoteMeta(oldTok) + `[ \t]*$`)
	return lineRe.ReplaceAllString(text, "${1}"+newTok)
}
