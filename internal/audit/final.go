// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/cxxport/internal/discover"
	"github.com/pdiddy/cxxport/pkg/types"
)

// RequiredElements returns the declarations the final check expects in
// the build descriptor when none are configured: the module target, the
// C++ flags variable, the build rule for the output source extension,
// the compiler locator, and the platform build-extension include.
func RequiredElements(module string, exts types.Extensions) []string {
	return []string{
		"MODULE_big = " + module,
		"PG_CXXFLAGS",
		exts.SourceOut + ".o:",
		"PG_CONFIG",
		"include $(PGXS)",
	}
}

// BuildFile checks that the build descriptor exists and literally
// contains every required element. Values are not interpreted.
func BuildFile(path string, elements []string) []types.Issue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []types.Issue{{
			Check:  CheckBuildFile,
			Detail: fmt.Sprintf("reading %s: %v", path, err),
		}}
	}

	content := string(data)
	var issues []types.Issue
	for _, el := range elements {
		if !strings.Contains(content, el) {
			issues = append(issues, types.Issue{
				Check:  CheckBuildFile,
				Detail: fmt.Sprintf("%s: missing element %q", path, el),
			})
		}
	}
	return issues
}

// Docs checks that each named documentation file exists under root.
// Existence only; content is not read.
func Docs(root string, names []string) []types.Issue {
	var issues []types.Issue
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			issues = append(issues, types.Issue{
				Check:  CheckDocs,
				Detail: "missing document: " + name,
			})
		}
	}
	return issues
}

// Counts compares per-role file counts between the input and output
// trees. Every input file must have exactly one emitted counterpart, so
// a count mismatch means the conversion dropped or duplicated files.
func Counts(srcDir, outDir string, exts types.Extensions, excludes []string) []types.Issue {
	inputs, err := discover.Inputs(srcDir, exts, excludes)
	if err != nil {
		return []types.Issue{{Check: CheckCounts, Detail: err.Error()}}
	}
	outputs, err := discover.Outputs(outDir, exts, excludes)
	if err != nil {
		return []types.Issue{{Check: CheckCounts, Detail: err.Error()}}
	}

	var issues []types.Issue
	for _, role := range []types.Role{types.RoleSource, types.RoleHeader} {
		in, out := countRole(inputs, role), countRole(outputs, role)
		if in != out {
			issues = append(issues, types.Issue{
				Check:  CheckCounts,
				Detail: fmt.Sprintf("%s count mismatch: %d inputs, %d outputs", role, in, out),
			})
		}
	}
	return issues
}

func countRole(files []types.SourceFile, role types.Role) int {
	n := 0
	for _, f := range files {
		if f.Role == role {
			n++
		}
	}
	return n
}
