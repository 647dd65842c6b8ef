// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Issue is a single audit finding: one named check that a file failed.
type Issue struct {
	// Check names the structural check that failed (e.g. "include-guard").
	Check string `json:"check" yaml:"check"`

	// Detail describes the finding in human-readable form.
	Detail string `json:"detail" yaml:"detail"`
}

// Verdict is the audit outcome for a single emitted file. Verdicts are
// derived fresh from on-disk content every run and never cached.
type Verdict struct {
	// Path is the audited file path.
	Path string `json:"path" yaml:"path"`

	// Role selects which checks were applied.
	Role Role `json:"role" yaml:"role"`

	// Issues lists the findings. Empty means the file passed every check.
	Issues []Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Clean reports whether the file passed every applicable check.
func (v Verdict) Clean() bool {
	return len(v.Issues) == 0
}
