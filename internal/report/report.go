// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report folds per-file conversion records and audit verdicts
// into one pass/fail report. Aggregation is a pure function of its
// inputs and is the single synchronization point of the pipeline: worker
// pools hand their immutable results here, and nothing else keeps
// counters.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cxxport/pkg/types"
)

// Mode names the pipeline stage a report describes.
type Mode string

const (
	ModeConvert Mode = "convert"
	ModeFix     Mode = "fix-includes"
	ModeAudit   Mode = "audit"
	ModeFinal   Mode = "final-check"
)

// RoleStats counts per-file outcomes for one role.
type RoleStats struct {
	// Total is the number of distinct files seen.
	Total int `json:"total" yaml:"total"`

	// Clean is the number of files with no failure and no issue.
	Clean int `json:"clean" yaml:"clean"`

	// Flawed is the number of files with a conversion failure or at
	// least one audit issue.
	Flawed int `json:"flawed" yaml:"flawed"`
}

// Finding pairs a file with one issue raised against it. Tree-level
// findings carry an empty path.
type Finding struct {
	// Path locates the file the issue belongs to.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Issue is the finding itself.
	Issue types.Issue `json:"issue" yaml:"issue"`
}

// Report is the aggregated outcome of one pipeline run.
type Report struct {
	// Mode is the stage that produced the report.
	Mode Mode `json:"mode" yaml:"mode"`

	// Headers and Sources hold the per-role counts.
	Headers RoleStats `json:"headers" yaml:"headers"`
	Sources RoleStats `json:"sources" yaml:"sources"`

	// Findings is the flattened list of every issue raised.
	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`

	// Passed is true only when every record succeeded, every verdict is
	// clean, and no tree-level issue was raised.
	Passed bool `json:"passed" yaml:"passed"`
}

// Aggregate folds records, verdicts, and tree-level issues into a
// Report. Files appearing both as a record and a verdict are counted
// once; a file is flawed when its conversion failed or any check found
// an issue.
func Aggregate(mode Mode, records []types.Record, verdicts []types.Verdict, treeIssues []types.Issue) Report {
	rep := Report{Mode: mode}

	type state struct {
		role   types.Role
		flawed bool
	}
	files := make(map[string]*state)
	order := make([]string, 0, len(records)+len(verdicts))
	track := func(path string, role types.Role) *state {
		s, ok := files[path]
		if !ok {
			s = &state{role: role}
			files[path] = s
			order = append(order, path)
		}
		return s
	}

	for _, rec := range records {
		path := rec.Dest
		if path == "" {
			path = rec.Source
		}
		s := track(path, rec.Role)
		if rec.Failed() {
			s.flawed = true
			rep.Findings = append(rep.Findings, Finding{
				Path:  rec.Source,
				Issue: types.Issue{Check: "convert", Detail: rec.Error},
			})
		}
	}

	for _, v := range verdicts {
		s := track(v.Path, v.Role)
		for _, is := range v.Issues {
			s.flawed = true
			rep.Findings = append(rep.Findings, Finding{Path: v.Path, Issue: is})
		}
	}

	for _, is := range treeIssues {
		rep.Findings = append(rep.Findings, Finding{Issue: is})
	}

	for _, path := range order {
		s := files[path]
		stats := &rep.Sources
		if s.role == types.RoleHeader {
			stats = &rep.Headers
		}
		stats.Total++
		if s.flawed {
			stats.Flawed++
		} else {
			stats.Clean++
		}
	}

	rep.Passed = len(rep.Findings) == 0
	return rep
}

// Print writes the itemized findings and the summary block to w.
func (r Report) Print(w io.Writer) {
	if len(r.Findings) > 0 {
		fmt.Fprintf(w, "\nIssues:\n")
		for _, f := range r.Findings {
			if f.Path == "" {
				fmt.Fprintf(w, "  %s: %s\n", f.Issue.Check, f.Issue.Detail)
				continue
			}
			fmt.Fprintf(w, "  %s: [%s] %s\n", f.Path, f.Issue.Check, f.Issue.Detail)
		}
	}

	fmt.Fprintf(w, "\n%s report\n", r.Mode)
	fmt.Fprintf(w, "  headers: %d total, %d clean, %d flawed\n", r.Headers.Total, r.Headers.Clean, r.Headers.Flawed)
	fmt.Fprintf(w, "  sources: %d total, %d clean, %d flawed\n", r.Sources.Total, r.Sources.Clean, r.Sources.Flawed)

	verdict := color.GreenString("PASS")
	if !r.Passed {
		verdict = color.RedString("FAIL") + fmt.Sprintf(" (%d issues)", len(r.Findings))
	}
	fmt.Fprintf(w, "  result:  %s\n", verdict)
}

// WriteYAML stores the report as a YAML artifact.
func (r Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
