package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cxxport/internal/audit"
	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/internal/report"
	"github.com/pdiddy/cxxport/internal/syntax"
	"github.com/pdiddy/cxxport/pkg/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit an emitted tree against the structural invariants",
	Long: `Audit inspects every emitted file with no knowledge of any previous run:
guard tokens, linkage envelopes, include extensions, and aggregation
wrappers are re-derived from the files and the registry alone, so a
conversion bug cannot hide itself from the check.

With --syntax a C++ compiler front end additionally parses a sample of the
implementation files. The command fails if any file is flawed.`,
	RunE: runAudit,
}

func init() {
	projectFlags(auditCmd)
	syntaxFlags(auditCmd)

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	project, err := projectConfig(cmd)
	if err != nil {
		return err
	}
	cfg := types.AuditConfig{
		ProjectConfig: project,
		Workers:       intSetting(cmd, "workers", "workers"),
		Syntax:        syntaxConfig(cmd),
	}
	reg := classify.NewRegistry(project.LocalNames)

	started := time.Now()
	verdicts, err := audit.Tree(cmd.Context(), cfg, reg, os.Stdout)
	if err != nil {
		return err
	}

	var treeIssues []types.Issue
	if cfg.Syntax.Enabled {
		issues, err := syntax.NewChecker(cfg.Syntax).Tree(cmd.Context(), project, os.Stdout)
		if err != nil {
			return err
		}
		treeIssues = append(treeIssues, issues...)
	}

	rep := report.Aggregate(report.ModeAudit, nil, verdicts, treeIssues)
	rep.Print(os.Stdout)
	finishRun(cmd, rep, started)

	if !rep.Passed {
		return fmt.Errorf("audit failed: %d issue(s)", len(rep.Findings))
	}
	return nil
}
