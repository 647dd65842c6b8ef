package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cxxport/internal/audit"
	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/internal/report"
	"github.com/pdiddy/cxxport/internal/syntax"
	"github.com/pdiddy/cxxport/pkg/types"
)

var finalCheckCmd = &cobra.Command{
	Use:   "final-check",
	Short: "Run the release-readiness verification",
	Long: `Final-check runs the full structural audit plus the tree-level release
checks: input/output file-count parity per role, literal presence of the
required build-descriptor elements, and existence of the migration
documentation. Everything must pass for the command to exit cleanly.`,
	RunE: runFinalCheck,
}

func init() {
	projectFlags(finalCheckCmd)
	syntaxFlags(finalCheckCmd)
	finalCheckCmd.Flags().StringSlice("elements", nil, "build-descriptor strings that must be present (default: derived from --module)")
	finalCheckCmd.Flags().StringSlice("docs", defaultDocs, "documentation files that must exist")
	finalCheckCmd.Flags().String("docs-dir", ".", "directory holding the documentation files")

	rootCmd.AddCommand(finalCheckCmd)
}

func runFinalCheck(cmd *cobra.Command, args []string) error {
	project, err := projectConfig(cmd)
	if err != nil {
		return err
	}
	cfg := types.CheckConfig{
		AuditConfig: types.AuditConfig{
			ProjectConfig: project,
			Workers:       intSetting(cmd, "workers", "workers"),
			Syntax:        syntaxConfig(cmd),
		},
		BuildElements: sliceSetting(cmd, "elements", "check.build_elements"),
		Docs:          sliceSetting(cmd, "docs", "check.docs"),
	}
	reg := classify.NewRegistry(project.LocalNames)

	started := time.Now()
	verdicts, err := audit.Tree(cmd.Context(), cfg.AuditConfig, reg, os.Stdout)
	if err != nil {
		return err
	}

	treeIssues := audit.Counts(project.SourceDir, project.OutputDir, project.Exts, project.Excludes)

	elements := cfg.BuildElements
	if len(elements) == 0 {
		elements = audit.RequiredElements(project.Module, project.Exts)
	}
	buildPath := filepath.Join(project.OutputDir, project.BuildFile)
	treeIssues = append(treeIssues, audit.BuildFile(buildPath, elements)...)

	docsDir := stringSetting(cmd, "docs-dir", "check.docs_dir")
	treeIssues = append(treeIssues, audit.Docs(docsDir, cfg.Docs)...)

	if cfg.Syntax.Enabled {
		issues, err := syntax.NewChecker(cfg.Syntax).Tree(cmd.Context(), project, os.Stdout)
		if err != nil {
			return err
		}
		treeIssues = append(treeIssues, issues...)
	}

	rep := report.Aggregate(report.ModeFinal, nil, verdicts, treeIssues)
	rep.Print(os.Stdout)
	finishRun(cmd, rep, started)

	if !rep.Passed {
		return fmt.Errorf("final check failed: %d issue(s)", len(rep.Findings))
	}
	return nil
}
