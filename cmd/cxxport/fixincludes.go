package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cxxport/internal/audit"
	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/internal/report"
	"github.com/pdiddy/cxxport/internal/transform"
	"github.com/pdiddy/cxxport/pkg/types"
)

var fixIncludesCmd = &cobra.Command{
	Use:   "fix-includes",
	Short: "Reapply the include rules to an already-emitted tree",
	Long: `Fix-includes rewrites the implementation files of an existing output tree
in place: project-local includes that still carry the C header extension are
retargeted, and unwrapped aggregation includes get the C-linkage wrapper.
Useful when the local-name registry grew after the initial conversion.

Every rule is idempotent, so re-running the command on a clean tree changes
nothing. The tree is audited afterwards.`,
	RunE: runFixIncludes,
}

func init() {
	projectFlags(fixIncludesCmd)

	rootCmd.AddCommand(fixIncludesCmd)
}

func runFixIncludes(cmd *cobra.Command, args []string) error {
	project, err := projectConfig(cmd)
	if err != nil {
		return err
	}
	cfg := types.ConvertConfig{
		ProjectConfig: project,
		Workers:       intSetting(cmd, "workers", "workers"),
	}
	reg := classify.NewRegistry(project.LocalNames)

	started := time.Now()
	records, err := transform.FixIncludes(cmd.Context(), cfg, reg, os.Stdout)
	if err != nil {
		return err
	}

	acfg := types.AuditConfig{ProjectConfig: project, Workers: cfg.Workers}
	verdicts, err := audit.Tree(cmd.Context(), acfg, reg, os.Stdout)
	if err != nil {
		return err
	}

	rep := report.Aggregate(report.ModeFix, records, verdicts, nil)
	rep.Print(os.Stdout)
	finishRun(cmd, rep, started)

	if !rep.Passed {
		return fmt.Errorf("tree not clean after fixing: %d issue(s)", len(rep.Findings))
	}
	return nil
}
