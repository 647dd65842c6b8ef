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

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the C tree into its C++ counterpart",
	Long: `Convert discovers every implementation and header file under the source
directory, applies the rewrite rules for the file's role, and writes the
result to the output directory under the C++ extensions. Headers get a
canonical include guard and a conditional extern "C" envelope; sources get
project-local includes retargeted and the aggregation header wrapped.

The source tree is never modified. After conversion the emitted tree is
audited, and the command fails if any file is flawed.`,
	RunE: runConvert,
}

func init() {
	projectFlags(convertCmd)
	convertCmd.Flags().Bool("write-build-file", true, "generate the build descriptor in the output tree when absent")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	project, err := projectConfig(cmd)
	if err != nil {
		return err
	}
	cfg := types.ConvertConfig{
		ProjectConfig:  project,
		Workers:        intSetting(cmd, "workers", "workers"),
		WriteBuildFile: boolSetting(cmd, "write-build-file", "convert.write_build_file"),
	}
	reg := classify.NewRegistry(project.LocalNames)

	started := time.Now()
	records, err := transform.ConvertTree(cmd.Context(), cfg, reg, os.Stdout)
	if err != nil {
		return err
	}

	// Post-conversion self-check over the emitted tree.
	acfg := types.AuditConfig{ProjectConfig: project, Workers: cfg.Workers}
	verdicts, err := audit.Tree(cmd.Context(), acfg, reg, os.Stdout)
	if err != nil {
		return err
	}

	rep := report.Aggregate(report.ModeConvert, records, verdicts, nil)
	rep.Print(os.Stdout)
	finishRun(cmd, rep, started)

	if !rep.Passed {
		return fmt.Errorf("conversion not clean: %d issue(s)", len(rep.Findings))
	}
	return nil
}
