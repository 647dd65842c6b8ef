// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cxxport/internal/history"
	"github.com/pdiddy/cxxport/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded migration runs",
	Long: `Every convert, fix-includes, audit, and final-check invocation records its
outcome in a local ledger. History lists those runs and shows the findings
a given run produced.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the findings recorded for one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().String("history-dir", defaultHistoryDir, "directory holding the run ledger")
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.Open(stringSetting(cmd, "history-dir", "history.dir"))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), intSetting(cmd, "limit", "history.limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Printf("%s  %s  %-12s %s  %d headers, %d sources, %d flawed  (%s)\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Mode, status,
			r.Headers, r.Sources, r.Flawed, r.Duration.Round(time.Millisecond))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := history.Open(stringSetting(cmd, "history-dir", "history.dir"))
	if err != nil {
		return err
	}
	defer store.Close()

	findings, err := store.Issues(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		fmt.Printf("no findings recorded for run %s\n", args[0])
		return nil
	}
	for _, f := range findings {
		if f.Path == "" {
			fmt.Printf("%s: %s\n", f.Issue.Check, f.Issue.Detail)
			continue
		}
		fmt.Printf("%s: [%s] %s\n", f.Path, f.Issue.Check, f.Issue.Detail)
	}
	return nil
}

// finishRun persists the run's artifacts: the ledger row and, when
// requested, the YAML report. Both are advisory. A failure to persist
// warns on stderr and never changes the run's outcome.
func finishRun(cmd *cobra.Command, rep report.Report, started time.Time) {
	if path := stringSetting(cmd, "report", "report"); path != "" {
		if err := rep.WriteYAML(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: writing report: %v\n", err)
		}
	}

	dir := stringSetting(cmd, "history-dir", "history.dir")
	if dir == "" {
		return
	}
	store, err := history.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening run ledger: %v\n", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(cmd.Context(), rep, started, time.Since(started)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording run: %v\n", err)
	}
}
