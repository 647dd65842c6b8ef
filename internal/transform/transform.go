// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform converts a C tree into its C++ counterpart. Each file
// is converted independently: the emitted tree is a pure function of the
// input tree and the rule set, with no cross-file coupling, so per-file
// work runs on a bounded worker pool and one failed file never aborts the
// rest of the run.
package transform

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/cxxport/internal/buildfile"
	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/internal/discover"
	"github.com/pdiddy/cxxport/internal/rules"
	"github.com/pdiddy/cxxport/pkg/types"
)

// Apply runs the rule set over text in its declared order, collecting
// the changes every rule made.
func Apply(text string, f rules.File, ruleSet []rules.Rule) (string, []types.Change) {
	var changes []types.Change
	for _, r := range ruleSet {
		var cs []types.Change
		text, cs = r.Rewrite(text, f)
		changes = append(changes, cs...)
	}
	return text, changes
}

// Convert applies the role's rule set to one input file and writes the
// result under destDir, mirroring the file's tree-relative path with the
// role-appropriate output extension. The source tree is never mutated.
// Failures are recorded on the returned Record, not returned as errors.
func Convert(f types.SourceFile, ruleSet []rules.Rule, destDir string, exts types.Extensions) types.Record {
	destRel := exts.DestName(f.Rel, f.Role)
	rec := types.Record{
		Source: f.Path,
		Dest:   filepath.Join(destDir, destRel),
		Role:   f.Role,
	}

	content := f.Content
	if content == nil {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			rec.Error = fmt.Sprintf("reading: %v", err)
			return rec
		}
		content = data
	}

	text, changes := Apply(string(content), rules.File{
		SourcePath: f.Path,
		DestName:   filepath.Base(destRel),
	}, ruleSet)
	rec.Changes = changes

	if err := os.MkdirAll(filepath.Dir(rec.Dest), 0o755); err != nil {
		rec.Error = fmt.Sprintf("creating output directory: %v", err)
		return rec
	}
	if err := writeFileAtomic(rec.Dest, []byte(text)); err != nil {
		rec.Error = err.Error()
		return rec
	}
	return rec
}

// ConvertTree discovers the input tree, converts every file on a worker
// pool, and writes per-file status plus a summary to w. Per-file
// failures are folded into the records; only whole-tree preconditions (a
// missing source directory) or cancellation return an error.
func ConvertTree(ctx context.Context, cfg types.ConvertConfig, reg *classify.Registry, w io.Writer) ([]types.Record, error) {
	files, err := discover.Inputs(cfg.SourceDir, cfg.Exts, cfg.Excludes)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	headerRules := rules.ForRole(types.RoleHeader, reg, cfg.ProjectConfig)
	sourceRules := rules.ForRole(types.RoleSource, reg, cfg.ProjectConfig)

	records := make([]types.Record, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg.Workers))

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ruleSet := sourceRules
			if f.Role == types.RoleHeader {
				ruleSet = headerRules
			}
			records[i] = Convert(f, ruleSet, cfg.OutputDir, cfg.Exts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var converted, copied, failed int
	for _, rec := range records {
		switch {
		case rec.Failed():
			failed++
			fmt.Fprintf(w, "failed:    %s (%s)\n", rec.Source, rec.Error)
		case rec.Changed():
			converted++
			fmt.Fprintf(w, "converted: %s -> %s (%d changes)\n", rec.Source, rec.Dest, len(rec.Changes))
		default:
			copied++
			fmt.Fprintf(w, "copied:    %s -> %s\n", rec.Source, rec.Dest)
		}
	}
	fmt.Fprintf(w, "\nConversion summary: %d converted, %d copied, %d failed (total: %d)\n",
		converted, copied, failed, len(records))

	if cfg.WriteBuildFile {
		path := filepath.Join(cfg.OutputDir, buildFileName(cfg.ProjectConfig))
		created, err := buildfile.Write(path, cfg.Module, cfg.Exts)
		if err != nil {
			return records, err
		}
		if created {
			fmt.Fprintf(w, "generated: %s\n", path)
		}
	}

	return records, nil
}

// buildFileName returns the configured build descriptor name, defaulting
// to Makefile.
func buildFileName(cfg types.ProjectConfig) string {
	if cfg.BuildFile != "" {
		return cfg.BuildFile
	}
	return "Makefile"
}

func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU()
}

// writeFileAtomic writes data to a temporary file in the destination
// directory and renames it into place, so a crash never leaves a
// half-written output file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cxxport-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing output: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
