// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/internal/discover"
	"github.com/pdiddy/cxxport/internal/rules"
	"github.com/pdiddy/cxxport/pkg/types"
)

// FixIncludes reapplies the source rule set to the implementation files
// of an existing output tree, rewriting them in place. It repairs trees
// converted before the local-name registry was complete; reapplication is
// safe because every rule is idempotent. Files the rules do not change
// are not rewritten.
func FixIncludes(ctx context.Context, cfg types.ConvertConfig, reg *classify.Registry, w io.Writer) ([]types.Record, error) {
	files, err := discover.Outputs(cfg.OutputDir, cfg.Exts, cfg.Excludes)
	if err != nil {
		return nil, err
	}

	var impls []types.SourceFile
	for _, f := range files {
		if f.Role == types.RoleSource {
			impls = append(impls, f)
		}
	}

	sourceRules := rules.ForRole(types.RoleSource, reg, cfg.ProjectConfig)

	records := make([]types.Record, len(impls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg.Workers))

	for i, f := range impls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i] = fixFile(f, sourceRules)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fixed, unchanged, failed int
	for _, rec := range records {
		switch {
		case rec.Failed():
			failed++
			fmt.Fprintf(w, "failed:    %s (%s)\n", rec.Source, rec.Error)
		case rec.Changed():
			fixed++
			fmt.Fprintf(w, "fixed:     %s (%d changes)\n", rec.Source, len(rec.Changes))
		default:
			unchanged++
			fmt.Fprintf(w, "unchanged: %s\n", rec.Source)
		}
	}
	fmt.Fprintf(w, "\nFix summary: %d fixed, %d unchanged, %d failed (total: %d)\n",
		fixed, unchanged, failed, len(records))

	return records, nil
}

// fixFile rewrites one emitted implementation file in place. The
// destination base name already carries the output extension, so guard
// derivation context is the file's own name.
func fixFile(f types.SourceFile, ruleSet []rules.Rule) types.Record {
	rec := types.Record{Source: f.Path, Dest: f.Path, Role: f.Role}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		rec.Error = fmt.Sprintf("reading: %v", err)
		return rec
	}

	text, changes := Apply(string(data), rules.File{
		SourcePath: f.Path,
		DestName:   f.Rel,
	}, ruleSet)
	rec.Changes = changes

	if len(changes) == 0 {
		return rec
	}
	if err := writeFileAtomic(f.Path, []byte(text)); err != nil {
		rec.Error = err.Error()
		return rec
	}
	return rec
}
