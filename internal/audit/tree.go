// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/internal/discover"
	"github.com/pdiddy/cxxport/pkg/types"
)

// Tree audits every emitted file under the output tree on a worker pool
// and writes per-file status plus a summary to w. An unreadable file
// becomes a flawed verdict and the audit continues; only a missing
// output tree or cancellation returns an error.
func Tree(ctx context.Context, cfg types.AuditConfig, reg *classify.Registry, w io.Writer) ([]types.Verdict, error) {
	files, err := discover.Outputs(cfg.OutputDir, cfg.Exts, cfg.Excludes)
	if err != nil {
		return nil, err
	}

	verdicts := make([]types.Verdict, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(cfg.Workers))

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			verdicts[i] = File(f.Path, f.Role, reg, cfg.ProjectConfig)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var clean, flawed int
	for _, v := range verdicts {
		if v.Clean() {
			clean++
			fmt.Fprintf(w, "clean:  %s\n", v.Path)
		} else {
			flawed++
			fmt.Fprintf(w, "flawed: %s (%d issues)\n", v.Path, len(v.Issues))
		}
	}
	fmt.Fprintf(w, "\nAudit summary: %d clean, %d flawed (total: %d)\n", clean, flawed, len(verdicts))

	return verdicts, nil
}

func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU()
}
