// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package syntax runs a C++ compiler front end over emitted files as an
// optional audit deepening. It is the only stage whose cost is not
// bounded by text size, so every compiler invocation runs under a
// timeout. A missing compiler downgrades the whole pass to a warning;
// structural checks never depend on a toolchain being installed.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/pdiddy/cxxport/internal/discover"
	"github.com/pdiddy/cxxport/pkg/types"
)

// CheckName is the check recorded on issues this pass produces.
const CheckName = "syntax"

const (
	defaultCompiler = "g++"
	defaultStd      = "c++17"
	defaultTimeout  = 30 * time.Second
)

// executor abstracts compiler lookup and invocation for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Checker invokes the configured compiler in syntax-only mode.
type Checker struct {
	cfg  types.SyntaxConfig
	exec executor
}

// NewChecker returns a Checker for the given configuration, filling in
// the compiler, standard, and timeout defaults.
func NewChecker(cfg types.SyntaxConfig) *Checker {
	return newChecker(cfg, osExecutor{})
}

func newChecker(cfg types.SyntaxConfig, exec executor) *Checker {
	if cfg.Compiler == "" {
		cfg.Compiler = defaultCompiler
	}
	if cfg.Std == "" {
		cfg.Std = defaultStd
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Checker{cfg: cfg, exec: exec}
}

// File syntax-checks a single file. A nil return means the front end
// accepted it; otherwise the error carries the compiler's output or the
// timeout.
func (c *Checker) File(ctx context.Context, path string) error {
	args := make([]string, 0, len(c.cfg.IncludeDirs)+3)
	args = append(args, "-std="+c.cfg.Std, "-fsyntax-only")
	for _, dir := range c.cfg.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, path)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	out, err := c.exec.Run(ctx, c.cfg.Compiler, args...)
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s", c.cfg.Timeout)
	}
	if msg := strings.TrimSpace(string(out)); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return err
}

// Tree syntax-checks the implementation files of the output tree, up to
// the configured sample size (0 checks all), and writes per-file status
// to w. A compiler missing from PATH downgrades the pass to a warning
// with no issues; compiler rejections become issues, never errors.
func (c *Checker) Tree(ctx context.Context, project types.ProjectConfig, w io.Writer) ([]types.Issue, error) {
	if _, err := c.exec.LookPath(c.cfg.Compiler); err != nil {
		fmt.Fprintf(w, "warning: compiler %s not found, syntax check skipped\n", c.cfg.Compiler)
		return nil, nil
	}

	files, err := discover.Outputs(project.OutputDir, project.Exts, project.Excludes)
	if err != nil {
		return nil, err
	}

	var impls []types.SourceFile
	for _, f := range files {
		if f.Role == types.RoleSource {
			impls = append(impls, f)
		}
	}
	total := len(impls)
	if c.cfg.Sample > 0 && len(impls) > c.cfg.Sample {
		impls = impls[:c.cfg.Sample]
	}

	var issues []types.Issue
	for _, f := range impls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.File(ctx, f.Path); err != nil {
			issues = append(issues, types.Issue{
				Check:  CheckName,
				Detail: fmt.Sprintf("%s: %v", f.Rel, err),
			})
			fmt.Fprintf(w, "fails:   %s\n", f.Path)
		} else {
			fmt.Fprintf(w, "ok:      %s\n", f.Path)
		}
	}
	fmt.Fprintf(w, "\nSyntax summary: %d ok, %d failed (checked %d of %d)\n",
		len(impls)-len(issues), len(issues), len(impls), total)

	return issues, nil
}
