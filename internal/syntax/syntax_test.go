// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syntax

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/cxxport/pkg/types"
)

// mockExecutor records invocations and returns configured responses.
type mockExecutor struct {
	compilerOnPath bool
	failures       map[string]string // file path -> compiler output
	runFunc        func(ctx context.Context) ([]byte, error)
	calls          [][]string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.compilerOnPath {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.runFunc != nil {
		return m.runFunc(ctx)
	}
	file := args[len(args)-1]
	if out, ok := m.failures[file]; ok {
		return []byte(out), errors.New("exit status 1")
	}
	return nil, nil
}

func writeTree(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func testProject(outDir string) types.ProjectConfig {
	return types.ProjectConfig{OutputDir: outDir, Exts: types.DefaultExtensions()}
}

func TestFileInvocation(t *testing.T) {
	exec := &mockExecutor{compilerOnPath: true}
	c := newChecker(types.SyntaxConfig{
		Compiler:    "g++",
		Std:         "c++17",
		IncludeDirs: []string{"/usr/include/postgresql"},
	}, exec)

	if err := c.File(context.Background(), "out/vector.cpp"); err != nil {
		t.Fatalf("File() error = %v", err)
	}
	want := []string{"g++", "-std=c++17", "-fsyntax-only", "-I/usr/include/postgresql", "out/vector.cpp"}
	if len(exec.calls) != 1 || !equalStrings(exec.calls[0], want) {
		t.Errorf("invocation = %v, want %v", exec.calls, want)
	}
}

func TestFileCompilerOutputInError(t *testing.T) {
	exec := &mockExecutor{
		compilerOnPath: true,
		failures:       map[string]string{"out/vector.cpp": "vector.cpp:3: error: expected ';'"},
	}
	c := newChecker(types.SyntaxConfig{}, exec)

	err := c.File(context.Background(), "out/vector.cpp")
	if err == nil {
		t.Fatal("File() error = nil, want compiler rejection")
	}
	if !strings.Contains(err.Error(), "expected ';'") {
		t.Errorf("error does not carry compiler output: %v", err)
	}
}

func TestFileTimeout(t *testing.T) {
	exec := &mockExecutor{
		compilerOnPath: true,
		runFunc: func(ctx context.Context) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c := newChecker(types.SyntaxConfig{Timeout: time.Millisecond}, exec)

	err := c.File(context.Background(), "out/vector.cpp")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("File() error = %v, want timeout", err)
	}
}

func TestTreeSample(t *testing.T) {
	outDir := t.TempDir()
	writeTree(t, outDir, "a.cpp", "b.cpp", "c.cpp", "d.cpp", "e.cpp", "a.hpp")

	exec := &mockExecutor{compilerOnPath: true}
	c := newChecker(types.SyntaxConfig{Sample: 3}, exec)

	var buf bytes.Buffer
	issues, err := c.Tree(context.Background(), testProject(outDir), &buf)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %+v, want none", issues)
	}
	if len(exec.calls) != 3 {
		t.Errorf("compiler invocations = %d, want 3 (sampled)", len(exec.calls))
	}
	if !strings.Contains(buf.String(), "Syntax summary: 3 ok, 0 failed (checked 3 of 5)") {
		t.Errorf("missing or wrong summary:\n%s", buf.String())
	}
}

func TestTreeRecordsFailures(t *testing.T) {
	outDir := t.TempDir()
	writeTree(t, outDir, "good.cpp", "bad.cpp")

	exec := &mockExecutor{
		compilerOnPath: true,
		failures:       map[string]string{filepath.Join(outDir, "bad.cpp"): "bad.cpp:1: error"},
	}
	c := newChecker(types.SyntaxConfig{}, exec)

	var buf bytes.Buffer
	issues, err := c.Tree(context.Background(), testProject(outDir), &buf)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Check != CheckName || !strings.Contains(issues[0].Detail, "bad.cpp") {
		t.Errorf("unexpected issue: %+v", issues[0])
	}
	if !strings.Contains(buf.String(), "fails:") || !strings.Contains(buf.String(), "ok:") {
		t.Errorf("missing status lines:\n%s", buf.String())
	}
}

func TestTreeCompilerMissing(t *testing.T) {
	outDir := t.TempDir()
	writeTree(t, outDir, "a.cpp")

	exec := &mockExecutor{compilerOnPath: false}
	c := newChecker(types.SyntaxConfig{}, exec)

	var buf bytes.Buffer
	issues, err := c.Tree(context.Background(), testProject(outDir), &buf)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	if issues != nil {
		t.Errorf("issues = %+v, want none", issues)
	}
	if len(exec.calls) != 0 {
		t.Errorf("compiler invoked %d times despite missing binary", len(exec.calls))
	}
	if !strings.Contains(buf.String(), "skipped") {
		t.Errorf("missing skip warning:\n%s", buf.String())
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
