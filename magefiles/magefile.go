// Package main contains Mage build targets for cxxport developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir     = "bin"
	binName    = "cxxport"
	cmdPkg     = "./cmd/cxxport"
	configFile = "cxxport.yaml"
)

// configTemplate is the starter configuration Init writes. The values
// mirror the compiled defaults.
const configTemplate = `# cxxport configuration.
module: vector_cpp
source_dir: src
output_dir: src-cpp
local_names:
  - bitutils
  - bitvec
  - halfutils
  - halfvec
  - hnsw
  - ivfflat
  - sparsevec
  - vector
wrap_includes:
  - postgres.h
syntax:
  enabled: false
  compiler: g++
  std: c++17
  include_dirs:
    - /usr/include/postgresql
history:
  dir: .cxxport
`

// Init scaffolds a migration workspace: the run-ledger directory plus a
// starter configuration file when none exists.
func Init() error {
	if err := os.MkdirAll(".cxxport", 0o755); err != nil {
		return fmt.Errorf("creating .cxxport: %w", err)
	}
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("%s already exists, leaving it alone.\n", configFile)
		return nil
	}
	if err := os.WriteFile(configFile, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	fmt.Printf("Wrote starter %s.\n", configFile)
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Smoke builds the binary and converts a throwaway C tree with it.
func Smoke() error {
	mg.Deps(Build)

	work, err := os.MkdirTemp("", "cxxport-smoke")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	src := filepath.Join(work, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		return err
	}
	header := "#ifndef DEMO_H\n#define DEMO_H\n\nint demo_add(int a, int b);\n\n#endif\n"
	source := "#include \"demo.h\"\n\nint demo_add(int a, int b) { return a + b; }\n"
	if err := os.WriteFile(filepath.Join(src, "demo.h"), []byte(header), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(src, "demo.c"), []byte(source), 0o644); err != nil {
		return err
	}

	return sh.RunV(filepath.Join(binDir, binName), "convert",
		"--source-dir", src,
		"--output-dir", filepath.Join(work, "src-cpp"),
		"--names", "demo",
		"--module", "demo_cpp",
		"--history-dir", "")
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skippable reports whether a directory sits outside the module proper.
// Mirrors the go tool's rule of ignoring hidden and underscore-prefixed
// directories.
func skippable(root, path string, info os.FileInfo) bool {
	if !info.IsDir() || path == root {
		return false
	}
	name := info.Name()
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if skippable(root, path, info) {
			return filepath.SkipDir
		}
		if info.IsDir() {
			return nil
		}
		isTest := strings.HasSuffix(path, "_test.go")
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if testOnly != isTest {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range splitLines(data) {
			if len(line) > 0 {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords walks the tree and counts words in .md and .yaml files.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if skippable(root, path, info) {
			return filepath.SkipDir
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += countWords(data)
		return nil
	})
	return total, err
}

// splitLines splits data by newline, returning each line as a trimmed string.
func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, trimSpace(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, trimSpace(data[start:]))
	}
	return lines
}

// trimSpace returns a string with leading and trailing whitespace removed.
func trimSpace(b []byte) string {
	start, end := 0, len(b)
	for start < end && (b[start] == ' ' || b[start] == '\t' || b[start] == '\r') {
		start++
	}
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t' || b[end-1] == '\r') {
		end--
	}
	return string(b[start:end])
}

// countWords counts whitespace-separated tokens in data.
func countWords(data []byte) int {
	count := 0
	inWord := false
	for _, b := range data {
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}
