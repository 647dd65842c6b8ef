// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package buildfile generates the build descriptor for the emitted C++
// tree and declares the literal elements a release-ready descriptor must
// contain. The descriptor follows the PostgreSQL PGXS layout: a module
// target, C++ compiler flags, an explicit build rule for the C++ source
// extension, a compiler locator, and the platform build-extension
// include.
package buildfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/cxxport/pkg/types"
)

// Elements returns the literal strings a build descriptor must contain
// for the given module. The final check tests presence only, never
// values.
func Elements(module string, exts types.Extensions) []string {
	return []string{
		"MODULE_big = " + module,
		"PG_CXXFLAGS",
		exts.SourceOut + ".o:",
		"PG_CONFIG",
		"include $(PGXS)",
	}
}

// Write generates the build descriptor at path unless one already exists.
// It reports whether a file was created; an existing descriptor is left
// untouched so hand edits survive re-runs.
func Write(path, module string, exts types.Extensions) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(render(module, exts)), 0o644); err != nil {
		return false, fmt.Errorf("writing build descriptor: %w", err)
	}
	return true, nil
}

func render(module string, exts types.Extensions) string {
	srcExt := strings.TrimPrefix(exts.SourceOut, ".")

	var b strings.Builder
	fmt.Fprintf(&b, "MODULE_big = %s\n", module)
	fmt.Fprintf(&b, "OBJS = $(patsubst %%.%s,%%.o,$(wildcard *.%s))\n", srcExt, srcExt)
	b.WriteString("\n")
	b.WriteString("PG_CXXFLAGS = -std=c++17 -fPIC\n")
	b.WriteString("\n")
	b.WriteString("PG_CONFIG ?= pg_config\n")
	b.WriteString("PGXS := $(shell $(PG_CONFIG) --pgxs)\n")
	b.WriteString("include $(PGXS)\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s.o:\n", exts.SourceOut)
	b.WriteString("\t$(CXX) $(PG_CXXFLAGS) $(CPPFLAGS) -I$(shell $(PG_CONFIG) --includedir-server) -c $< -o $@\n")
	return b.String()
}
