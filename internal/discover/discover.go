// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover enumerates the migratable files of a tree. It walks
// recursively, assigns a role from the file extension, ignores every
// other extension, and returns paths in walk order (lexical, so runs are
// reproducible). A missing root is the one fatal discovery error; the
// pipeline aborts before touching any file.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/cxxport/pkg/types"
)

// Inputs walks root and returns the migratable input files: those whose
// extension is the configured source or header input extension. Exclude
// patterns are matched against the slash-separated tree-relative path.
func Inputs(root string, exts types.Extensions, excludes []string) ([]types.SourceFile, error) {
	return walk(root, excludes, func(name string) (types.Role, bool) {
		return exts.RoleFor(name)
	})
}

// Outputs walks root and returns the emitted files: those whose extension
// is the configured source or header output extension. Used by the audit,
// which inspects the output tree with no knowledge of the input tree.
func Outputs(root string, exts types.Extensions, excludes []string) ([]types.SourceFile, error) {
	return walk(root, excludes, func(name string) (types.Role, bool) {
		switch filepath.Ext(name) {
		case exts.SourceOut:
			return types.RoleSource, true
		case exts.HeaderOut:
			return types.RoleHeader, true
		default:
			return "", false
		}
	})
}

func walk(root string, excludes []string, roleFor func(string) (types.Role, bool)) ([]types.SourceFile, error) {
	var files []types.SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		role, ok := roleFor(d.Name())
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if excluded(filepath.ToSlash(rel), excludes) {
			return nil
		}

		files = append(files, types.SourceFile{
			Path: path,
			Rel:  rel,
			Role: role,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files under %s: %w", root, err)
	}
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
