// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides, for an include reference found in a source
// file, whether it names a project-owned header (local) or a library or
// platform header (foreign). The decision is an exact lookup against a
// finite registry of stems; extension and delimiter style are never
// consulted, and unknown names default to foreign so nothing is rewritten
// unless positively known to be local.
package classify

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Kind classifies an include reference.
type Kind int

const (
	Foreign Kind = iota
	Local
)

func (k Kind) String() string {
	if k == Local {
		return "local"
	}
	return "foreign"
}

// Registry is the finite set of project-owned header stems.
type Registry struct {
	names map[string]struct{}
}

// NewRegistry builds a registry from header stems (base names without
// extension). Blank entries are dropped.
func NewRegistry(names []string) *Registry {
	r := &Registry{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		r.names[n] = struct{}{}
	}
	return r
}

// Load reads a registry from a YAML file containing either a bare
// sequence of stems or a document with a top-level "names" list.
func Load(file string) (*Registry, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}

	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		var doc struct {
			Names []string `yaml:"names"`
		}
		if docErr := yaml.Unmarshal(data, &doc); docErr != nil {
			return nil, fmt.Errorf("parsing registry file %s: %w", file, err)
		}
		names = doc.Names
	}
	return NewRegistry(names), nil
}

// Classify returns Local when stem names a registered project header and
// Foreign otherwise. The empty stem is always Foreign.
func (r *Registry) Classify(stem string) Kind {
	if _, ok := r.names[stem]; ok {
		return Local
	}
	return Foreign
}

// Local reports whether stem names a registered project header.
func (r *Registry) Local(stem string) bool {
	return r.Classify(stem) == Local
}

// Names returns the registered stems in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered stems.
func (r *Registry) Len() int {
	return len(r.names)
}

// Stem reduces an include name to the registry lookup key: the base name
// with its extension removed. Path-qualified references (containing a
// separator) reduce to the empty string and therefore classify Foreign,
// because a directory component always denotes a header outside the flat
// project tree.
func Stem(name string) string {
	if strings.ContainsAny(name, "/\\") {
		return ""
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
