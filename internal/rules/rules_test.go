// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/pkg/types"
)

func testRegistry() *classify.Registry {
	return classify.NewRegistry([]string{
		"bitutils", "bitvec", "halfutils", "halfvec",
		"hnsw", "ivfflat", "sparsevec", "vector",
	})
}

func testProject() types.ProjectConfig {
	return types.ProjectConfig{
		WrapIncludes: []string{"postgres.h"},
		Exts:         types.DefaultExtensions(),
	}
}

func TestGuardToken(t *testing.T) {
	tests := []struct {
		name     string
		destName string
		want     string
	}{
		{"plain stem", "alpha.hpp", "ALPHA_HPP"},
		{"underscore stem", "half_vec.hpp", "HALF_VEC_HPP"},
		{"hyphen maps to underscore", "vector-io.hpp", "VECTOR_IO_HPP"},
		{"directory ignored", "src-cpp/vector.hpp", "VECTOR_HPP"},
		{"digits kept", "utf8.hpp", "UTF8_HPP"},
		{"no extension", "vector", "VECTOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuardToken(tt.destName); got != tt.want {
				t.Errorf("GuardToken(%q) = %q, want %q", tt.destName, got, tt.want)
			}
		})
	}
}

func TestGuardRewrite(t *testing.T) {
	f := File{SourcePath: "src/vector.h", DestName: "vector.hpp"}

	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{
			name:    "conventional guard with commented endif",
			in:      "#ifndef VECTOR_H\n#define VECTOR_H\n\nint x;\n\n#endif /* VECTOR_H */\n",
			want:    "#ifndef VECTOR_HPP\n#define VECTOR_HPP\n\nint x;\n\n#endif /* VECTOR_HPP */\n",
			changed: true,
		},
		{
			name:    "unconventional guard token",
			in:      "#ifndef _VEC_GUARD_\n#define _VEC_GUARD_\nint x;\n#endif /* _VEC_GUARD_ */\n",
			want:    "#ifndef VECTOR_HPP\n#define VECTOR_HPP\nint x;\n#endif /* VECTOR_HPP */\n",
			changed: true,
		},
		{
			name:    "bare endif stays bare",
			in:      "#ifndef VECTOR_H\n#define VECTOR_H\nint x;\n#endif\n",
			want:    "#ifndef VECTOR_HPP\n#define VECTOR_HPP\nint x;\n#endif\n",
			changed: true,
		},
		{
			name:    "line-comment endif",
			in:      "#ifndef VECTOR_H\n#define VECTOR_H\nint x;\n#endif // VECTOR_H\n",
			want:    "#ifndef VECTOR_HPP\n#define VECTOR_HPP\nint x;\n#endif // VECTOR_HPP\n",
			changed: true,
		},
		{
			name:    "no guard is a no-op",
			in:      "int x;\n",
			want:    "int x;\n",
			changed: false,
		},
		{
			name:    "mismatched pair is not a guard",
			in:      "#ifndef FOO\n#define BAR\nint x;\n#endif\n",
			want:    "#ifndef FOO\n#define BAR\nint x;\n#endif\n",
			changed: false,
		},
		{
			name:    "macro default is not a guard",
			in:      "#ifndef BUFSIZE\n#define BUFSIZE 1024\n#endif\nint x;\n",
			want:    "#ifndef BUFSIZE\n#define BUFSIZE 1024\n#endif\nint x;\n",
			changed: false,
		},
		{
			name:    "already canonical",
			in:      "#ifndef VECTOR_HPP\n#define VECTOR_HPP\nint x;\n#endif /* VECTOR_HPP */\n",
			want:    "#ifndef VECTOR_HPP\n#define VECTOR_HPP\nint x;\n#endif /* VECTOR_HPP */\n",
			changed: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changes := guardRewrite{}.Rewrite(tt.in, f)
			if got != tt.want {
				t.Errorf("Rewrite() =\n%q\nwant\n%q", got, tt.want)
			}
			if (len(changes) > 0) != tt.changed {
				t.Errorf("Rewrite() changes = %d, want changed=%v", len(changes), tt.changed)
			}

			again, more := guardRewrite{}.Rewrite(got, f)
			if again != got || len(more) != 0 {
				t.Errorf("Rewrite() is not idempotent")
			}
		})
	}
}

func TestLinkageEnvelope(t *testing.T) {
	f := File{SourcePath: "src/vector.h", DestName: "vector.hpp"}
	body := "#ifndef VECTOR_HPP\n#define VECTOR_HPP\nint x;\n#endif /* VECTOR_HPP */\n"

	out, changes := linkageEnvelope{}.Rewrite(body, f)
	if len(changes) != 1 {
		t.Fatalf("Rewrite() changes = %d, want 1", len(changes))
	}
	if !strings.HasPrefix(out, "#ifdef __cplusplus\nextern \"C\" {\n#endif\n") {
		t.Errorf("envelope opening missing:\n%s", out)
	}
	if !strings.HasSuffix(out, "#ifdef __cplusplus\n}\n#endif\n") {
		t.Errorf("envelope closing missing:\n%s", out)
	}
	if !strings.Contains(out, body) {
		t.Errorf("body not preserved verbatim inside envelope")
	}

	again, more := linkageEnvelope{}.Rewrite(out, f)
	if again != out || len(more) != 0 {
		t.Errorf("Rewrite() is not idempotent")
	}
}

func TestIncludeExtension(t *testing.T) {
	rule := newIncludeExtension(testRegistry(), types.DefaultExtensions())
	f := File{SourcePath: "src/beta.c", DestName: "beta.cpp"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "selective rewrite",
			in:   "#include \"vector.h\"\n#include \"system.h\"\n",
			want: "#include \"vector.hpp\"\n#include \"system.h\"\n",
		},
		{
			name: "angle delimiter preserved",
			in:   "#include <vector.h>\n#include <stdio.h>\n",
			want: "#include <vector.hpp>\n#include <stdio.h>\n",
		},
		{
			name: "path-qualified reference is foreign",
			in:   "#include \"catalog/pg_type.h\"\n#include \"hnsw.h\"\n",
			want: "#include \"catalog/pg_type.h\"\n#include \"hnsw.hpp\"\n",
		},
		{
			name: "already converted extension",
			in:   "#include \"vector.hpp\"\n",
			want: "#include \"vector.hpp\"\n",
		},
		{
			name: "registry is exact match",
			in:   "#include \"vectors.h\"\n#include \"vec.h\"\n",
			want: "#include \"vectors.h\"\n#include \"vec.h\"\n",
		},
		{
			name: "no includes",
			in:   "int main(void) { return 0; }\n",
			want: "int main(void) { return 0; }\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := rule.Rewrite(tt.in, f)
			if got != tt.want {
				t.Errorf("Rewrite() =\n%q\nwant\n%q", got, tt.want)
			}

			again, more := rule.Rewrite(got, f)
			if again != got || len(more) != 0 {
				t.Errorf("Rewrite() is not idempotent")
			}
		})
	}
}

func TestIncludeExtensionChangeRecord(t *testing.T) {
	rule := newIncludeExtension(testRegistry(), types.DefaultExtensions())
	in := "#include \"postgres.h\"\n\n#include \"vector.h\"\n"

	_, changes := rule.Rewrite(in, File{DestName: "beta.cpp"})
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}
	c := changes[0]
	if c.Rule != "include-extension" || c.Line != 3 || c.Old != "vector.h" || c.New != "vector.hpp" {
		t.Errorf("change = %+v, want rule include-extension line 3 vector.h -> vector.hpp", c)
	}
}

func TestLinkageWrap(t *testing.T) {
	rule := newLinkageWrap([]string{"postgres.h"})
	f := File{SourcePath: "src/beta.c", DestName: "beta.cpp"}

	t.Run("wraps aggregation header only", func(t *testing.T) {
		in := "#include \"postgres.h\"\n#include \"funcapi.h\"\n"
		out, changes := rule.Rewrite(in, f)
		if len(changes) != 1 {
			t.Fatalf("changes = %d, want 1", len(changes))
		}
		want := "#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n#include \"postgres.h\"\n\n#ifdef __cplusplus\n}\n#endif\n#include \"funcapi.h\"\n"
		if out != want {
			t.Errorf("Rewrite() =\n%q\nwant\n%q", out, want)
		}

		again, more := rule.Rewrite(out, f)
		if again != out || len(more) != 0 {
			t.Errorf("Rewrite() is not idempotent")
		}
	})

	t.Run("already wrapped include is untouched", func(t *testing.T) {
		in := "#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n#include \"postgres.h\"\n\n#ifdef __cplusplus\n}\n#endif\n"
		out, changes := rule.Rewrite(in, f)
		if out != in || len(changes) != 0 {
			t.Errorf("Rewrite() rewrapped an already wrapped include")
		}
	})

	t.Run("no target include", func(t *testing.T) {
		in := "#include \"vector.hpp\"\nint x;\n"
		out, changes := rule.Rewrite(in, f)
		if out != in || len(changes) != 0 {
			t.Errorf("Rewrite() touched a file without the aggregation header")
		}
	})

	t.Run("multiple configured names", func(t *testing.T) {
		multi := newLinkageWrap([]string{"postgres.h", "fmgr.h"})
		in := "#include \"postgres.h\"\n#include \"fmgr.h\"\n"
		out, changes := multi.Rewrite(in, f)
		if len(changes) != 2 {
			t.Fatalf("changes = %d, want 2", len(changes))
		}
		if changes[0].Line != 1 || changes[1].Line != 2 {
			t.Errorf("change lines = %d, %d, want 1, 2", changes[0].Line, changes[1].Line)
		}

		again, more := multi.Rewrite(out, f)
		if again != out || len(more) != 0 {
			t.Errorf("Rewrite() is not idempotent")
		}
	})
}

func TestParseIncludes(t *testing.T) {
	text := "#include \"vector.h\"\n#include <stdio.h>\nint x;\n  #include \"utils/elog.h\"\n#include \"broken.h>\n"
	refs := ParseIncludes(text)

	want := []struct {
		name   string
		ext    string
		angled bool
		line   int
	}{
		{"vector.h", ".h", false, 1},
		{"stdio.h", ".h", true, 2},
		{"utils/elog.h", ".h", false, 4},
	}
	if len(refs) != len(want) {
		t.Fatalf("ParseIncludes() = %d refs, want %d", len(refs), len(want))
	}
	for i, w := range want {
		got := refs[i]
		if got.Name != w.name || got.Ext != w.ext || got.Angled != w.angled || got.Line != w.line {
			t.Errorf("refs[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestForRole(t *testing.T) {
	reg := testRegistry()
	cfg := testProject()

	headers := ForRole(types.RoleHeader, reg, cfg)
	sources := ForRole(types.RoleSource, reg, cfg)

	gotHeader := ruleNames(headers)
	if want := []string{"include-guard", "linkage-envelope"}; !reflect.DeepEqual(gotHeader, want) {
		t.Errorf("header rules = %v, want %v", gotHeader, want)
	}
	gotSource := ruleNames(sources)
	if want := []string{"include-extension", "linkage-wrap"}; !reflect.DeepEqual(gotSource, want) {
		t.Errorf("source rules = %v, want %v", gotSource, want)
	}

	for _, r := range headers {
		if r.Role() != types.RoleHeader {
			t.Errorf("rule %s role = %v, want header", r.Name(), r.Role())
		}
	}
	for _, r := range sources {
		if r.Role() != types.RoleSource {
			t.Errorf("rule %s role = %v, want source", r.Name(), r.Role())
		}
	}
}

func ruleNames(rs []Rule) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name()
	}
	return names
}

func TestRuleIdempotence(t *testing.T) {
	// Every rule must be a fixed point on its own output for a spread of
	// inputs, including degenerate ones.
	reg := testRegistry()
	cfg := testProject()
	f := File{SourcePath: "src/vector.h", DestName: "vector.hpp"}

	inputs := []string{
		"",
		"\n",
		"int x;\n",
		"#ifndef VECTOR_H\n#define VECTOR_H\nint x;\n#endif /* VECTOR_H */\n",
		"#include \"postgres.h\"\n#include \"vector.h\"\nint x;\n",
		"#include <vector.h>\n",
	}

	var all []Rule
	all = append(all, ForRole(types.RoleHeader, reg, cfg)...)
	all = append(all, ForRole(types.RoleSource, reg, cfg)...)

	for _, r := range all {
		for _, in := range inputs {
			once, _ := r.Rewrite(in, f)
			twice, more := r.Rewrite(once, f)
			if twice != once {
				t.Errorf("%s: apply(apply(x)) != apply(x) for %q", r.Name(), in)
			}
			if len(more) != 0 {
				t.Errorf("%s: second application reported %d changes for %q", r.Name(), len(more), in)
			}
		}
	}
}
