// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package buildfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/cxxport/pkg/types"
)

func TestWriteContainsAllElements(t *testing.T) {
	exts := types.DefaultExtensions()
	path := filepath.Join(t.TempDir(), "Makefile")

	created, err := Write(path, "vector_cpp", exts)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !created {
		t.Fatal("Write() created = false, want true")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, element := range Elements("vector_cpp", exts) {
		if !strings.Contains(content, element) {
			t.Errorf("generated descriptor is missing %q", element)
		}
	}
}

func TestWriteSkipsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Makefile")
	custom := "MODULE_big = hand_edited\n"
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	created, err := Write(path, "vector_cpp", types.DefaultExtensions())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if created {
		t.Error("Write() created = true, want false for existing descriptor")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != custom {
		t.Error("Write() overwrote an existing descriptor")
	}
}

func TestElements(t *testing.T) {
	got := Elements("vector_cpp", types.DefaultExtensions())
	want := []string{
		"MODULE_big = vector_cpp",
		"PG_CXXFLAGS",
		".cpp.o:",
		"PG_CONFIG",
		"include $(PGXS)",
	}
	if len(got) != len(want) {
		t.Fatalf("Elements() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Elements()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
