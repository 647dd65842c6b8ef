package types

import "time"

// ProjectConfig holds the migration settings shared by every stage.
type ProjectConfig struct {
	// Module is the build target name declared in the build descriptor.
	Module string `json:"module" yaml:"module"`

	// SourceDir is the root of the C tree being migrated.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// OutputDir is the root of the emitted C++ tree.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// LocalNames enumerates the project-owned header stems. Includes of
	// these names are rewritten; every other include passes through
	// byte-identical.
	LocalNames []string `json:"local_names" yaml:"local_names"`

	// WrapIncludes lists the includes (by quoted name, e.g. "postgres.h")
	// that source files must carry inside a C-linkage block. The default
	// is the project's C-runtime aggregation header alone.
	WrapIncludes []string `json:"wrap_includes" yaml:"wrap_includes"`

	// Excludes are glob patterns, matched against tree-relative paths,
	// for files discovery skips.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`

	// BuildFile is the build descriptor filename inside OutputDir
	// (default "Makefile").
	BuildFile string `json:"build_file" yaml:"build_file"`

	// Exts maps input extensions to output extensions.
	Exts Extensions `json:"extensions" yaml:"extensions"`
}

// ConvertConfig holds settings for the conversion stage.
type ConvertConfig struct {
	ProjectConfig `yaml:",inline"`

	// Workers is the number of files converted in parallel (default: CPU count).
	Workers int `json:"workers" yaml:"workers"`

	// WriteBuildFile controls generation of the build descriptor in the
	// output tree when none exists yet.
	WriteBuildFile bool `json:"write_build_file" yaml:"write_build_file"`
}

// SyntaxConfig holds settings for the external compiler syntax pass.
type SyntaxConfig struct {
	// Enabled turns the compiler pass on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Compiler is the compiler binary name (default "g++").
	Compiler string `json:"compiler" yaml:"compiler"`

	// Std is the language standard passed via -std (default "c++17").
	Std string `json:"std" yaml:"std"`

	// IncludeDirs are extra include directories passed via -I.
	IncludeDirs []string `json:"include_dirs" yaml:"include_dirs"`

	// Timeout bounds each compiler invocation (default 30s). This is the
	// only timed operation in the pipeline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Sample caps how many implementation files are checked (0 = all).
	Sample int `json:"sample" yaml:"sample"`
}

// AuditConfig holds settings for the structural audit stage.
type AuditConfig struct {
	ProjectConfig `yaml:",inline"`

	// Workers is the number of files audited in parallel (default: CPU count).
	Workers int `json:"workers" yaml:"workers"`

	// Syntax configures the optional compiler syntax pass.
	Syntax SyntaxConfig `json:"syntax" yaml:"syntax"`
}

// CheckConfig holds settings for the final release-readiness check.
type CheckConfig struct {
	AuditConfig `yaml:",inline"`

	// BuildElements are literal strings the build descriptor must contain.
	// Empty means the defaults derived from the module name.
	BuildElements []string `json:"build_elements,omitempty" yaml:"build_elements,omitempty"`

	// Docs are documentation files, relative to the working directory,
	// whose existence the check requires.
	Docs []string `json:"docs" yaml:"docs"`
}

// HistoryConfig holds settings for the run ledger.
type HistoryConfig struct {
	// Dir is the directory holding the ledger database (default ".cxxport").
	Dir string `json:"dir" yaml:"dir"`
}

// MigrationConfig groups all stage configurations.
type MigrationConfig struct {
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Audit   AuditConfig   `json:"audit" yaml:"audit"`
	Check   CheckConfig   `json:"check" yaml:"check"`
	History HistoryConfig `json:"history" yaml:"history"`
}
