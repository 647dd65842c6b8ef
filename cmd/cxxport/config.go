// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cxxport/internal/classify"
	"github.com/pdiddy/cxxport/pkg/types"
)

// defaultLocalNames is the registry of the reference migration target, a
// PostgreSQL vector extension.
var defaultLocalNames = []string{
	"bitutils", "bitvec", "halfutils", "halfvec",
	"hnsw", "ivfflat", "sparsevec", "vector",
}

const (
	defaultModule     = "vector_cpp"
	defaultSourceDir  = "src"
	defaultOutputDir  = "src-cpp"
	defaultBuildFile  = "Makefile"
	defaultHistoryDir = ".cxxport"
)

// defaultDocs are the documentation artifacts the final check requires.
var defaultDocs = []string{"CONVERSION_PLAN.md", "CONVERSION_SUMMARY.md"}

// Setting resolution order: a flag set on the command line wins, then the
// config file, then the flag's compiled default.

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetBool(key)
	}
	v, _ := cmd.Flags().GetBool(flag)
	return v
}

func sliceSetting(cmd *cobra.Command, flag, key string) []string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetStringSlice(key)
	}
	v, _ := cmd.Flags().GetStringSlice(flag)
	return v
}

func durationSetting(cmd *cobra.Command, flag, key string) time.Duration {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	v, _ := cmd.Flags().GetDuration(flag)
	return v
}

// projectFlags registers the flags shared by every stage command.
func projectFlags(cmd *cobra.Command) {
	cmd.Flags().String("source-dir", defaultSourceDir, "root of the C tree")
	cmd.Flags().String("output-dir", defaultOutputDir, "root of the emitted C++ tree")
	cmd.Flags().String("module", defaultModule, "build target name declared in the build descriptor")
	cmd.Flags().StringSlice("names", defaultLocalNames, "project-local header stems eligible for include rewriting")
	cmd.Flags().String("names-file", "", "YAML file listing project-local header stems (overrides --names)")
	cmd.Flags().StringSlice("wrap", []string{"postgres.h"}, "includes that must sit inside an extern \"C\" block")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns for tree-relative paths discovery skips")
	cmd.Flags().String("build-file", defaultBuildFile, "build descriptor filename inside the output tree")
	cmd.Flags().Int("workers", 0, "files processed in parallel (default: CPU count)")
	cmd.Flags().String("report", "", "write the aggregated report to this YAML file")
	cmd.Flags().String("history-dir", defaultHistoryDir, "directory holding the run ledger (empty disables recording)")
}

// projectConfig resolves the shared settings for a stage command.
func projectConfig(cmd *cobra.Command) (types.ProjectConfig, error) {
	cfg := types.ProjectConfig{
		Module:       stringSetting(cmd, "module", "module"),
		SourceDir:    stringSetting(cmd, "source-dir", "source_dir"),
		OutputDir:    stringSetting(cmd, "output-dir", "output_dir"),
		LocalNames:   sliceSetting(cmd, "names", "local_names"),
		WrapIncludes: sliceSetting(cmd, "wrap", "wrap_includes"),
		Excludes:     sliceSetting(cmd, "exclude", "excludes"),
		BuildFile:    stringSetting(cmd, "build-file", "build_file"),
		Exts:         extensionsConfig(),
	}

	if namesFile := stringSetting(cmd, "names-file", "names_file"); namesFile != "" {
		reg, err := classify.Load(namesFile)
		if err != nil {
			return cfg, fmt.Errorf("loading local-name registry: %w", err)
		}
		cfg.LocalNames = reg.Names()
	}
	return cfg, nil
}

// extensionsConfig reads the extension mapping from the config file;
// extensions have no flags.
func extensionsConfig() types.Extensions {
	exts := types.DefaultExtensions()
	if v := viper.GetString("extensions.source_in"); v != "" {
		exts.SourceIn = v
	}
	if v := viper.GetString("extensions.header_in"); v != "" {
		exts.HeaderIn = v
	}
	if v := viper.GetString("extensions.source_out"); v != "" {
		exts.SourceOut = v
	}
	if v := viper.GetString("extensions.header_out"); v != "" {
		exts.HeaderOut = v
	}
	return exts
}

// syntaxFlags registers the compiler-pass flags.
func syntaxFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("syntax", false, "run the compiler front end over emitted implementation files")
	cmd.Flags().String("compiler", "g++", "compiler binary for the syntax pass")
	cmd.Flags().String("std", "c++17", "language standard for the syntax pass")
	cmd.Flags().StringSlice("include-dir", []string{"/usr/include/postgresql"}, "include directories for the syntax pass")
	cmd.Flags().Duration("compile-timeout", 30*time.Second, "per-file timeout for the syntax pass")
	cmd.Flags().Int("sample", 3, "implementation files the syntax pass checks (0 = all)")
}

// syntaxConfig resolves the compiler-pass settings.
func syntaxConfig(cmd *cobra.Command) types.SyntaxConfig {
	return types.SyntaxConfig{
		Enabled:     boolSetting(cmd, "syntax", "syntax.enabled"),
		Compiler:    stringSetting(cmd, "compiler", "syntax.compiler"),
		Std:         stringSetting(cmd, "std", "syntax.std"),
		IncludeDirs: sliceSetting(cmd, "include-dir", "syntax.include_dirs"),
		Timeout:     durationSetting(cmd, "compile-timeout", "syntax.timeout"),
		Sample:      intSetting(cmd, "sample", "syntax.sample"),
	}
}
