// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cxxport CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the cxxport CLI.
var rootCmd = &cobra.Command{
	Use:   "cxxport",
	Short: "Migrate a C source tree to a C++-compatible tree and verify it",
	Long: `cxxport rewrites a directory of C sources and headers into a parallel
C++ tree: headers get a canonical include guard and a conditional extern "C"
envelope, sources get project-local includes retargeted to the C++ header
extension and the C-runtime aggregation header wrapped for C++ linkage.

Every rewrite rule is idempotent, so re-running over already-converted output
changes nothing. An independent audit re-derives each expected invariant from
the emitted files alone and fails the run on any discrepancy, instead of
trusting the converter's own record of what it did.

Each migration stage is a subcommand: convert, fix-includes, audit,
final-check, and history.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cxxport.yaml or ~/.config/cxxport/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cxxport")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cxxport"))
		}
	}

	viper.SetEnvPrefix("CXXPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
