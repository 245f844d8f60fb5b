// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the curator CLI: it fetches arXiv
// paper metadata, downloads and parses PDFs through the batch pipeline,
// and stores the results for full-text retrieval.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Tatuum/RAG-research-paper-curator/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the curator CLI.
var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curate arXiv papers: fetch metadata, download and parse PDFs",
	Long: `curator ingests scientific paper metadata from the arXiv API, downloads
the associated PDFs, and extracts structured text through the docling
engine. Parsed papers land in a local SQLite database with full-text
search.

Each stage is a subcommand: ingest runs the full batch pipeline, parse
extracts local PDFs, and search queries the stored papers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		pretty, _ := cmd.Flags().GetBool("pretty")
		logging.Setup(logging.Config{Level: level, Pretty: pretty})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./curator.yaml or ~/.config/curator/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("pretty", false, "human-readable log output instead of JSON")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("curator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "curator"))
		}
	}

	viper.SetEnvPrefix("CURATOR")
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
