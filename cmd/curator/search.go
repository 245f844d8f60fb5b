// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tatuum/RAG-research-paper-curator/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Full-text search over stored papers",
	Long: `Search queries the curated-paper database with SQLite FTS5 over titles,
abstracts, and extracted text, printing ranked hits with snippets.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum hits to print (default from config)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}

	cfg := loadConfig()
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. %s  %s\n    %s\n", i+1, r.PaperID, r.Title, r.Snippet)
	}
	return nil
}
