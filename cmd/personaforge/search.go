package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/personaforge/pkg/config"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Hybrid retrieval over the knowledge graph",
	Long: `Embed the query, rank text chunks by vector similarity, and recover
each hit's psychological context by graph traversal.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("limit", 5, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	forge, _, err := initializeForge(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize PersonaForge: %w", err)
	}
	ctx := context.Background()
	defer forge.Close(ctx)

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := forge.Search(ctx, args[0], limit)
	if err != nil {
		return err
	}
	return printJSON(results)
}
