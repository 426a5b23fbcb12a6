package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/personaforge/pkg/config"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the background history attached to a client",
	Long: `Print the background/diagnosis entries recorded for a client. History is
attached during ingestion with --history or through the API.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("client-id", "", "Client node id (defaults to config)")
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	clientID, _ := cmd.Flags().GetString("client-id")
	history, err := forge.ClientHistory(ctx, clientID)
	if err != nil {
		return err
	}
	return printJSON(history)
}
