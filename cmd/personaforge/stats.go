package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/personaforge/pkg/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats [session-id]",
	Short: "Aggregate framework statistics for one session",
	Long: `Report the top framework values (emotions, cognitive distortions,
schemas, defenses, Erikson stages), the full attachment-style list, and
banded Big Five trait means for one session.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var extremesCmd = &cobra.Command{
	Use:   "extremes [session-id]",
	Short: "QA pairs scoring highest on one framework property",
	Long: `Rank a session's QA pairs by one numeric edge property: emotion_valence,
emotion_arousal, or a Big Five trait name.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtremes,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(extremesCmd)

	statsCmd.Flags().String("focus", "", "Summary focus instead of full statistics (overall, emotions, cognition, attachment, personality)")

	extremesCmd.Flags().String("property", "emotion_valence", "Property to rank by")
	extremesCmd.Flags().Int("limit", 5, "Maximum number of results")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	if focus, _ := cmd.Flags().GetString("focus"); focus != "" {
		summary, err := forge.PersonalitySummary(ctx, args[0], focus)
		if err != nil {
			return err
		}
		return printJSON(summary)
	}

	stats, err := forge.SessionStatistics(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runExtremes(cmd *cobra.Command, args []string) error {
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

	property, _ := cmd.Flags().GetString("property")
	limit, _ := cmd.Flags().GetInt("limit")

	extremes, err := forge.SessionExtremes(ctx, args[0], property, limit)
	if err != nil {
		return err
	}
	return printJSON(extremes)
}
