package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/personaforge/pkg/config"
	"github.com/soundprediction/personaforge/pkg/driver"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [master files...]",
	Short: "Ingest master analysis files into the knowledge graph",
	Long: `Parse one or more master analysis files and write their QA pairs,
framework edges, and embedded text chunks into the graph store.

Multiple files are concatenated and ingested as one batch. With the script
store provider, the resulting Cypher build script is written to the
configured script path instead of touching a database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("client-id", "", "Client node id (defaults to config)")
	ingestCmd.Flags().String("session-id", "", "Session node id (defaults to config)")
	ingestCmd.Flags().String("checkpoint-dir", "", "Checkpoint ledger directory for resumable batches")
	ingestCmd.Flags().String("store-provider", "", "Graph store provider (memory, neo4j, script)")
	ingestCmd.Flags().String("script-path", "", "Output path for the script provider")
	ingestCmd.Flags().String("history", "", "Client background history to attach")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("client-id"); v != "" {
		cfg.Ingest.ClientID = v
	}
	if v, _ := cmd.Flags().GetString("session-id"); v != "" {
		cfg.Ingest.SessionID = v
	}
	if v, _ := cmd.Flags().GetString("checkpoint-dir"); v != "" {
		cfg.Ingest.CheckpointDir = v
	}
	if v, _ := cmd.Flags().GetString("store-provider"); v != "" {
		cfg.Store.Provider = v
	}
	if v, _ := cmd.Flags().GetString("script-path"); v != "" {
		cfg.Store.ScriptPath = v
	}

	forge, logger, err := initializeForge(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize PersonaForge: %w", err)
	}
	ctx := context.Background()
	defer forge.Close(ctx)

	if err := forge.CreateIndices(ctx); err != nil {
		return fmt.Errorf("failed to create indices: %w", err)
	}

	if history, _ := cmd.Flags().GetString("history"); history != "" {
		if err := forge.SetClientHistory(ctx, history); err != nil {
			return fmt.Errorf("failed to set client history: %w", err)
		}
	}

	result, err := forge.IngestFiles(ctx, args...)
	if err != nil {
		return err
	}

	if sw, ok := forge.GetStore().(*driver.ScriptWriter); ok {
		if err := writeScript(sw, cfg.Store.ScriptPath); err != nil {
			return err
		}
		logger.Info("build script written", "path", cfg.Store.ScriptPath, "statements", sw.Len())
	}

	return printJSON(result)
}

func writeScript(sw *driver.ScriptWriter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create script file: %w", err)
	}
	defer f.Close()
	if _, err := sw.WriteTo(f); err != nil {
		return fmt.Errorf("write script file: %w", err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
