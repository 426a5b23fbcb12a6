package main

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/personaforge"
	"github.com/soundprediction/personaforge/pkg/checkpoint"
	"github.com/soundprediction/personaforge/pkg/config"
	"github.com/soundprediction/personaforge/pkg/driver"
	"github.com/soundprediction/personaforge/pkg/embedder"
	pfLogger "github.com/soundprediction/personaforge/pkg/logger"
	"github.com/soundprediction/personaforge/pkg/telemetry"
)

// initializeForge wires a PersonaForge client from the loaded configuration:
// graph store, embedder (behind the circuit breaker), checkpoint ledger, and
// telemetry recorder.
func initializeForge(cfg *config.Config) (*personaforge.Client, *slog.Logger, error) {
	logger := pfLogger.New(cfg.Log.Level, cfg.Log.Format)

	store, err := buildStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	embedderClient, err := buildEmbedder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	forgeCfg := &personaforge.Config{
		ClientID:  cfg.Ingest.ClientID,
		SessionID: cfg.Ingest.SessionID,
	}

	if cfg.Ingest.CheckpointDir != "" {
		ledger, err := checkpoint.Open(cfg.Ingest.CheckpointDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open checkpoint ledger: %w", err)
		}
		forgeCfg.Ledger = ledger
	}

	if cfg.Telemetry.Enabled {
		recorder, err := telemetry.NewRecorder(cfg.Telemetry.ParquetPath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		forgeCfg.Telemetry = recorder
		logger.Info("telemetry enabled", "path", cfg.Telemetry.ParquetPath)
	}

	forge, err := personaforge.NewClient(store, embedderClient, forgeCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return forge, logger, nil
}

func buildStore(cfg *config.Config) (driver.GraphStore, error) {
	switch cfg.Store.Provider {
	case "memory":
		return driver.NewMemoryStore(), nil
	case "neo4j":
		store, err := driver.NewNeo4jStore(
			cfg.Store.URI, cfg.Store.Username, cfg.Store.Password,
			cfg.Store.Database, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j store: %w", err)
		}
		return store, nil
	case "script":
		return driver.NewScriptWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported store provider: %s", cfg.Store.Provider)
	}
}

func buildEmbedder(cfg *config.Config, logger *slog.Logger) (embedder.Client, error) {
	var client embedder.Client
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("embedding API key is required (set OPENAI_API_KEY)")
		}
		client = embedder.NewOpenAIClient(cfg.EmbedderConfig())
	case "local":
		local, err := embedder.NewLocalClient(cfg.EmbedderConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create local embedder: %w", err)
		}
		client = local
	case "fake":
		client = embedder.NewFakeClient(cfg.Embedding.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}

	if cfg.CircuitBreaker.Enabled {
		client = embedder.NewCircuitBreakerClient(client, cfg.CircuitBreaker, logger, "embedder")
	}
	return client, nil
}
