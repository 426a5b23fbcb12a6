package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteStarter writes a commented-out starter configuration file with every
// default filled in. Refuses to overwrite an existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	starter := map[string]any{
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"server": map[string]any{
			"host": "localhost",
			"port": 8080,
			"mode": "release",
		},
		"store": map[string]any{
			"provider":    "memory",
			"uri":         "bolt://localhost:7687",
			"username":    "neo4j",
			"password":    "",
			"database":    "neo4j",
			"script_path": "./graph_build.cypher",
		},
		"ingest": map[string]any{
			"client_id":      "client_001",
			"session_id":     "session_001",
			"checkpoint_dir": "",
		},
		"embedding": map[string]any{
			"provider":   "openai",
			"model":      "text-embedding-3-small",
			"dimensions": 1536,
			"batch_size": 100,
		},
		"circuit_breaker": map[string]any{
			"enabled":             true,
			"max_requests":        1,
			"interval":            60,
			"timeout":             30,
			"ready_to_trip_ratio": 0.6,
		},
		"telemetry": map[string]any{
			"enabled":      false,
			"parquet_path": "",
		},
	}

	data, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("marshal starter config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write starter config: %w", err)
	}
	return nil
}
