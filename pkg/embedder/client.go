package embedder

import (
	"context"
)

// Client generates fixed-dimension embeddings for text. A failing call fails
// the whole batch, never individual elements; callers that need per-element
// isolation embed one text at a time.
type Client interface {
	// Embed generates one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector width.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds provider-independent embedding settings.
type Config struct {
	Model      string `mapstructure:"model" json:"model"`
	Dimensions int    `mapstructure:"dimensions" json:"dimensions"`
	BatchSize  int    `mapstructure:"batch_size" json:"batch_size"`
	APIKey     string `mapstructure:"api_key" json:"-"`
	BaseURL    string `mapstructure:"base_url" json:"base_url,omitempty"`
}

// DefaultDimensions matches text-embedding-3-small.
const DefaultDimensions = 1536
