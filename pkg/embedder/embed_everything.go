package embedder

import (
	"context"
	"fmt"

	everything "github.com/soundprediction/go-embedeverything/pkg/embedder"

	"github.com/soundprediction/personaforge/pkg/types"
)

// LocalClient implements Client on top of a local EmbedEverything model, for
// deployments that keep session text off third-party APIs.
type LocalClient struct {
	client *everything.Embedder
	config Config
}

// NewLocalClient loads the named local embedding model.
func NewLocalClient(config Config) (*LocalClient, error) {
	client, err := everything.NewEmbedder(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &LocalClient{client: client, config: config}, nil
}

// Embed generates embeddings for the given texts.
func (c *LocalClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	// go-embedeverything does not support context yet
	embeddings, err := c.client.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingFailure, err)
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (c *LocalClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", types.ErrEmbeddingFailure)
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding vector width.
func (c *LocalClient) Dimensions() int {
	return c.config.Dimensions
}

// Close cleans up any resources.
func (c *LocalClient) Close() error {
	c.client.Close()
	return nil
}
