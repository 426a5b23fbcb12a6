package driver

import (
	"context"

	"github.com/soundprediction/personaforge/pkg/types"
)

// Provider identifies a graph store backend.
type Provider string

const (
	ProviderMemory Provider = "memory"
	ProviderNeo4j  Provider = "neo4j"
	ProviderScript Provider = "script"
)

// GraphStore is the persistence contract: typed nodes and edges plus a vector
// index over text-chunk embeddings. All mutations are idempotent; upserts
// merge by the node's natural key and re-writing a chunk vector overwrites
// it in place.
type GraphStore interface {
	// UpsertNode creates the node or merges props onto the existing one
	// (last-writer-wins per property).
	UpsertNode(ctx context.Context, label types.NodeLabel, key string, props map[string]any) error

	// GetNode returns the node or types.ErrNotFound.
	GetNode(ctx context.Context, label types.NodeLabel, key string) (*types.Node, error)

	// ReplaceEdges atomically swaps the full set of kind-edges leaving from.
	// A concurrent reader observes the old set or the new set, never a mix.
	// Target taxonomy nodes are merge-created as needed.
	ReplaceEdges(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edges []types.EdgeSpec) error

	// AddEdge unions one edge into the set of kind-edges leaving from,
	// leaving the rest of the set alone. Re-adding an existing edge merges
	// its props. Concurrent additions to the same source node all survive.
	// The target node is merge-created as needed.
	AddEdge(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edge types.EdgeSpec) error

	// EdgesFrom returns every kind-edge leaving from, with edge props.
	EdgesFrom(ctx context.Context, from types.NodeRef, kind types.EdgeKind) ([]types.Edge, error)

	// Traverse follows kind-edges from ref in the given direction and
	// returns the nodes on the far end.
	Traverse(ctx context.Context, ref types.NodeRef, kind types.EdgeKind, dir types.Direction) ([]types.NodeRef, error)

	// UpsertChunkVector stores (or overwrites) the embedding for a chunk.
	UpsertChunkVector(ctx context.Context, chunkID string, vector []float32) error

	// VectorQuery returns the k most cosine-similar chunks, score
	// descending, ties broken by chunk id ascending.
	VectorQuery(ctx context.Context, vector []float32, k int) ([]types.ChunkHit, error)

	// CreateIndices sets up key constraints and the vector index.
	CreateIndices(ctx context.Context) error

	// Close releases the underlying connections.
	Close(ctx context.Context) error

	// Provider reports which backend this store is.
	Provider() Provider
}
