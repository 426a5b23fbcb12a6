package driver

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/soundprediction/personaforge/pkg/types"
	"github.com/soundprediction/personaforge/pkg/utils"
)

// edgeSetKey addresses the full set of same-kind edges leaving one node.
type edgeSetKey struct {
	from types.NodeRef
	kind types.EdgeKind
}

// MemoryStore is the embedded GraphStore: plain maps behind a RWMutex and a
// linear cosine scan for the vector index. It backs tests, the script
// pipeline, and small single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	nodes   map[types.NodeRef]*types.Node
	edges   map[edgeSetKey][]types.Edge
	vectors map[string][]float32

	// replaceLocks serializes ReplaceEdges cycles per source node so two
	// writers regenerating the same QA pair cannot interleave.
	replaceLocks sync.Map
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:   make(map[types.NodeRef]*types.Node),
		edges:   make(map[edgeSetKey][]types.Edge),
		vectors: make(map[string][]float32),
	}
}

// UpsertNode implements GraphStore.
func (m *MemoryStore) UpsertNode(ctx context.Context, label types.NodeLabel, key string, props map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref := types.NodeRef{Label: label, Key: key}
	now := time.Now()

	node, ok := m.nodes[ref]
	if !ok {
		node = &types.Node{
			Label:     label,
			Key:       key,
			Props:     map[string]any{label.KeyProperty(): key},
			CreatedAt: now,
		}
		m.nodes[ref] = node
	}
	for k, v := range props {
		node.Props[k] = v
	}
	node.UpdatedAt = now
	return nil
}

// GetNode implements GraphStore.
func (m *MemoryStore) GetNode(ctx context.Context, label types.NodeLabel, key string) (*types.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[types.NodeRef{Label: label, Key: key}]
	if !ok {
		return nil, types.ErrNotFound
	}

	out := &types.Node{
		Label:     node.Label,
		Key:       node.Key,
		Props:     make(map[string]any, len(node.Props)),
		CreatedAt: node.CreatedAt,
		UpdatedAt: node.UpdatedAt,
	}
	for k, v := range node.Props {
		out.Props[k] = v
	}
	return out, nil
}

// ReplaceEdges implements GraphStore. The per-node lock serializes competing
// replace cycles; the swap itself happens in one critical section, so readers
// see the old set or the new set and nothing in between.
func (m *MemoryStore) ReplaceEdges(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edges []types.EdgeSpec) error {
	lockAny, _ := m.replaceLocks.LoadOrStore(from, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	next := make([]types.Edge, 0, len(edges))
	for _, spec := range edges {
		props := make(map[string]any, len(spec.Props))
		for k, v := range spec.Props {
			props[k] = v
		}
		next = append(next, types.Edge{Kind: kind, From: from, To: spec.To, Props: props})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[from]; !ok {
		return types.ErrNotFound
	}
	now := time.Now()
	for _, spec := range edges {
		if _, ok := m.nodes[spec.To]; !ok {
			m.nodes[spec.To] = &types.Node{
				Label:     spec.To.Label,
				Key:       spec.To.Key,
				Props:     map[string]any{spec.To.Label.KeyProperty(): spec.To.Key},
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
	}
	m.edges[edgeSetKey{from: from, kind: kind}] = next
	return nil
}

// AddEdge implements GraphStore. The union happens in one critical section,
// under the same per-node lock ReplaceEdges takes, so concurrent additions
// and replace cycles on one source node serialize instead of clobbering.
func (m *MemoryStore) AddEdge(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edge types.EdgeSpec) error {
	lockAny, _ := m.replaceLocks.LoadOrStore(from, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	props := make(map[string]any, len(edge.Props))
	for k, v := range edge.Props {
		props[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[from]; !ok {
		return types.ErrNotFound
	}
	now := time.Now()
	if _, ok := m.nodes[edge.To]; !ok {
		m.nodes[edge.To] = &types.Node{
			Label:     edge.To.Label,
			Key:       edge.To.Key,
			Props:     map[string]any{edge.To.Label.KeyProperty(): edge.To.Key},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	key := edgeSetKey{from: from, kind: kind}
	for i, e := range m.edges[key] {
		if e.To == edge.To {
			m.edges[key][i].Props = props
			return nil
		}
	}
	m.edges[key] = append(m.edges[key], types.Edge{Kind: kind, From: from, To: edge.To, Props: props})
	return nil
}

// EdgesFrom implements GraphStore.
func (m *MemoryStore) EdgesFrom(ctx context.Context, from types.NodeRef, kind types.EdgeKind) ([]types.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.edges[edgeSetKey{from: from, kind: kind}]
	out := make([]types.Edge, len(set))
	copy(out, set)
	return out, nil
}

// Traverse implements GraphStore.
func (m *MemoryStore) Traverse(ctx context.Context, ref types.NodeRef, kind types.EdgeKind, dir types.Direction) ([]types.NodeRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.NodeRef
	if dir == types.DirectionOut {
		for _, e := range m.edges[edgeSetKey{from: ref, kind: kind}] {
			out = append(out, e.To)
		}
		return out, nil
	}
	for key, set := range m.edges {
		if key.kind != kind {
			continue
		}
		for _, e := range set {
			if e.To == ref {
				out = append(out, e.From)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// UpsertChunkVector implements GraphStore.
func (m *MemoryStore) UpsertChunkVector(ctx context.Context, chunkID string, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]float32, len(vector))
	copy(v, vector)
	m.vectors[chunkID] = v
	return nil
}

// VectorQuery implements GraphStore. A linear cosine scan; fine at the scale
// an embedded store serves.
func (m *MemoryStore) VectorQuery(ctx context.Context, vector []float32, k int) ([]types.ChunkHit, error) {
	m.mu.RLock()
	scored := make([]utils.ScoredItem[string], 0, len(m.vectors))
	for id, v := range m.vectors {
		scored = append(scored, utils.ScoredItem[string]{
			Item:  id,
			Score: utils.CosineSimilarity(vector, v),
		})
	}
	m.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Item < scored[j].Item
	})
	if k > len(scored) {
		k = len(scored)
	}
	if k < 0 {
		k = 0
	}

	out := make([]types.ChunkHit, 0, k)
	for _, s := range scored[:k] {
		out = append(out, types.ChunkHit{ChunkID: s.Item, Score: s.Score})
	}
	return out, nil
}

// CreateIndices implements GraphStore. The map layout is the index.
func (m *MemoryStore) CreateIndices(ctx context.Context) error { return nil }

// Close implements GraphStore.
func (m *MemoryStore) Close(ctx context.Context) error { return nil }

// Provider implements GraphStore.
func (m *MemoryStore) Provider() Provider { return ProviderMemory }
