package embedder

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/soundprediction/personaforge/pkg/types"
)

// FakeClient is a deterministic in-process embedder for tests and offline
// runs. Identical text always embeds to the identical unit vector, and
// distinct texts almost always differ, which is enough for exercising the
// vector index without a model.
type FakeClient struct {
	dims int

	// Fixed, when set, overrides the hash embedding per exact text.
	Fixed map[string][]float32

	// Fail makes every call return ErrEmbeddingFailure.
	Fail bool
}

// NewFakeClient creates a fake embedder of the given dimension.
func NewFakeClient(dims int) *FakeClient {
	if dims <= 0 {
		dims = 8
	}
	return &FakeClient{dims: dims}
}

// Embed implements Client.
func (f *FakeClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.Fail {
		return nil, types.ErrEmbeddingFailure
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

// EmbedSingle implements Client.
func (f *FakeClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if f.Fail {
		return nil, types.ErrEmbeddingFailure
	}
	return f.vector(text), nil
}

// Dimensions implements Client.
func (f *FakeClient) Dimensions() int { return f.dims }

// Close implements Client.
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) vector(text string) []float32 {
	if v, ok := f.Fixed[text]; ok {
		return v
	}
	v := make([]float32, f.dims)
	h := fnv.New64a()
	var norm float64
	for i := range v {
		h.Write([]byte(text))
		v[i] = float32(h.Sum64()%2000)/1000 - 1
		norm += float64(v[i]) * float64(v[i])
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}
