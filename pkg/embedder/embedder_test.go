package embedder

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/personaforge/pkg/types"
)

func TestFakeClientDeterministic(t *testing.T) {
	f := NewFakeClient(16)
	ctx := context.Background()

	a1, err := f.EmbedSingle(ctx, "some chunk text")
	require.NoError(t, err)
	a2, err := f.EmbedSingle(ctx, "some chunk text")
	require.NoError(t, err)
	b, err := f.EmbedSingle(ctx, "different text")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Len(t, a1, 16)

	var norm float64
	for _, v := range a1 {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestFakeClientBatchOrder(t *testing.T) {
	f := NewFakeClient(8)
	ctx := context.Background()

	batch, err := f.Embed(ctx, []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	one, err := f.EmbedSingle(ctx, "one")
	require.NoError(t, err)
	two, err := f.EmbedSingle(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, one, batch[0])
	assert.Equal(t, two, batch[1])
}

func TestFakeClientFixedOverride(t *testing.T) {
	f := NewFakeClient(3)
	f.Fixed = map[string][]float32{"pinned": {1, 0, 0}}

	v, err := f.EmbedSingle(context.Background(), "pinned")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)
}

func TestFakeClientFailure(t *testing.T) {
	f := NewFakeClient(8)
	f.Fail = true

	_, err := f.Embed(context.Background(), []string{"x"})
	assert.True(t, errors.Is(err, types.ErrEmbeddingFailure))
	_, err = f.EmbedSingle(context.Background(), "x")
	assert.True(t, errors.Is(err, types.ErrEmbeddingFailure))
}

func TestCircuitBreakerPassThrough(t *testing.T) {
	inner := NewFakeClient(8)
	cb := NewCircuitBreakerClient(inner, CircuitBreakerConfig{
		MaxRequests:      1,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}, nil, "test")

	v, err := cb.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, v, 8)
	assert.Equal(t, 8, cb.Dimensions())
}

func TestCircuitBreakerTrips(t *testing.T) {
	inner := NewFakeClient(8)
	inner.Fail = true
	cb := NewCircuitBreakerClient(inner, CircuitBreakerConfig{
		MaxRequests:      1,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}, nil, "test")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := cb.Embed(ctx, []string{"x"})
		require.Error(t, err)
	}

	// breaker is open now; the failure no longer reaches the inner client
	inner.Fail = false
	_, err := cb.Embed(ctx, []string{"x"})
	assert.Error(t, err)
}
