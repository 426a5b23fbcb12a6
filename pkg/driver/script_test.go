package driver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/personaforge/pkg/types"
)

func TestScriptWriterUpsertNode(t *testing.T) {
	ctx := context.Background()
	w := NewScriptWriter()

	require.NoError(t, w.UpsertNode(ctx, types.LabelQAPair, "qa_001", map[string]any{
		"question": "How was it?",
		"answer":   "It wasn't great.",
	}))

	script := w.Script()
	assert.Contains(t, script, "MERGE (n:QA_Pair {id: 'qa_001'})")
	assert.Contains(t, script, `answer: 'It wasn\'t great.'`)
	assert.Contains(t, script, "question: 'How was it?'")
}

func TestScriptWriterReplaceEdges(t *testing.T) {
	ctx := context.Background()
	w := NewScriptWriter()

	qa := types.NodeRef{Label: types.LabelQAPair, Key: "qa_001"}
	require.NoError(t, w.ReplaceEdges(ctx, qa, types.EdgeRevealsEmotion, []types.EdgeSpec{
		{To: types.NodeRef{Label: types.LabelEmotion, Key: "Anxious"}, Props: map[string]any{"valence": -0.6, "arousal": 0.7, "confidence": 0.8}},
	}))

	script := w.Script()
	assert.Contains(t, script, "OPTIONAL MATCH (a)-[r:REVEALS_EMOTION]->()\nDELETE r;")
	assert.Contains(t, script, "MERGE (b:Emotion {name: edge.key})")
	assert.Contains(t, script, "CREATE (a)-[r:REVEALS_EMOTION]->(b)")
	assert.Contains(t, script, "{arousal: 0.7, confidence: 0.8, valence: -0.6}")
}

func TestScriptWriterAddEdge(t *testing.T) {
	ctx := context.Background()
	w := NewScriptWriter()

	session := types.NodeRef{Label: types.LabelSession, Key: "session_001"}
	require.NoError(t, w.AddEdge(ctx, session, types.EdgeIncludes,
		types.EdgeSpec{To: types.NodeRef{Label: types.LabelQAPair, Key: "qa_pair_001"}}))
	require.NoError(t, w.AddEdge(ctx, session, types.EdgeIncludes,
		types.EdgeSpec{To: types.NodeRef{Label: types.LabelQAPair, Key: "qa_pair_002"}}))

	script := w.Script()
	assert.Contains(t, script, "MERGE (b:QA_Pair {id: 'qa_pair_001'})")
	assert.Contains(t, script, "MERGE (b:QA_Pair {id: 'qa_pair_002'})")
	assert.Contains(t, script, "MERGE (a)-[r:INCLUDES]->(b)")
	// replaying the script keeps the first link when the second is written
	assert.NotContains(t, script, "DELETE")
}

func TestScriptWriterAddEdgeProps(t *testing.T) {
	ctx := context.Background()
	w := NewScriptWriter()

	client := types.NodeRef{Label: types.LabelClient, Key: "client_001"}
	require.NoError(t, w.AddEdge(ctx, client, types.EdgeParticipatedIn, types.EdgeSpec{
		To:    types.NodeRef{Label: types.LabelSession, Key: "session_001"},
		Props: map[string]any{"since": "2026-01-05"},
	}))

	script := w.Script()
	assert.Contains(t, script, "SET r += {since: '2026-01-05'}")
}

func TestScriptWriterChunkVector(t *testing.T) {
	ctx := context.Background()
	w := NewScriptWriter()

	require.NoError(t, w.UpsertChunkVector(ctx, "s001.qa_001.c1", []float32{0.5, -0.25}))
	script := w.Script()
	assert.Contains(t, script, "MERGE (c:TextChunk {id: 's001.qa_001.c1'})")
	assert.Contains(t, script, "SET c.embedding = [0.5, -0.25];")
}

func TestScriptWriterStatementOrder(t *testing.T) {
	ctx := context.Background()
	w := NewScriptWriter()

	require.NoError(t, w.UpsertNode(ctx, types.LabelSession, "session_001", nil))
	require.NoError(t, w.UpsertNode(ctx, types.LabelQAPair, "qa_001", nil))
	require.Equal(t, 2, w.Len())

	script := w.Script()
	assert.Less(t, strings.Index(script, "Session"), strings.Index(script, "QA_Pair"))
}

func TestScriptWriterReads(t *testing.T) {
	ctx := context.Background()
	w := NewScriptWriter()

	_, err := w.GetNode(ctx, types.LabelSession, "x")
	assert.ErrorIs(t, err, types.ErrNotFound)

	hits, err := w.VectorQuery(ctx, []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, ProviderScript, w.Provider())
}
