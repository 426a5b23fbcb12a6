package personaforge_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/personaforge"
	"github.com/soundprediction/personaforge/pkg/checkpoint"
	"github.com/soundprediction/personaforge/pkg/driver"
	"github.com/soundprediction/personaforge/pkg/embedder"
	"github.com/soundprediction/personaforge/pkg/types"
)

const sep = "================================================================================\n"

func masterEntry(qaID, question, answer, body string) string {
	var b strings.Builder
	b.WriteString(sep)
	b.WriteString("ANALYSIS ENTRY\n")
	b.WriteString("QA ID: " + qaID + "\n\n")
	b.WriteString("Original Question: " + question + "\n\n")
	b.WriteString("Original Answer: " + answer + "\n\n")
	b.WriteString("Analysis\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	return b.String()
}

const analysisBody = `Subjective Analysis: Client reports ongoing tension with their mother.

Objective Analysis: Instrument output (valence and arousal):
Anxious (valence -0.6, arousal 0.7), confidence 0.8.

Assessment: Cognitive distortions: catastrophizing, confidence 0.7.
Attachment style: anxious_preoccupied, confidence 0.6.
Big Five: O 0.8, C 0.5, E 0.2, A 0.6, N 0.7, confidence 0.9.

Plan: Explore boundary-setting strategies next session.`

func masterFile() string {
	return masterEntry("qa_pair_001", "How was your week?",
		"Pretty rough. My mother called three times and we argued every time.",
		analysisBody) +
		masterEntry("qa_pair_002", "What happened after the call?",
			"I could not sleep. I kept replaying the argument in my head.",
			analysisBody)
}

func newTestClient(t *testing.T, config *personaforge.Config) (*personaforge.Client, *driver.MemoryStore) {
	t.Helper()
	store := driver.NewMemoryStore()
	client, err := personaforge.NewClient(store, embedder.NewFakeClient(8), config, nil)
	require.NoError(t, err)
	return client, store
}

func TestIngestAndQuery(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, nil)

	result, err := client.Ingest(ctx, masterFile())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Errors)
	for _, r := range result.Results {
		assert.Greater(t, r.ChunksCreated, 0)
		assert.Zero(t, r.ChunksSkipped)
	}

	details, err := client.QAPairDetails(ctx, "qa_pair_001")
	require.NoError(t, err)
	require.True(t, details.Found)
	assert.Equal(t, "How was your week?", details.QAPair.Question)
	require.NotEmpty(t, details.Chunks)
	assert.Contains(t, details.Chunks[0], "Clinical subjective:")
	require.Len(t, details.QAPair.Emotions, 1)
	assert.Equal(t, "Anxious", details.QAPair.Emotions[0].Name)
	require.NotNil(t, details.QAPair.BigFive)
	assert.InDelta(t, 0.8, details.QAPair.BigFive.Openness, 1e-9)

	hits, err := client.Search(ctx, "argument with mother", 2)
	require.NoError(t, err)
	assert.Equal(t, "argument with mother", hits.Query)
	require.NotEmpty(t, hits.Results)
	assert.LessOrEqual(t, len(hits.Results), 2)
	for _, hit := range hits.Results {
		assert.NotEmpty(t, hit.ChunkID)
		assert.NotEmpty(t, hit.ChunkText)
		assert.NotEmpty(t, hit.QAPair.QAID)
		assert.Equal(t, "session_001", hit.SessionID)
	}
}

func TestIngestStatistics(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, nil)

	_, err := client.Ingest(ctx, masterFile())
	require.NoError(t, err)

	stat, err := client.SessionStatistics(ctx, "session_001")
	require.NoError(t, err)
	require.True(t, stat.Found)
	assert.Equal(t, 2, stat.TotalQAPairs)
	require.Len(t, stat.TopEmotions, 1)
	assert.Equal(t, "Anxious", stat.TopEmotions[0].Name)
	assert.Equal(t, 2, stat.TopEmotions[0].Count)
	require.Len(t, stat.TopDistortions, 1)
	assert.Equal(t, "catastrophizing", stat.TopDistortions[0].Name)

	extremes, err := client.SessionExtremes(ctx, "session_001", "emotion_valence", 5)
	require.NoError(t, err)
	require.True(t, extremes.Found)
	require.Len(t, extremes.Results, 2)
	assert.InDelta(t, -0.6, extremes.Results[0].Value, 1e-9)
	assert.NotEmpty(t, extremes.Results[0].SampleText)

	_, err = client.SessionExtremes(ctx, "session_001", "shoe_size", 5)
	assert.ErrorIs(t, err, types.ErrUnknownProperty)

	summary, err := client.PersonalitySummary(ctx, "session_001", "attachment")
	require.NoError(t, err)
	require.True(t, summary.Found)
	assert.Equal(t, []string{"anxious_preoccupied"}, summary.Attachments)

	plans, err := client.SessionPlans(ctx, "session_001")
	require.NoError(t, err)
	require.True(t, plans.Found)
	require.Len(t, plans.Sections, 2)
	assert.Contains(t, plans.Sections[0].Text, "boundary-setting")

	ghostPlans, err := client.SessionPlans(ctx, "session_999")
	require.NoError(t, err)
	assert.False(t, ghostPlans.Found)
}

func TestIngestMalformedEntryDoesNotFailBatch(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, nil)

	content := masterFile() +
		sep + "ANALYSIS ENTRY\nQA ID: qa_pair_003\n\nOriginal Question: And then?\n"

	result, err := client.Ingest(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Errors)
}

func TestIngestEmptyInput(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, nil)

	_, err := client.Ingest(ctx, "   \n ")
	assert.ErrorIs(t, err, types.ErrEmptyInput)
}

func TestIngestWithLedgerSkipsCompleted(t *testing.T) {
	ctx := context.Background()
	ledger, err := checkpoint.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	client, _ := newTestClient(t, &personaforge.Config{Ledger: ledger})

	first, err := client.Ingest(ctx, masterFile())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Successful)

	second, err := client.Ingest(ctx, masterFile())
	require.NoError(t, err)
	for _, r := range second.Results {
		assert.True(t, r.Skipped)
	}
}

func TestIngestFiles(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "master_analysis.txt")
	require.NoError(t, os.WriteFile(path, []byte(masterFile()), 0644))

	result, err := client.IngestFiles(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Successful)

	_, err = client.IngestFiles(ctx)
	assert.ErrorIs(t, err, types.ErrEmptyInput)
}

func TestQAPairDetailsNotFound(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, nil)

	details, err := client.QAPairDetails(ctx, "qa_pair_missing")
	require.NoError(t, err)
	assert.False(t, details.Found)
}

func TestSetClientHistory(t *testing.T) {
	ctx := context.Background()
	client, store := newTestClient(t, nil)

	require.NoError(t, client.SetClientHistory(ctx, "Raised by a single parent; eldest of three."))

	refs, err := store.Traverse(ctx,
		types.NodeRef{Label: types.LabelClient, Key: "client_001"},
		types.EdgeHasHistory, types.DirectionOut)
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestClientHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t, nil)

	require.NoError(t, client.SetClientHistory(ctx, "Raised by a single parent; eldest of three."))
	require.NoError(t, client.SetClientHistory(ctx, "Prior episode of depression in college."))

	// empty client id reads the configured client
	history, err := client.ClientHistory(ctx, "")
	require.NoError(t, err)
	require.True(t, history.Found)
	assert.Equal(t, "client_001", history.ClientID)
	assert.Equal(t, []string{
		"Prior episode of depression in college.",
		"Raised by a single parent; eldest of three.",
	}, history.History)

	unknown, err := client.ClientHistory(ctx, "client_999")
	require.NoError(t, err)
	assert.False(t, unknown.Found)
	assert.Empty(t, unknown.History)
}
