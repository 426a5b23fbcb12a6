package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/personaforge/pkg/chunker"
	"github.com/soundprediction/personaforge/pkg/driver"
	"github.com/soundprediction/personaforge/pkg/schema"
	"github.com/soundprediction/personaforge/pkg/types"
)

func emotion(name string, valence, arousal, confidence float64) types.EmotionAnnotation {
	return types.EmotionAnnotation{
		Name:         name,
		EmotionAttrs: types.EmotionAttrs{Valence: valence, Arousal: arousal, Confidence: confidence},
	}
}

// seedStatsGraph builds session_001 with a known distribution:
// Joy x3 at (0.8, 0.6) and Sad x1 at (-0.6, 0.3), plus distortions and a Big
// Five edge on every QA pair.
func seedStatsGraph(t *testing.T, store driver.GraphStore) {
	t.Helper()
	ctx := context.Background()
	b := schema.NewBuilder(store, nil)
	require.NoError(t, b.EnsureClientSession(ctx, "client_001", "session_001"))

	for i := 1; i <= 4; i++ {
		rec := types.AnalysisRecord{
			QAID:   fmt.Sprintf("qa_pair_%03d", i),
			Answer: fmt.Sprintf("Answer number %d.", i),
			Plan:   fmt.Sprintf("Plan %d", i),
			Frameworks: types.FrameworkAnnotations{
				BigFive: &types.BigFiveAttrs{
					Openness: 0.8, Conscientiousness: 0.5, Extraversion: 0.2,
					Agreeableness: 0.6, Neuroticism: 0.4, Confidence: 0.9,
				},
			},
		}
		if i <= 3 {
			rec.Frameworks.Emotions = []types.EmotionAnnotation{emotion("Joy", 0.8, 0.6, 0.9)}
			rec.Frameworks.Distortions = []types.ScoredAnnotation{
				{Value: "catastrophizing", ScoredAttrs: types.ScoredAttrs{Confidence: 0.7}},
			}
		} else {
			rec.Frameworks.Emotions = []types.EmotionAnnotation{emotion("Sad", -0.6, 0.3, 0.8)}
			rec.Frameworks.Attachments = []types.ScoredAnnotation{
				{Value: "anxious_preoccupied", ScoredAttrs: types.ScoredAttrs{Confidence: 0.6}},
			}
		}
		require.NoError(t, b.ApplyRecord(ctx, "session_001", rec))

		chunks := chunker.Split("session_001", rec.QAID, rec.Answer, chunker.ClinicalContext{})
		require.NoError(t, b.ApplyChunks(ctx, rec.QAID, chunks))
	}
}

func TestSessionStatistics(t *testing.T) {
	store := driver.NewMemoryStore()
	seedStatsGraph(t, store)
	e := NewEngine(store, nil)

	stats, err := e.SessionStatistics(context.Background(), "session_001")
	require.NoError(t, err)
	require.True(t, stats.Found)
	assert.Equal(t, 4, stats.TotalQAPairs)

	require.Len(t, stats.TopEmotions, 2)
	joy := stats.TopEmotions[0]
	assert.Equal(t, "Joy", joy.Name)
	assert.Equal(t, 3, joy.Count)
	require.NotNil(t, joy.AvgValence)
	assert.InDelta(t, 0.8, *joy.AvgValence, 1e-9)
	assert.InDelta(t, 0.6, *joy.AvgArousal, 1e-9)

	sad := stats.TopEmotions[1]
	assert.Equal(t, "Sad", sad.Name)
	assert.Equal(t, 1, sad.Count)
	assert.InDelta(t, -0.6, *sad.AvgValence, 1e-9)

	require.Len(t, stats.TopDistortions, 1)
	assert.Equal(t, "catastrophizing", stats.TopDistortions[0].Name)
	assert.Equal(t, 3, stats.TopDistortions[0].Count)

	require.Len(t, stats.AttachmentStyles, 1)
	assert.Equal(t, "anxious_preoccupied", stats.AttachmentStyles[0].Name)
}

func TestSessionStatisticsBigFiveBands(t *testing.T) {
	store := driver.NewMemoryStore()
	seedStatsGraph(t, store)
	e := NewEngine(store, nil)

	stats, err := e.SessionStatistics(context.Background(), "session_001")
	require.NoError(t, err)
	require.Len(t, stats.BigFive, 5)

	byTrait := map[string]types.TraitMean{}
	for _, tm := range stats.BigFive {
		byTrait[tm.Trait] = tm
	}
	assert.InDelta(t, 0.8, byTrait["openness"].Mean, 1e-9)
	assert.Equal(t, "High", byTrait["openness"].Band)
	assert.Equal(t, "Moderate", byTrait["conscientiousness"].Band)
	assert.Equal(t, "Low", byTrait["extraversion"].Band)
	assert.Equal(t, "Moderate", byTrait["neuroticism"].Band)
}

func TestSessionStatisticsTopFive(t *testing.T) {
	ctx := context.Background()
	store := driver.NewMemoryStore()
	b := schema.NewBuilder(store, nil)
	require.NoError(t, b.EnsureClientSession(ctx, "client_001", "session_001"))

	// seven distinct defenses, one with a higher count
	names := []string{"denial", "projection", "rationalization", "intellectualization",
		"displacement", "sublimation", "repression"}
	for i, name := range names {
		rec := types.AnalysisRecord{
			QAID: fmt.Sprintf("qa_pair_%03d", i+1),
			Frameworks: types.FrameworkAnnotations{
				Defenses: []types.ScoredAnnotation{
					{Value: name, ScoredAttrs: types.ScoredAttrs{Confidence: 0.5}},
				},
			},
		}
		require.NoError(t, b.ApplyRecord(ctx, "session_001", rec))
	}
	extra := types.AnalysisRecord{
		QAID: "qa_pair_100",
		Frameworks: types.FrameworkAnnotations{
			Defenses: []types.ScoredAnnotation{
				{Value: "denial", ScoredAttrs: types.ScoredAttrs{Confidence: 0.5}},
			},
		},
	}
	require.NoError(t, b.ApplyRecord(ctx, "session_001", extra))

	e := NewEngine(store, nil)
	stats, err := e.SessionStatistics(ctx, "session_001")
	require.NoError(t, err)
	require.Len(t, stats.TopDefenses, TopN)
	assert.Equal(t, "denial", stats.TopDefenses[0].Name)
	assert.Equal(t, 2, stats.TopDefenses[0].Count)
}

func TestSessionStatisticsUnknownSession(t *testing.T) {
	e := NewEngine(driver.NewMemoryStore(), nil)

	stats, err := e.SessionStatistics(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, stats.Found)
	assert.Zero(t, stats.TotalQAPairs)
	assert.Empty(t, stats.TopEmotions)
}

func TestExtremesValenceOrdering(t *testing.T) {
	ctx := context.Background()
	store := driver.NewMemoryStore()
	b := schema.NewBuilder(store, nil)
	require.NoError(t, b.EnsureClientSession(ctx, "client_001", "session_001"))

	values := []float64{0.9, -0.5, 0.3}
	for i, v := range values {
		rec := types.AnalysisRecord{
			QAID:   fmt.Sprintf("qa_pair_%03d", i+1),
			Answer: "Sample answer.",
			Frameworks: types.FrameworkAnnotations{
				Emotions: []types.EmotionAnnotation{emotion("E", v, 0.5, 0.8)},
			},
		}
		require.NoError(t, b.ApplyRecord(ctx, "session_001", rec))
		chunks := chunker.Split("session_001", rec.QAID, rec.Answer, chunker.ClinicalContext{})
		require.NoError(t, b.ApplyChunks(ctx, rec.QAID, chunks))
	}

	e := NewEngine(store, nil)
	extremes, err := e.Extremes(ctx, "session_001", PropertyEmotionValence, 2)
	require.NoError(t, err)
	require.True(t, extremes.Found)
	require.Len(t, extremes.Results, 2)
	assert.InDelta(t, 0.9, extremes.Results[0].Value, 1e-9)
	assert.InDelta(t, 0.3, extremes.Results[1].Value, 1e-9)
	assert.Equal(t, "qa_pair_001", extremes.Results[0].QAID)
	assert.Equal(t, "Sample answer.", extremes.Results[0].SampleText)
}

func TestExtremesBigFiveTrait(t *testing.T) {
	store := driver.NewMemoryStore()
	seedStatsGraph(t, store)
	e := NewEngine(store, nil)

	extremes, err := e.Extremes(context.Background(), "session_001", ExtremeProperty("neuroticism"), 2)
	require.NoError(t, err)
	require.Len(t, extremes.Results, 2)
	assert.InDelta(t, 0.4, extremes.Results[0].Value, 1e-9)
	assert.Empty(t, extremes.Results[0].Name)
	// equal values tie-break on qa id ascending
	assert.Equal(t, "qa_pair_001", extremes.Results[0].QAID)
	assert.Equal(t, "qa_pair_002", extremes.Results[1].QAID)
}

func TestExtremesUnknownProperty(t *testing.T) {
	e := NewEngine(driver.NewMemoryStore(), nil)
	_, err := e.Extremes(context.Background(), "session_001", ExtremeProperty("shoe_size"), 3)
	assert.True(t, errors.Is(err, types.ErrUnknownProperty))
}

func TestExtremesUnknownSession(t *testing.T) {
	e := NewEngine(driver.NewMemoryStore(), nil)
	extremes, err := e.Extremes(context.Background(), "ghost", PropertyEmotionArousal, 3)
	require.NoError(t, err)
	assert.False(t, extremes.Found)
	assert.Empty(t, extremes.Results)
}

func TestPersonalitySummaryFocus(t *testing.T) {
	store := driver.NewMemoryStore()
	seedStatsGraph(t, store)
	e := NewEngine(store, nil)
	ctx := context.Background()

	overall, err := e.PersonalitySummary(ctx, "session_001", FocusOverall)
	require.NoError(t, err)
	require.True(t, overall.Found)
	assert.Equal(t, []string{"Joy", "Sad"}, overall.Emotions)
	assert.Equal(t, []string{"catastrophizing"}, overall.Distortions)
	assert.Equal(t, []string{"anxious_preoccupied"}, overall.Attachments)
	assert.Len(t, overall.BigFive, 5)

	emotionsOnly, err := e.PersonalitySummary(ctx, "session_001", FocusEmotions)
	require.NoError(t, err)
	assert.NotEmpty(t, emotionsOnly.Emotions)
	assert.Empty(t, emotionsOnly.Distortions)
	assert.Empty(t, emotionsOnly.BigFive)

	// unknown focus falls back to overall
	fallback, err := e.PersonalitySummary(ctx, "session_001", "everything")
	require.NoError(t, err)
	assert.Equal(t, FocusOverall, fallback.Focus)
}

func TestSessionPlans(t *testing.T) {
	store := driver.NewMemoryStore()
	seedStatsGraph(t, store)
	e := NewEngine(store, nil)

	plans, err := e.SessionPlans(context.Background(), "session_001")
	require.NoError(t, err)
	require.True(t, plans.Found)
	assert.Equal(t, "plan", plans.Section)
	require.Len(t, plans.Sections, 4)
	assert.Equal(t, "qa_pair_001", plans.Sections[0].QAID)
	assert.Equal(t, "Plan 1", plans.Sections[0].Text)
	assert.Equal(t, "Plan 4", plans.Sections[3].Text)
}

func TestSessionSectionsUnknownSession(t *testing.T) {
	e := NewEngine(driver.NewMemoryStore(), nil)

	// an unknown session answers Found=false, same as the other session queries
	plans, err := e.SessionPlans(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, plans.Found)
	assert.Empty(t, plans.Sections)

	subjectives, err := e.SessionSubjectives(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, subjectives.Found)
	assert.Empty(t, subjectives.Sections)
}
