package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameworksEmotions(t *testing.T) {
	in := NewIngestor(nil)

	objective := "Instrument output (valence and arousal): " +
		"Anxious (valence -0.6, arousal 0.7), confidence 0.8; " +
		"Sad (valence -0.8, arousal 0.3), confidence 0.9."
	fw := in.ParseFrameworks(objective, "")

	require.Len(t, fw.Emotions, 2)
	assert.Equal(t, "Anxious", fw.Emotions[0].Name)
	assert.InDelta(t, -0.6, fw.Emotions[0].Valence, 1e-9)
	assert.InDelta(t, 0.7, fw.Emotions[0].Arousal, 1e-9)
	assert.InDelta(t, 0.8, fw.Emotions[0].Confidence, 1e-9)
	assert.Equal(t, "Sad", fw.Emotions[1].Name)
	assert.InDelta(t, 0.9, fw.Emotions[1].Confidence, 1e-9)
}

func TestParseFrameworksScoredCategories(t *testing.T) {
	in := NewIngestor(nil)

	assessment := "Cognitive distortions: catastrophizing, confidence 0.7; " +
		"mind_reading, confidence 0.5. " +
		"Attachment style: anxious_preoccupied, confidence 0.6. " +
		"Defense mechanisms: intellectualization, confidence 0.4. " +
		"Schema therapy: abandonment, confidence 0.8. " +
		"Erikson's psychosocial development: intimacy vs isolation, confidence 0.7."
	fw := in.ParseFrameworks("", assessment)

	require.Len(t, fw.Distortions, 2)
	assert.Equal(t, "catastrophizing", fw.Distortions[0].Value)
	assert.InDelta(t, 0.7, fw.Distortions[0].Confidence, 1e-9)
	assert.Equal(t, "mind_reading", fw.Distortions[1].Value)

	require.Len(t, fw.Attachments, 1)
	assert.Equal(t, "anxious_preoccupied", fw.Attachments[0].Value)

	require.Len(t, fw.Defenses, 1)
	assert.Equal(t, "intellectualization", fw.Defenses[0].Value)

	require.Len(t, fw.Schemas, 1)
	assert.Equal(t, "abandonment", fw.Schemas[0].Value)

	require.Len(t, fw.Stages, 1)
	assert.Equal(t, "intimacy_vs_isolation", fw.Stages[0].Value)
	assert.InDelta(t, 0.7, fw.Stages[0].Confidence, 1e-9)
}

func TestParseFrameworksBigFive(t *testing.T) {
	in := NewIngestor(nil)

	assessment := "Big Five personality traits: Openness 0.6, Conscientiousness 0.4, " +
		"Extraversion 0.3, Agreeableness 0.7, Neuroticism 0.8, confidence 0.75."
	fw := in.ParseFrameworks("", assessment)

	require.NotNil(t, fw.BigFive)
	assert.InDelta(t, 0.6, fw.BigFive.Openness, 1e-9)
	assert.InDelta(t, 0.4, fw.BigFive.Conscientiousness, 1e-9)
	assert.InDelta(t, 0.3, fw.BigFive.Extraversion, 1e-9)
	assert.InDelta(t, 0.7, fw.BigFive.Agreeableness, 1e-9)
	assert.InDelta(t, 0.8, fw.BigFive.Neuroticism, 1e-9)
	assert.InDelta(t, 0.75, fw.BigFive.Confidence, 1e-9)
}

func TestParseFrameworksBigFiveShorthand(t *testing.T) {
	in := NewIngestor(nil)

	fw := in.ParseFrameworks("", "Big Five: O 0.5 C 0.5 E 0.5 A 0.5 N 0.5 conf 0.6")
	require.NotNil(t, fw.BigFive)
	assert.InDelta(t, 0.5, fw.BigFive.Openness, 1e-9)
	assert.InDelta(t, 0.6, fw.BigFive.Confidence, 1e-9)
}

func TestParseFrameworksBigFiveIncomplete(t *testing.T) {
	in := NewIngestor(nil)

	fw := in.ParseFrameworks("", "Big Five: Openness 0.5, Neuroticism 0.7, confidence 0.6")
	assert.Nil(t, fw.BigFive)
}

func TestParseFrameworksMissingCategories(t *testing.T) {
	in := NewIngestor(nil)

	fw := in.ParseFrameworks("", "Cognitive distortions: overgeneralization, confidence 0.4.")
	require.Len(t, fw.Distortions, 1)
	assert.Empty(t, fw.Emotions)
	assert.Empty(t, fw.Attachments)
	assert.Empty(t, fw.Schemas)
	assert.Nil(t, fw.BigFive)
}

func TestParseFrameworksNoneSkipped(t *testing.T) {
	in := NewIngestor(nil)

	fw := in.ParseFrameworks("", "Cognitive distortions: none identified. Defense mechanisms: denial, confidence 0.5.")
	assert.Empty(t, fw.Distortions)
	require.Len(t, fw.Defenses, 1)
	assert.Equal(t, "denial", fw.Defenses[0].Value)
}

func TestParseFrameworksClampsRanges(t *testing.T) {
	in := NewIngestor(nil)

	objective := "Emotions: Angry (valence -1.4, arousal 1.2), confidence 1.5"
	fw := in.ParseFrameworks(objective, "")
	require.Len(t, fw.Emotions, 1)
	assert.InDelta(t, -1.0, fw.Emotions[0].Valence, 1e-9)
	assert.InDelta(t, 1.0, fw.Emotions[0].Arousal, 1e-9)
	assert.InDelta(t, 1.0, fw.Emotions[0].Confidence, 1e-9)
}

func TestParseFrameworkJSON(t *testing.T) {
	in := NewIngestor(nil)

	// trailing comma and unquoted keys get repaired
	payload := `{distortions: [{"value": "catastrophizing", "confidence": 0.7},], "big_five": {"openness": 0.5, "conscientiousness": 0.5, "extraversion": 0.5, "agreeableness": 0.5, "neuroticism": 0.5, "confidence": 0.9}}`
	fw, err := in.ParseFrameworkJSON(payload)
	require.NoError(t, err)
	require.Len(t, fw.Distortions, 1)
	assert.Equal(t, "catastrophizing", fw.Distortions[0].Value)
	require.NotNil(t, fw.BigFive)
	assert.InDelta(t, 0.9, fw.BigFive.Confidence, 1e-9)
}

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Intimacy vs Isolation", "intimacy_vs_isolation"},
		{"Intimacy versus Isolation", "intimacy_vs_isolation"},
		{"Anxious-Preoccupied", "anxious_preoccupied"},
		{"Mind Reading", "mind_reading"},
		{"  catastrophizing  ", "catastrophizing"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, canonicalName(tc.in), tc.in)
	}
}
