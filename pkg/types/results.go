package types

// QAPairContext is the structured psychological context recovered for one QA
// pair by graph traversal: every framework edge with its attributes, plus the
// SOAP fields stored on the node itself.
type QAPairContext struct {
	QAID       string `json:"qa_id"`
	Question   string `json:"question,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Subjective string `json:"subjective_analysis,omitempty"`
	Objective  string `json:"objective_analysis,omitempty"`
	Assessment string `json:"assessment,omitempty"`
	Plan       string `json:"plan,omitempty"`

	Emotions    []EmotionAnnotation `json:"emotions,omitempty"`
	Distortions []ScoredAnnotation  `json:"distortions,omitempty"`
	Attachments []ScoredAnnotation  `json:"attachments,omitempty"`
	Schemas     []ScoredAnnotation  `json:"schemas,omitempty"`
	Defenses    []ScoredAnnotation  `json:"defenses,omitempty"`
	Stages      []ScoredAnnotation  `json:"stages,omitempty"`
	BigFive     *BigFiveAttrs       `json:"big_five,omitempty"`
}

// SearchResult is one ranked hybrid-retrieval hit.
type SearchResult struct {
	ChunkID   string        `json:"chunk_id"`
	ChunkText string        `json:"chunk_text"`
	Score     float64       `json:"score"`
	SessionID string        `json:"session_id,omitempty"`
	QAPair    QAPairContext `json:"qa_pair"`
}

// SearchResults is the full response for one retrieval query, ordered by
// vector score descending with chunk-id ties broken lexically.
type SearchResults struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// CategoryCount is one taxonomy value with its occurrence count across a
// session. Valence/arousal means are only populated for emotions.
type CategoryCount struct {
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	AvgValence *float64 `json:"avg_valence,omitempty"`
	AvgArousal *float64 `json:"avg_arousal,omitempty"`
}

// TraitMean is the session mean for one Big Five trait with its
// High/Moderate/Low band.
type TraitMean struct {
	Trait string  `json:"trait"`
	Mean  float64 `json:"mean"`
	Band  string  `json:"band"`
}

// SessionStatistics aggregates framework occurrences across every QA pair in
// one session.
type SessionStatistics struct {
	SessionID    string `json:"session_id"`
	Found        bool   `json:"found"`
	TotalQAPairs int    `json:"total_qa_pairs"`

	TopEmotions    []CategoryCount `json:"top_emotions,omitempty"`
	TopDistortions []CategoryCount `json:"top_distortions,omitempty"`
	TopSchemas     []CategoryCount `json:"top_schemas,omitempty"`
	TopDefenses    []CategoryCount `json:"top_defenses,omitempty"`
	TopStages      []CategoryCount `json:"top_stages,omitempty"`
	// Attachment styles are few enough that the full list is reported.
	AttachmentStyles []CategoryCount `json:"attachment_styles,omitempty"`

	BigFive []TraitMean `json:"big_five,omitempty"`
}

// ExtremeValue is one top-k entry from an extreme-value query.
type ExtremeValue struct {
	QAID       string  `json:"qa_id"`
	Name       string  `json:"name,omitempty"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	SampleText string  `json:"sample_text,omitempty"`
}

// ExtremeValues is the response for one extreme-value query, ordered by
// property value descending.
type ExtremeValues struct {
	Property  string         `json:"property"`
	SessionID string         `json:"session_id"`
	Found     bool           `json:"found"`
	Results   []ExtremeValue `json:"results"`
}

// QAPairDetails is the complete record for one QA pair: context plus every
// chunk text, in chunk-id order.
type QAPairDetails struct {
	Found  bool          `json:"found"`
	QAPair QAPairContext `json:"qa_pair"`
	Chunks []string      `json:"chunks,omitempty"`
}

// PersonalitySummary reports the distinct framework values seen across a
// session for one focus area, plus banded Big Five means when requested.
type PersonalitySummary struct {
	SessionID string `json:"session_id"`
	Focus     string `json:"focus"`
	Found     bool   `json:"found"`

	Emotions    []string    `json:"emotions,omitempty"`
	Distortions []string    `json:"distortions,omitempty"`
	Schemas     []string    `json:"schemas,omitempty"`
	Attachments []string    `json:"attachments,omitempty"`
	Defenses    []string    `json:"defenses,omitempty"`
	BigFive     []TraitMean `json:"big_five,omitempty"`
}

// SectionText is one SOAP section pulled from a QA pair, used by the
// session-wide plan and subjective digests.
type SectionText struct {
	QAID     string `json:"qa_id"`
	Question string `json:"question,omitempty"`
	Text     string `json:"text"`
}

// ClientHistory is the background/diagnosis text attached to one client,
// sorted lexically. Found is false when the client has no history on record.
type ClientHistory struct {
	ClientID string   `json:"client_id"`
	Found    bool     `json:"found"`
	History  []string `json:"history,omitempty"`
}

// SessionSections is the session-wide digest of one SOAP section, in qa-id
// order. Found mirrors the other session queries: false means the session
// node does not exist.
type SessionSections struct {
	SessionID string        `json:"session_id"`
	Section   string        `json:"section"`
	Found     bool          `json:"found"`
	Sections  []SectionText `json:"sections,omitempty"`
}
