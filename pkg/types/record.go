package types

// EmotionAnnotation is one emotion called out by the assessment producer.
type EmotionAnnotation struct {
	Name string `json:"name"`
	EmotionAttrs
}

// ScoredAnnotation is one closed-vocabulary framework value with confidence.
type ScoredAnnotation struct {
	Value string `json:"value"`
	ScoredAttrs
}

// FrameworkAnnotations holds every framework category extracted from one
// assessment. Categories the producer did not score are empty/nil and are
// simply skipped downstream.
type FrameworkAnnotations struct {
	Emotions    []EmotionAnnotation `json:"emotions,omitempty"`
	Distortions []ScoredAnnotation  `json:"distortions,omitempty"`
	Attachments []ScoredAnnotation  `json:"attachments,omitempty"`
	Schemas     []ScoredAnnotation  `json:"schemas,omitempty"`
	Defenses    []ScoredAnnotation  `json:"defenses,omitempty"`
	Stages      []ScoredAnnotation  `json:"stages,omitempty"`
	BigFive     *BigFiveAttrs       `json:"big_five,omitempty"`
}

// Empty reports whether no category carries any annotation.
func (f *FrameworkAnnotations) Empty() bool {
	if f == nil {
		return true
	}
	return len(f.Emotions) == 0 && len(f.Distortions) == 0 &&
		len(f.Attachments) == 0 && len(f.Schemas) == 0 &&
		len(f.Defenses) == 0 && len(f.Stages) == 0 && f.BigFive == nil
}

// AnalysisRecord is one parsed master-file entry: a therapist question, the
// client answer, the four SOAP sections, and the framework annotations pulled
// out of the assessment.
type AnalysisRecord struct {
	QAID       string `json:"qa_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Subjective string `json:"subjective_analysis"`
	Objective  string `json:"objective_analysis"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`

	Frameworks FrameworkAnnotations `json:"frameworks"`
}

// RecordStatus is the per-record outcome inside a batch result.
type RecordStatus struct {
	QAID          string `json:"qa_id,omitempty"`
	EntryIndex    int    `json:"entry_index"`
	ChunksCreated int    `json:"chunks_created"`
	ChunksSkipped int    `json:"chunks_skipped"`
	Skipped       bool   `json:"skipped,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BatchResult accumulates the outcome of ingesting one master file. A single
// malformed entry never fails the batch; it shows up in Errors and in its
// per-record status.
type BatchResult struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Errors     int            `json:"errors"`
	Results    []RecordStatus `json:"results"`
}
