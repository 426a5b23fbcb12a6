package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// ClinicalContext carries the SOAP analysis fields that get appended to every
// chunk of a QA pair, so the embedding captures the clinical reading of the
// answer and not just its surface text.
type ClinicalContext struct {
	Subjective string
	Objective  string
	Assessment string
	Plan       string
}

// Suffix renders the context fields as the chunk suffix. Empty fields are
// skipped; an entirely empty context renders as "".
func (c ClinicalContext) Suffix() string {
	var b strings.Builder
	for _, f := range []struct{ name, text string }{
		{"subjective", c.Subjective},
		{"objective", c.Objective},
		{"assessment", c.Assessment},
		{"plan", c.Plan},
	} {
		if f.text != "" {
			fmt.Fprintf(&b, " Clinical %s: %s.", f.name, f.text)
		}
	}
	return b.String()
}

// Chunk is one embeddable slice of a QA pair's answer.
type Chunk struct {
	ID        string
	SessionID string
	QAID      string
	Index     int
	Text      string
}

// ID returns the deterministic chunk id for a QA pair's index-th chunk.
// Indices start at 1.
func ID(sessionID, qaID string, index int) string {
	return fmt.Sprintf("%s.%s.c%d", sessionID, qaID, index)
}

// SplitSentences cuts text on sentence-ending punctuation runs and drops
// empty pieces.
func SplitSentences(text string) []string {
	var out []string
	for _, s := range sentenceEnd.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Split groups the answer's sentences into one to three chunks. Up to two
// sentences stay whole; three or four split at the sentence midpoint; longer
// answers split into three contiguous groups with the remainder in the last.
// Every chunk gets the same clinical-context suffix. Identical input always
// yields identical chunk ids and text.
func Split(sessionID, qaID, answer string, clinical ClinicalContext) []Chunk {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	suffix := clinical.Suffix()
	sentences := SplitSentences(answer)

	build := func(index int, text string) Chunk {
		return Chunk{
			ID:        ID(sessionID, qaID, index),
			SessionID: sessionID,
			QAID:      qaID,
			Index:     index,
			Text:      text,
		}
	}

	switch {
	case len(sentences) <= 2:
		return []Chunk{build(1, answer+suffix)}

	case len(sentences) <= 4:
		mid := len(sentences) / 2
		return []Chunk{
			build(1, joinSentences(sentences[:mid])+suffix),
			build(2, joinSentences(sentences[mid:])+suffix),
		}

	default:
		size := len(sentences) / 3
		var out []Chunk
		for i := 0; i < 3; i++ {
			start := i * size
			end := start + size
			if i == 2 {
				end = len(sentences)
			}
			out = append(out, build(i+1, joinSentences(sentences[start:end])+suffix))
		}
		return out
	}
}

func joinSentences(sentences []string) string {
	return strings.Join(sentences, ". ") + "."
}
