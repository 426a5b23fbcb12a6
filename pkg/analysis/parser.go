package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/soundprediction/personaforge/pkg/types"
)

// parseState tracks where the line scanner is inside one master-file entry.
type parseState int

const (
	seekQAID parseState = iota
	seekQuestion
	seekAnswer
	seekSection
	inSubjective
	inObjective
	inAssessment
	inPlan
)

// entryDelimiter matches the 80-column '=' separator that opens each
// ANALYSIS ENTRY block. Older files doubled the separator line, so an
// optional second run is tolerated.
var entryDelimiter = regexp.MustCompile(`={80,}\r?\n(?:={80,}\r?\n)?ANALYSIS ENTRY`)

// EntryError records one master-file entry that failed to parse. The batch
// keeps going; the error surfaces in the ingestion result.
type EntryError struct {
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Ingestor parses master analysis files into structured records.
type Ingestor struct {
	logger *slog.Logger
}

// NewIngestor creates an analysis ingestor. A nil logger falls back to
// slog.Default().
func NewIngestor(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{logger: logger}
}

// Parse splits a master analysis file into records. Malformed entries are
// skipped and reported in the returned error slice; only an input with no
// usable entries at all is a hard error (types.ErrEmptyInput).
func (in *Ingestor) Parse(content string) ([]types.AnalysisRecord, []*EntryError, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, types.ErrEmptyInput
	}

	pieces := entryDelimiter.Split(content, -1)
	var records []types.AnalysisRecord
	var errs []*EntryError
	entryIndex := 0

	for _, piece := range pieces {
		if !strings.Contains(piece, "Analysis") {
			// Preamble before the first delimiter, or an entry missing its
			// Analysis marker entirely. The former is silently dropped.
			if strings.Contains(piece, "QA ID:") {
				entryIndex++
				errs = append(errs, &EntryError{Index: entryIndex, Err: fmt.Errorf("%w: no Analysis marker", types.ErrMalformedEntry)})
				in.logger.Warn("skipping malformed entry", "entry", entryIndex, "reason", "no Analysis marker")
			}
			continue
		}
		entryIndex++

		rec, err := in.parseEntry(piece)
		if err != nil {
			errs = append(errs, &EntryError{Index: entryIndex, Err: err})
			in.logger.Warn("skipping malformed entry", "entry", entryIndex, "error", err)
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 && len(errs) == 0 {
		return nil, nil, types.ErrEmptyInput
	}
	return records, errs, nil
}

// parseEntry runs the line-scanning state machine over one entry. A section
// header closes the previous section (its buffered lines joined with single
// spaces) and opens the next; end of entry closes the last open section.
func (in *Ingestor) parseEntry(entry string) (types.AnalysisRecord, error) {
	var rec types.AnalysisRecord
	state := seekQAID

	var answerBuf, sectionBuf []string

	closeSection := func(next parseState) {
		text := strings.Join(sectionBuf, " ")
		switch state {
		case inSubjective:
			rec.Subjective = text
		case inObjective:
			rec.Objective = text
		case inAssessment:
			rec.Assessment = text
		case inPlan:
			rec.Plan = text
		}
		sectionBuf = nil
		state = next
	}

	for _, raw := range strings.Split(entry, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "====") {
			continue
		}

		switch state {
		case seekQAID:
			if rest, ok := strings.CutPrefix(line, "QA ID:"); ok {
				rec.QAID = strings.TrimSpace(rest)
				state = seekQuestion
			}

		case seekQuestion:
			if rest, ok := strings.CutPrefix(line, "Original Question:"); ok {
				rec.Question = strings.TrimSpace(rest)
				state = seekAnswer
			}

		case seekAnswer:
			if rest, ok := strings.CutPrefix(line, "Original Answer:"); ok {
				if r := strings.TrimSpace(rest); r != "" {
					answerBuf = append(answerBuf, r)
				}
				state = seekSection
			} else if line != "" && rec.Question != "" {
				// Question text continued onto following lines.
				rec.Question += " " + line
			}

		case seekSection, inSubjective, inObjective, inAssessment, inPlan:
			switch {
			case line == "Analysis" || line == "Analysis:":
				closeSection(seekSection)
			case strings.HasPrefix(line, "Subjective Analysis:"):
				closeSection(inSubjective)
				if r := strings.TrimSpace(strings.TrimPrefix(line, "Subjective Analysis:")); r != "" {
					sectionBuf = append(sectionBuf, r)
				}
			case strings.HasPrefix(line, "Objective Analysis:"):
				closeSection(inObjective)
				if r := strings.TrimSpace(strings.TrimPrefix(line, "Objective Analysis:")); r != "" {
					sectionBuf = append(sectionBuf, r)
				}
			case strings.HasPrefix(line, "Assessment:"):
				closeSection(inAssessment)
				if r := strings.TrimSpace(strings.TrimPrefix(line, "Assessment:")); r != "" {
					sectionBuf = append(sectionBuf, r)
				}
			case strings.HasPrefix(line, "Plan:"):
				closeSection(inPlan)
				if r := strings.TrimSpace(strings.TrimPrefix(line, "Plan:")); r != "" {
					sectionBuf = append(sectionBuf, r)
				}
			case line == "":
				// blank lines inside a section are paragraph breaks; the
				// buffered text is joined with single spaces regardless
			case state == seekSection:
				// Lines between "Original Answer:" and "Analysis" belong to
				// the multi-line answer.
				answerBuf = append(answerBuf, line)
			default:
				sectionBuf = append(sectionBuf, line)
			}
		}
	}
	closeSection(seekSection)

	rec.Answer = strings.Join(answerBuf, " ")

	if rec.QAID == "" {
		return rec, fmt.Errorf("%w: missing QA ID", types.ErrMalformedEntry)
	}
	if rec.Subjective == "" && rec.Objective == "" && rec.Assessment == "" && rec.Plan == "" {
		return rec, fmt.Errorf("%w: no analysis sections", types.ErrMalformedEntry)
	}

	rec.Frameworks = in.ParseFrameworks(rec.Objective, rec.Assessment)
	if rec.Frameworks.Empty() {
		// Some producers emit a structured payload instead of prose headings.
		if payload := jsonBlock(rec.Assessment); payload != "" {
			fw, err := in.ParseFrameworkJSON(payload)
			if err != nil {
				in.logger.Warn("annotation payload unusable", "qa_id", rec.QAID, "error", err)
			} else {
				rec.Frameworks = fw
			}
		}
	}
	return rec, nil
}
