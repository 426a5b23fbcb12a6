package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/soundprediction/personaforge/pkg/types"
)

// The assessment producer reports each framework under a recognisable
// heading, with every scored value followed by a confidence. The extractor
// below cuts the joined assessment text into category segments and pulls the
// scored values out of each. Categories that never appear are simply absent
// from the result; values outside a closed vocabulary are kept and logged.

type categoryHeading struct {
	label   types.NodeLabel
	pattern *regexp.Regexp
}

// Heading spellings vary between producer versions ("Cognitive Distortions:",
// "Cognitive distortions", "Schema Therapy:"), so each category matches a
// family of spellings.
var headings = []categoryHeading{
	{types.LabelEmotion, regexp.MustCompile(`(?i)\b(?:valence[ -]and[ -]arousal|valence[ -]arousal|emotions?|instrument output)\s*[:(]`)},
	{types.LabelDistortion, regexp.MustCompile(`(?i)\bcognitive distortions?\s*[:(]?`)},
	{types.LabelEriksonStage, regexp.MustCompile(`(?i)\berikson(?:'s)?(?: developmental| psychosocial)?(?: stages?| development)?\s*[:(]?`)},
	{types.LabelAttachment, regexp.MustCompile(`(?i)\battachment(?: styles?)?\s*[:(]?`)},
	{types.LabelDefense, regexp.MustCompile(`(?i)\bdefense mechanisms?\s*[:(]?`)},
	{types.LabelSchema, regexp.MustCompile(`(?i)\bschema(?:s| therapy)?\s*[:(]?`)},
	{types.LabelBigFive, regexp.MustCompile(`(?i)\bbig five(?: personality traits?)?\s*(?:\([^)]*\))?\s*[:]?`)},
}

var (
	confidenceRe = regexp.MustCompile(`(?i)conf(?:idence)?\s*[:=]?\s*(-?\d+(?:\.\d+)?)`)
	// "Anxious (valence -0.6, arousal 0.7), confidence 0.8" and the terser
	// "anxious v -0.6 a 0.7 conf 0.8" both match.
	emotionRe = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z_ /–-]*?)\s*[\s(]v(?:alence)?\s*[:=]?\s*(-?\d+(?:\.\d+)?)\s*[,;]?\s*a(?:rousal)?\s*[:=]?\s*(-?\d+(?:\.\d+)?)\)?`)
	valueRe   = regexp.MustCompile(`(?i)^[\s,;.]*([A-Za-z][A-Za-z_ /–-]*[A-Za-z])`)
	clauseRe  = regexp.MustCompile(`;|\n|\.\s`)
	bigFiveRe = regexp.MustCompile(`(?i)\b(?:(openness|conscientiousness|extraversion|agreeableness|neuroticism)|([OCEAN]))\s*[:=]?\s*(-?\d+(?:\.\d+)?)`)
	noneRe    = regexp.MustCompile(`(?i)\bnone\b`)
)

// ParseFrameworks extracts framework annotations from the objective and
// assessment sections of one record. Emotions usually ride in the objective
// section's instrument output; everything else lives in the assessment.
func (in *Ingestor) ParseFrameworks(objective, assessment string) types.FrameworkAnnotations {
	var fw types.FrameworkAnnotations

	for _, seg := range splitCategories(objective + " " + assessment) {
		switch seg.label {
		case types.LabelEmotion:
			fw.Emotions = append(fw.Emotions, in.parseEmotions(seg.text)...)
		case types.LabelDistortion:
			fw.Distortions = append(fw.Distortions, in.parseScored(types.LabelDistortion, seg.text)...)
		case types.LabelAttachment:
			fw.Attachments = append(fw.Attachments, in.parseScored(types.LabelAttachment, seg.text)...)
		case types.LabelSchema:
			fw.Schemas = append(fw.Schemas, in.parseScored(types.LabelSchema, seg.text)...)
		case types.LabelDefense:
			fw.Defenses = append(fw.Defenses, in.parseScored(types.LabelDefense, seg.text)...)
		case types.LabelEriksonStage:
			fw.Stages = append(fw.Stages, in.parseScored(types.LabelEriksonStage, seg.text)...)
		case types.LabelBigFive:
			if bf := parseBigFive(seg.text); bf != nil {
				fw.BigFive = bf
			}
		}
	}
	return fw
}

type categorySegment struct {
	label types.NodeLabel
	text  string
}

// splitCategories cuts the text at every category heading and pairs each
// heading with the text up to the next one.
func splitCategories(text string) []categorySegment {
	type mark struct {
		label      types.NodeLabel
		start, end int
	}
	var marks []mark
	for _, h := range headings {
		for _, loc := range h.pattern.FindAllStringIndex(text, -1) {
			marks = append(marks, mark{h.label, loc[0], loc[1]})
		}
	}
	// Insertion sort by start offset; overlapping matches keep the earlier,
	// more specific heading (patterns are ordered specific-first).
	for i := 1; i < len(marks); i++ {
		for j := i; j > 0 && marks[j].start < marks[j-1].start; j-- {
			marks[j], marks[j-1] = marks[j-1], marks[j]
		}
	}
	var segs []categorySegment
	for i, m := range marks {
		if i > 0 && m.start < marks[i-1].end {
			continue
		}
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		segs = append(segs, categorySegment{m.label, text[m.end:end]})
	}
	return segs
}

// parseEmotions pulls named emotions with valence/arousal pairs. A trailing
// confidence applies to the emotion whose clause it follows; a segment-level
// confidence after the last pair applies to any pair that had none.
func (in *Ingestor) parseEmotions(text string) []types.EmotionAnnotation {
	matches := emotionRe.FindAllStringSubmatchIndex(text, -1)
	var out []types.EmotionAnnotation
	for i, m := range matches {
		name := canonicalName(text[m[2]:m[3]])
		if name == "" || noneRe.MatchString(name) {
			continue
		}
		valence, err1 := strconv.ParseFloat(text[m[4]:m[5]], 64)
		arousal, err2 := strconv.ParseFloat(text[m[6]:m[7]], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		// confidence: search between this match and the next
		tail := text[m[1]:]
		if i+1 < len(matches) {
			tail = text[m[1]:matches[i+1][0]]
		}
		conf := 0.0
		if cm := confidenceRe.FindStringSubmatch(tail); cm != nil {
			conf, _ = strconv.ParseFloat(cm[1], 64)
		}
		out = append(out, types.EmotionAnnotation{
			Name: titleCase(name),
			EmotionAttrs: types.EmotionAttrs{
				Valence:    clamp(valence, -1, 1),
				Arousal:    clamp(arousal, -1, 1),
				Confidence: clamp(conf, 0, 1),
			},
		})
	}
	return out
}

// parseScored pulls "<value> ... confidence <c>" clauses for the closed
// vocabularies. Clauses split on ';' and '.' so evidence quotes between a
// value and its confidence do not leak across entries.
func (in *Ingestor) parseScored(label types.NodeLabel, text string) []types.ScoredAnnotation {
	var out []types.ScoredAnnotation
	for _, clause := range splitClauses(text) {
		cm := confidenceRe.FindStringSubmatchIndex(clause)
		if cm == nil {
			continue
		}
		head := clause[:cm[0]]
		vm := valueRe.FindStringSubmatch(head)
		if vm == nil {
			continue
		}
		value := canonicalName(vm[1])
		if value == "" || noneRe.MatchString(value) {
			continue
		}
		conf, _ := strconv.ParseFloat(clause[cm[2]:cm[3]], 64)
		if !types.InVocabulary(label, value) {
			in.logger.Warn("framework value outside vocabulary",
				"category", string(label), "value", value)
		}
		out = append(out, types.ScoredAnnotation{
			Value:       value,
			ScoredAttrs: types.ScoredAttrs{Confidence: clamp(conf, 0, 1)},
		})
	}
	return out
}

// parseBigFive reads the five trait scores (full names or O/C/E/A/N
// shorthand) and an overall confidence. All five must be present.
func parseBigFive(text string) *types.BigFiveAttrs {
	var bf types.BigFiveAttrs
	seen := map[string]bool{}
	for _, m := range bigFiveRe.FindAllStringSubmatch(text, -1) {
		trait := strings.ToLower(m[1])
		if trait == "" {
			switch strings.ToUpper(m[2]) {
			case "O":
				trait = "openness"
			case "C":
				trait = "conscientiousness"
			case "E":
				trait = "extraversion"
			case "A":
				trait = "agreeableness"
			case "N":
				trait = "neuroticism"
			}
		}
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil || seen[trait] {
			continue
		}
		seen[trait] = true
		v = clamp(v, 0, 1)
		switch trait {
		case "openness":
			bf.Openness = v
		case "conscientiousness":
			bf.Conscientiousness = v
		case "extraversion":
			bf.Extraversion = v
		case "agreeableness":
			bf.Agreeableness = v
		case "neuroticism":
			bf.Neuroticism = v
		}
	}
	if len(seen) < len(types.BigFiveTraits) {
		return nil
	}
	if cm := confidenceRe.FindStringSubmatch(text); cm != nil {
		c, _ := strconv.ParseFloat(cm[1], 64)
		bf.Confidence = clamp(c, 0, 1)
	}
	return &bf
}

// splitClauses cuts on semicolons, newlines, and sentence-ending periods.
// A bare '.' is not a separator so decimal confidences stay intact.
func splitClauses(text string) []string {
	return clauseRe.Split(text, -1)
}

// canonicalName lowercases a framework value and joins its words with
// underscores, matching the vocabulary spelling ("Intimacy vs Isolation" ->
// "intimacy_vs_isolation").
func canonicalName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.NewReplacer("–", " ", "/", " ", "-", " ", ",", " ").Replace(s)
	fields := strings.Fields(s)
	// strip leading filler left over from clause splitting
	for len(fields) > 0 && (fields[0] == "and" || fields[0] == "with" || fields[0] == "versus") {
		fields = fields[1:]
	}
	for i, f := range fields {
		if f == "versus" {
			fields[i] = "vs"
		}
	}
	return strings.Join(fields, "_")
}

func titleCase(s string) string {
	fields := strings.Split(s, "_")
	for i, f := range fields {
		if f == "" {
			continue
		}
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
