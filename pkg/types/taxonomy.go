package types

// The closed framework vocabularies below come from the assessment producer's
// scoring guidelines. Emotions are free text; every other framework validates
// against its enumeration. Out-of-enum values are kept but flagged so a
// drifting producer is visible in the logs rather than silently widening the
// taxonomy.

// DistortionTypes enumerates the recognised CBT cognitive distortions.
var DistortionTypes = []string{
	"all_or_nothing",
	"overgeneralization",
	"mental_filter",
	"disqualifying_the_positive",
	"jumping_to_conclusions",
	"mind_reading",
	"fortune_telling",
	"magnification",
	"minimization",
	"emotional_reasoning",
	"should_statements",
	"labeling",
	"personalization",
	"catastrophizing",
}

// AttachmentStyles enumerates the recognised attachment styles.
var AttachmentStyles = []string{
	"secure",
	"anxious_preoccupied",
	"dismissive_avoidant",
	"fearful_avoidant",
}

// SchemaNames enumerates the recognised schema-therapy core beliefs.
var SchemaNames = []string{
	"abandonment",
	"mistrust_abuse",
	"emotional_deprivation",
	"defectiveness_shame",
	"social_isolation_alienation",
	"dependence_incompetence",
	"vulnerability_to_harm",
	"enmeshment_undeveloped_self",
	"failure",
	"entitlement_grandiosity",
	"insufficient_self_control",
	"subjugation",
	"self_sacrifice",
	"approval_seeking",
	"negativity_pessimism",
	"emotional_inhibition",
	"unrelenting_standards",
	"punitiveness",
}

// DefenseMechanisms enumerates the recognised psychodynamic defenses.
var DefenseMechanisms = []string{
	"denial",
	"projection",
	"rationalization",
	"intellectualization",
	"reaction_formation",
	"displacement",
	"sublimation",
	"repression",
	"suppression",
	"regression",
	"splitting",
}

// EriksonStages enumerates the eight psychosocial development stages.
var EriksonStages = []string{
	"trust_vs_mistrust",
	"autonomy_vs_shame_doubt",
	"initiative_vs_guilt",
	"industry_vs_inferiority",
	"identity_vs_role_confusion",
	"intimacy_vs_isolation",
	"generativity_vs_stagnation",
	"integrity_vs_despair",
}

// BigFiveTraits lists the five personality trait names in canonical order.
var BigFiveTraits = []string{
	"openness",
	"conscientiousness",
	"extraversion",
	"agreeableness",
	"neuroticism",
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// InVocabulary reports whether value is a member of the label's closed
// enumeration. Emotions and Big Five profiles have open vocabularies and
// always validate.
func InVocabulary(label NodeLabel, value string) bool {
	switch label {
	case LabelDistortion:
		return contains(DistortionTypes, value)
	case LabelAttachment:
		return contains(AttachmentStyles, value)
	case LabelSchema:
		return contains(SchemaNames, value)
	case LabelDefense:
		return contains(DefenseMechanisms, value)
	case LabelEriksonStage:
		return contains(EriksonStages, value)
	default:
		return true
	}
}

// EmotionAttrs are the relationship attributes on a REVEALS_EMOTION edge.
// Valence and arousal follow Russell's circumplex, both in [-1, 1].
type EmotionAttrs struct {
	Valence    float64 `json:"valence"`
	Arousal    float64 `json:"arousal"`
	Confidence float64 `json:"confidence"`
}

// ScoredAttrs are the attributes on the confidence-only framework edges
// (distortions, attachment styles, schemas, defenses, Erikson stages).
type ScoredAttrs struct {
	Confidence float64 `json:"confidence"`
}

// BigFiveAttrs are the attributes on a SHOWS_BIG_FIVE edge, each in [0, 1].
type BigFiveAttrs struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
	Confidence        float64 `json:"confidence"`
}

// Trait returns the named trait value. The second return is false for an
// unknown trait name.
func (b BigFiveAttrs) Trait(name string) (float64, bool) {
	switch name {
	case "openness":
		return b.Openness, true
	case "conscientiousness":
		return b.Conscientiousness, true
	case "extraversion":
		return b.Extraversion, true
	case "agreeableness":
		return b.Agreeableness, true
	case "neuroticism":
		return b.Neuroticism, true
	default:
		return 0, false
	}
}

func (e EmotionAttrs) ToProps() map[string]any {
	return map[string]any{
		"valence":    e.Valence,
		"arousal":    e.Arousal,
		"confidence": e.Confidence,
	}
}

func (s ScoredAttrs) ToProps() map[string]any {
	return map[string]any{"confidence": s.Confidence}
}

func (b BigFiveAttrs) ToProps() map[string]any {
	return map[string]any{
		"openness":          b.Openness,
		"conscientiousness": b.Conscientiousness,
		"extraversion":      b.Extraversion,
		"agreeableness":     b.Agreeableness,
		"neuroticism":       b.Neuroticism,
		"confidence":        b.Confidence,
	}
}

// PropFloat reads a float edge property, tolerating the numeric types the
// different store backends hand back.
func PropFloat(props map[string]any, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// PropString reads a string node/edge property.
func PropString(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
