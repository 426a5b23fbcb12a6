package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/personaforge/pkg/types"
)

// jsonBlock pulls the outermost brace-delimited span out of a section, or ""
// when the section carries no structured payload. A missing closing brace is
// left for the repair pass.
func jsonBlock(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}

// ParseFrameworkJSON decodes a structured annotation payload produced
// alongside an assessment. Producer output is model-generated, so the
// payload is repaired (trailing commas, unquoted keys, truncated braces)
// before unmarshalling. Values outside a closed vocabulary are logged the
// same way the text extractor logs them.
func (in *Ingestor) ParseFrameworkJSON(payload string) (types.FrameworkAnnotations, error) {
	var fw types.FrameworkAnnotations

	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return fw, fmt.Errorf("unrepairable annotation payload: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &fw); err != nil {
		return fw, fmt.Errorf("decode annotation payload: %w", err)
	}

	check := func(label types.NodeLabel, anns []types.ScoredAnnotation) {
		for _, a := range anns {
			if !types.InVocabulary(label, a.Value) {
				in.logger.Warn("framework value outside vocabulary",
					"category", string(label), "value", a.Value)
			}
		}
	}
	check(types.LabelDistortion, fw.Distortions)
	check(types.LabelAttachment, fw.Attachments)
	check(types.LabelSchema, fw.Schemas)
	check(types.LabelDefense, fw.Defenses)
	check(types.LabelEriksonStage, fw.Stages)

	return fw, nil
}
