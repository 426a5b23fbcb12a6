package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/soundprediction/personaforge/pkg/types"
)

// DefaultExtremeLimit is the result count when the caller passes limit <= 0.
const DefaultExtremeLimit = 5

// ExtremeProperty names a rankable edge property: emotion_valence,
// emotion_arousal, or one of the five Big Five trait names.
type ExtremeProperty string

const (
	PropertyEmotionValence ExtremeProperty = "emotion_valence"
	PropertyEmotionArousal ExtremeProperty = "emotion_arousal"
)

func (p ExtremeProperty) valid() bool {
	switch p {
	case PropertyEmotionValence, PropertyEmotionArousal:
		return true
	}
	for _, trait := range types.BigFiveTraits {
		if string(p) == trait {
			return true
		}
	}
	return false
}

// Extremes ranks every matching edge in the session by the named property,
// descending, and returns the top entries with the QA pair's first chunk as
// sample text. An unknown property is types.ErrUnknownProperty; an unknown
// session reports Found=false.
func (e *Engine) Extremes(ctx context.Context, sessionID string, property ExtremeProperty, limit int) (*types.ExtremeValues, error) {
	out := &types.ExtremeValues{Property: string(property), SessionID: sessionID}

	if !property.valid() {
		return nil, fmt.Errorf("%w: %q (use emotion_valence, emotion_arousal, or a Big Five trait)",
			types.ErrUnknownProperty, property)
	}
	if limit <= 0 {
		limit = DefaultExtremeLimit
	}

	qaPairs, found, err := e.sessionQAPairs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return out, nil
	}
	out.Found = true

	var entries []types.ExtremeValue
	for _, qa := range qaPairs {
		values, err := e.extremeEntries(ctx, qa, property)
		if err != nil {
			return nil, err
		}
		entries = append(entries, values...)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].QAID < entries[j].QAID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	for i := range entries {
		entries[i].SampleText = e.firstChunkText(ctx, entries[i].QAID)
	}
	out.Results = entries
	return out, nil
}

func (e *Engine) extremeEntries(ctx context.Context, qa types.NodeRef, property ExtremeProperty) ([]types.ExtremeValue, error) {
	var kind types.EdgeKind
	var propName, nameless string

	switch property {
	case PropertyEmotionValence:
		kind, propName = types.EdgeRevealsEmotion, "valence"
	case PropertyEmotionArousal:
		kind, propName = types.EdgeRevealsEmotion, "arousal"
	default:
		kind, propName = types.EdgeShowsBigFive, string(property)
		nameless = "big_five"
	}

	edges, err := e.store.EdgesFrom(ctx, qa, kind)
	if err != nil {
		return nil, fmt.Errorf("edges %s of %q: %w", kind, qa.Key, err)
	}

	out := make([]types.ExtremeValue, 0, len(edges))
	for _, edge := range edges {
		value, ok := types.PropFloat(edge.Props, propName)
		if !ok {
			continue
		}
		confidence, _ := types.PropFloat(edge.Props, "confidence")
		entry := types.ExtremeValue{
			QAID:       qa.Key,
			Value:      value,
			Confidence: confidence,
		}
		if nameless == "" {
			entry.Name = edge.To.Key
		}
		out = append(out, entry)
	}
	return out, nil
}

// firstChunkText returns the lexically first chunk of a QA pair, or "".
func (e *Engine) firstChunkText(ctx context.Context, qaID string) string {
	qa := types.NodeRef{Label: types.LabelQAPair, Key: qaID}
	chunks, err := e.store.Traverse(ctx, qa, types.EdgeHasChunk, types.DirectionOut)
	if err != nil || len(chunks) == 0 {
		return ""
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Key < chunks[j].Key })

	node, err := e.store.GetNode(ctx, types.LabelTextChunk, chunks[0].Key)
	if err != nil {
		return ""
	}
	return types.PropString(node.Props, "text")
}
