package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/soundprediction/personaforge/pkg/driver"
	"github.com/soundprediction/personaforge/pkg/types"
)

// TopN is how many entries each ranked category reports. Attachment styles
// are few enough to always report in full.
const TopN = 5

// Banding thresholds for Big Five trait means.
const (
	bandHigh     = 0.7
	bandModerate = 0.4
)

// Engine aggregates framework occurrences across every QA pair of a session.
type Engine struct {
	store  driver.GraphStore
	logger *slog.Logger
}

// NewEngine creates a statistics engine. A nil logger falls back to
// slog.Default().
func NewEngine(store driver.GraphStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// categoryAccumulator counts occurrences of one taxonomy value and, for
// emotions, accumulates valence/arousal for the means.
type categoryAccumulator struct {
	count      int
	valenceSum float64
	arousalSum float64
}

// SessionStatistics computes per-category occurrence counts, emotion
// valence/arousal means, and Big Five trait means for one session. An unknown
// session reports Found=false rather than an error.
func (e *Engine) SessionStatistics(ctx context.Context, sessionID string) (*types.SessionStatistics, error) {
	out := &types.SessionStatistics{SessionID: sessionID}

	qaPairs, found, err := e.sessionQAPairs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return out, nil
	}
	out.Found = true
	out.TotalQAPairs = len(qaPairs)

	categories := map[types.EdgeKind]map[string]*categoryAccumulator{}
	for _, kind := range types.FrameworkEdgeKinds {
		if kind != types.EdgeShowsBigFive {
			categories[kind] = map[string]*categoryAccumulator{}
		}
	}
	traitSums := map[string]float64{}
	bigFiveCount := 0

	for _, qa := range qaPairs {
		for _, kind := range types.FrameworkEdgeKinds {
			edges, err := e.store.EdgesFrom(ctx, qa, kind)
			if err != nil {
				return nil, fmt.Errorf("edges %s of %q: %w", kind, qa.Key, err)
			}

			if kind == types.EdgeShowsBigFive {
				for _, edge := range edges {
					bigFiveCount++
					for _, trait := range types.BigFiveTraits {
						v, _ := types.PropFloat(edge.Props, trait)
						traitSums[trait] += v
					}
				}
				continue
			}

			acc := categories[kind]
			for _, edge := range edges {
				a := acc[edge.To.Key]
				if a == nil {
					a = &categoryAccumulator{}
					acc[edge.To.Key] = a
				}
				a.count++
				if kind == types.EdgeRevealsEmotion {
					valence, _ := types.PropFloat(edge.Props, "valence")
					arousal, _ := types.PropFloat(edge.Props, "arousal")
					a.valenceSum += valence
					a.arousalSum += arousal
				}
			}
		}
	}

	out.TopEmotions = rankCategory(categories[types.EdgeRevealsEmotion], TopN, true)
	out.TopDistortions = rankCategory(categories[types.EdgeExhibitsDistortion], TopN, false)
	out.TopSchemas = rankCategory(categories[types.EdgeRevealsSchema], TopN, false)
	out.TopDefenses = rankCategory(categories[types.EdgeUsesDefense], TopN, false)
	out.TopStages = rankCategory(categories[types.EdgeExhibitsStage], TopN, false)
	out.AttachmentStyles = rankCategory(categories[types.EdgeRevealsAttachment], 0, false)

	if bigFiveCount > 0 {
		out.BigFive = traitMeans(traitSums, bigFiveCount)
	}
	return out, nil
}

// sessionQAPairs returns the session's QA pair refs, or found=false when the
// session node does not exist.
func (e *Engine) sessionQAPairs(ctx context.Context, sessionID string) ([]types.NodeRef, bool, error) {
	session := types.NodeRef{Label: types.LabelSession, Key: sessionID}
	if _, err := e.store.GetNode(ctx, types.LabelSession, sessionID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	qaPairs, err := e.store.Traverse(ctx, session, types.EdgeIncludes, types.DirectionOut)
	if err != nil {
		return nil, false, fmt.Errorf("session %q qa pairs: %w", sessionID, err)
	}
	sort.Slice(qaPairs, func(i, j int) bool { return qaPairs[i].Key < qaPairs[j].Key })
	return qaPairs, true, nil
}

// rankCategory orders by count descending (name ascending on ties) and keeps
// the top n; n <= 0 keeps everything.
func rankCategory(acc map[string]*categoryAccumulator, n int, emotions bool) []types.CategoryCount {
	out := make([]types.CategoryCount, 0, len(acc))
	for name, a := range acc {
		cc := types.CategoryCount{Name: name, Count: a.count}
		if emotions {
			valence := a.valenceSum / float64(a.count)
			arousal := a.arousalSum / float64(a.count)
			cc.AvgValence = &valence
			cc.AvgArousal = &arousal
		}
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func traitMeans(sums map[string]float64, count int) []types.TraitMean {
	out := make([]types.TraitMean, 0, len(types.BigFiveTraits))
	for _, trait := range types.BigFiveTraits {
		mean := sums[trait] / float64(count)
		out = append(out, types.TraitMean{Trait: trait, Mean: mean, Band: Band(mean)})
	}
	return out
}

// Band maps a trait mean to its High/Moderate/Low band.
func Band(mean float64) string {
	switch {
	case mean >= bandHigh:
		return "High"
	case mean >= bandModerate:
		return "Moderate"
	default:
		return "Low"
	}
}
