package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/soundprediction/personaforge/pkg/types"
)

// Focus areas for PersonalitySummary.
const (
	FocusOverall     = "overall"
	FocusEmotions    = "emotions"
	FocusCognition   = "cognition"
	FocusAttachment  = "attachment"
	FocusPersonality = "personality"
)

// PersonalitySummary lists the distinct framework values observed across a
// session, filtered by focus area, with banded Big Five means where relevant.
// An unrecognised focus falls back to overall.
func (e *Engine) PersonalitySummary(ctx context.Context, sessionID, focus string) (*types.PersonalitySummary, error) {
	switch focus {
	case FocusOverall, FocusEmotions, FocusCognition, FocusAttachment, FocusPersonality:
	default:
		focus = FocusOverall
	}
	out := &types.PersonalitySummary{SessionID: sessionID, Focus: focus}

	stats, err := e.SessionStatistics(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !stats.Found {
		return out, nil
	}
	out.Found = true

	if focus == FocusOverall || focus == FocusEmotions {
		out.Emotions = distinctNames(stats.TopEmotions)
	}
	if focus == FocusOverall || focus == FocusCognition {
		out.Distortions = distinctNames(stats.TopDistortions)
		out.Schemas = distinctNames(stats.TopSchemas)
		out.Defenses = distinctNames(stats.TopDefenses)
	}
	if focus == FocusOverall || focus == FocusAttachment {
		out.Attachments = distinctNames(stats.AttachmentStyles)
	}
	if focus == FocusOverall || focus == FocusPersonality {
		out.BigFive = stats.BigFive
	}
	return out, nil
}

func distinctNames(counts []types.CategoryCount) []string {
	if len(counts) == 0 {
		return nil
	}
	names := make([]string, 0, len(counts))
	for _, c := range counts {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// SessionPlans returns each QA pair's plan section in qa-id order, skipping
// empty sections. An unknown session reports Found=false.
func (e *Engine) SessionPlans(ctx context.Context, sessionID string) (*types.SessionSections, error) {
	return e.sessionSections(ctx, sessionID, "plan")
}

// SessionSubjectives returns each QA pair's subjective section in qa-id
// order, skipping empty sections. An unknown session reports Found=false.
func (e *Engine) SessionSubjectives(ctx context.Context, sessionID string) (*types.SessionSections, error) {
	return e.sessionSections(ctx, sessionID, "subjective_analysis")
}

func (e *Engine) sessionSections(ctx context.Context, sessionID, field string) (*types.SessionSections, error) {
	out := &types.SessionSections{SessionID: sessionID, Section: field}

	qaPairs, found, err := e.sessionQAPairs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return out, nil
	}
	out.Found = true

	for _, qa := range qaPairs {
		node, err := e.store.GetNode(ctx, types.LabelQAPair, qa.Key)
		if err != nil {
			return nil, fmt.Errorf("load qa pair %q: %w", qa.Key, err)
		}
		text := types.PropString(node.Props, field)
		if text == "" {
			continue
		}
		out.Sections = append(out.Sections, types.SectionText{
			QAID:     qa.Key,
			Question: types.PropString(node.Props, "question"),
			Text:     text,
		})
	}
	return out, nil
}
