package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundprediction/personaforge/pkg/chunker"
	"github.com/soundprediction/personaforge/pkg/driver"
	"github.com/soundprediction/personaforge/pkg/types"
)

// BigFiveProfile keys the shared Big_Five taxonomy node. Trait scores live on
// the SHOWS_BIG_FIVE edges, so one profile node serves every QA pair.
const BigFiveProfile = "individual"

// Builder maps parsed analysis records onto GraphStore mutations: structural
// upserts, merge-by-key taxonomy nodes, and the atomic per-framework edge
// replacement that keeps regeneration idempotent.
type Builder struct {
	store  driver.GraphStore
	logger *slog.Logger
}

// NewBuilder creates a schema builder over the given store. A nil logger
// falls back to slog.Default().
func NewBuilder(store driver.GraphStore, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, logger: logger}
}

// EnsureClientSession upserts the client and session nodes and links them.
func (b *Builder) EnsureClientSession(ctx context.Context, clientID, sessionID string) error {
	if err := b.store.UpsertNode(ctx, types.LabelClient, clientID, nil); err != nil {
		return err
	}
	if err := b.store.UpsertNode(ctx, types.LabelSession, sessionID, nil); err != nil {
		return err
	}
	return b.addEdge(ctx,
		types.NodeRef{Label: types.LabelClient, Key: clientID},
		types.EdgeParticipatedIn,
		types.NodeRef{Label: types.LabelSession, Key: sessionID})
}

// EnsureClientHistory attaches a diagnosis/history node to the client.
// History may land before any session is ingested, so the client node is
// merge-created here too.
func (b *Builder) EnsureClientHistory(ctx context.Context, clientID, history string) error {
	if history == "" {
		return nil
	}
	if err := b.store.UpsertNode(ctx, types.LabelClient, clientID, nil); err != nil {
		return err
	}
	if err := b.store.UpsertNode(ctx, types.LabelClientHistory, history, nil); err != nil {
		return err
	}
	return b.addEdge(ctx,
		types.NodeRef{Label: types.LabelClient, Key: clientID},
		types.EdgeHasHistory,
		types.NodeRef{Label: types.LabelClientHistory, Key: history})
}

// ApplyRecord writes one analysis record under its session: the QA pair node
// with its SOAP fields overwritten in place, the INCLUDES link, and the full
// set of framework edges replaced per kind. Re-applying the same record is a
// no-op on graph state.
func (b *Builder) ApplyRecord(ctx context.Context, sessionID string, rec types.AnalysisRecord) error {
	if rec.QAID == "" {
		return fmt.Errorf("%w: record has no qa id", types.ErrMalformedEntry)
	}

	err := b.store.UpsertNode(ctx, types.LabelQAPair, rec.QAID, map[string]any{
		"question":            rec.Question,
		"answer":              rec.Answer,
		"subjective_analysis": rec.Subjective,
		"objective_analysis":  rec.Objective,
		"assessment":          rec.Assessment,
		"plan":                rec.Plan,
	})
	if err != nil {
		return fmt.Errorf("upsert qa pair %q: %w", rec.QAID, err)
	}

	session := types.NodeRef{Label: types.LabelSession, Key: sessionID}
	qa := types.NodeRef{Label: types.LabelQAPair, Key: rec.QAID}
	if err := b.addEdge(ctx, session, types.EdgeIncludes, qa); err != nil {
		return fmt.Errorf("link qa pair %q: %w", rec.QAID, err)
	}

	for _, kind := range types.FrameworkEdgeKinds {
		specs := frameworkSpecs(kind, rec.Frameworks)
		if err := b.store.ReplaceEdges(ctx, qa, kind, specs); err != nil {
			return fmt.Errorf("replace %s edges for %q: %w", kind, rec.QAID, err)
		}
	}
	return nil
}

// ApplyChunks writes the chunk nodes for one QA pair and replaces its
// HAS_CHUNK set. The old chunk set going away before the rewrite is what
// keeps chunk ownership single-parent.
func (b *Builder) ApplyChunks(ctx context.Context, qaID string, chunks []chunker.Chunk) error {
	specs := make([]types.EdgeSpec, 0, len(chunks))
	for _, c := range chunks {
		err := b.store.UpsertNode(ctx, types.LabelTextChunk, c.ID, map[string]any{
			"text":       c.Text,
			"session_id": c.SessionID,
			"qa_id":      c.QAID,
		})
		if err != nil {
			return fmt.Errorf("upsert chunk %q: %w", c.ID, err)
		}
		specs = append(specs, types.EdgeSpec{
			To: types.NodeRef{Label: types.LabelTextChunk, Key: c.ID},
		})
	}
	qa := types.NodeRef{Label: types.LabelQAPair, Key: qaID}
	if err := b.store.ReplaceEdges(ctx, qa, types.EdgeHasChunk, specs); err != nil {
		return fmt.Errorf("replace chunk edges for %q: %w", qaID, err)
	}
	return nil
}

// frameworkSpecs renders one framework category of the annotations as edge
// specs. An absent category renders as the empty set, which clears any stale
// edges from a previous analysis generation.
func frameworkSpecs(kind types.EdgeKind, fw types.FrameworkAnnotations) []types.EdgeSpec {
	switch kind {
	case types.EdgeRevealsEmotion:
		specs := make([]types.EdgeSpec, 0, len(fw.Emotions))
		for _, e := range fw.Emotions {
			specs = append(specs, types.EdgeSpec{
				To:    types.NodeRef{Label: types.LabelEmotion, Key: e.Name},
				Props: e.EmotionAttrs.ToProps(),
			})
		}
		return specs

	case types.EdgeShowsBigFive:
		if fw.BigFive == nil {
			return nil
		}
		return []types.EdgeSpec{{
			To:    types.NodeRef{Label: types.LabelBigFive, Key: BigFiveProfile},
			Props: fw.BigFive.ToProps(),
		}}

	default:
		var anns []types.ScoredAnnotation
		switch kind {
		case types.EdgeExhibitsDistortion:
			anns = fw.Distortions
		case types.EdgeRevealsAttachment:
			anns = fw.Attachments
		case types.EdgeRevealsSchema:
			anns = fw.Schemas
		case types.EdgeUsesDefense:
			anns = fw.Defenses
		case types.EdgeExhibitsStage:
			anns = fw.Stages
		}
		specs := make([]types.EdgeSpec, 0, len(anns))
		for _, a := range anns {
			specs = append(specs, types.EdgeSpec{
				To:    types.NodeRef{Label: kind.TargetLabel(), Key: a.Value},
				Props: a.ScoredAttrs.ToProps(),
			})
		}
		return specs
	}
}

// addEdge unions one edge into a node's existing set of that kind. Structural
// links accumulate; only framework sets are replaced wholesale. The union is
// a store primitive, so concurrent records landing on one session never
// clobber each other's links.
func (b *Builder) addEdge(ctx context.Context, from types.NodeRef, kind types.EdgeKind, to types.NodeRef) error {
	return b.store.AddEdge(ctx, from, kind, types.EdgeSpec{To: to})
}
