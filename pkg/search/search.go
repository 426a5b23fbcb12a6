package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/personaforge/pkg/driver"
	"github.com/soundprediction/personaforge/pkg/embedder"
	"github.com/soundprediction/personaforge/pkg/types"
)

// DefaultLimit is the result count when the caller passes k <= 0.
const DefaultLimit = 5

// Engine runs hybrid retrieval: vector similarity over chunk embeddings,
// then graph traversal from each hit back to its QA pair's structured
// psychological context.
type Engine struct {
	store    driver.GraphStore
	embedder embedder.Client
	logger   *slog.Logger
}

// NewEngine creates a retrieval engine. A nil logger falls back to
// slog.Default().
func NewEngine(store driver.GraphStore, embedderClient embedder.Client, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, embedder: embedderClient, logger: logger}
}

// Search embeds the query, finds the k most similar chunks, and enriches each
// hit with its QA pair context and session. Results come back score
// descending; chunk-id ties are already broken by the store. An embedding
// failure fails the whole query.
func (e *Engine) Search(ctx context.Context, query string, k int) (*types.SearchResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyInput
	}
	if k <= 0 {
		k = DefaultLimit
	}

	vector, err := e.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := e.store.VectorQuery(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	results := make([]types.SearchResult, 0, len(hits))
	for _, hit := range hits {
		result, err := e.enrich(ctx, hit)
		if err != nil {
			e.logger.Warn("dropping unenrichable hit", "chunk_id", hit.ChunkID, "error", err)
			continue
		}
		results = append(results, *result)
	}

	return &types.SearchResults{Query: query, Results: results}, nil
}

func (e *Engine) enrich(ctx context.Context, hit types.ChunkHit) (*types.SearchResult, error) {
	chunkNode, err := e.store.GetNode(ctx, types.LabelTextChunk, hit.ChunkID)
	if err != nil {
		return nil, fmt.Errorf("load chunk: %w", err)
	}

	result := &types.SearchResult{
		ChunkID:   hit.ChunkID,
		ChunkText: types.PropString(chunkNode.Props, "text"),
		Score:     hit.Score,
		SessionID: types.PropString(chunkNode.Props, "session_id"),
	}

	owners, err := e.store.Traverse(ctx,
		types.NodeRef{Label: types.LabelTextChunk, Key: hit.ChunkID},
		types.EdgeHasChunk, types.DirectionIn)
	if err != nil {
		return nil, fmt.Errorf("find owning qa pair: %w", err)
	}
	if len(owners) == 0 {
		// orphaned chunk; report the text without context
		return result, nil
	}

	qaCtx, sessionID, err := LoadQAPairContext(ctx, e.store, owners[0].Key)
	if err != nil {
		return nil, err
	}
	result.QAPair = *qaCtx
	if result.SessionID == "" {
		result.SessionID = sessionID
	}
	return result, nil
}

// LoadQAPairContext gathers one QA pair's SOAP fields and every framework
// edge with its attributes, plus the owning session id. Returns
// types.ErrNotFound when the QA pair does not exist.
func LoadQAPairContext(ctx context.Context, store driver.GraphStore, qaID string) (*types.QAPairContext, string, error) {
	node, err := store.GetNode(ctx, types.LabelQAPair, qaID)
	if err != nil {
		return nil, "", err
	}

	out := &types.QAPairContext{
		QAID:       qaID,
		Question:   types.PropString(node.Props, "question"),
		Answer:     types.PropString(node.Props, "answer"),
		Subjective: types.PropString(node.Props, "subjective_analysis"),
		Objective:  types.PropString(node.Props, "objective_analysis"),
		Assessment: types.PropString(node.Props, "assessment"),
		Plan:       types.PropString(node.Props, "plan"),
	}

	qa := types.NodeRef{Label: types.LabelQAPair, Key: qaID}
	for _, kind := range types.FrameworkEdgeKinds {
		edges, err := store.EdgesFrom(ctx, qa, kind)
		if err != nil {
			return nil, "", fmt.Errorf("load %s edges: %w", kind, err)
		}
		collectFramework(out, kind, edges)
	}

	sessions, err := store.Traverse(ctx, qa, types.EdgeIncludes, types.DirectionIn)
	if err != nil {
		return nil, "", fmt.Errorf("find session: %w", err)
	}
	sessionID := ""
	if len(sessions) > 0 {
		sessionID = sessions[0].Key
	}
	return out, sessionID, nil
}

func collectFramework(out *types.QAPairContext, kind types.EdgeKind, edges []types.Edge) {
	switch kind {
	case types.EdgeRevealsEmotion:
		for _, e := range edges {
			valence, _ := types.PropFloat(e.Props, "valence")
			arousal, _ := types.PropFloat(e.Props, "arousal")
			confidence, _ := types.PropFloat(e.Props, "confidence")
			out.Emotions = append(out.Emotions, types.EmotionAnnotation{
				Name: e.To.Key,
				EmotionAttrs: types.EmotionAttrs{
					Valence: valence, Arousal: arousal, Confidence: confidence,
				},
			})
		}

	case types.EdgeShowsBigFive:
		for _, e := range edges {
			bf := &types.BigFiveAttrs{}
			bf.Openness, _ = types.PropFloat(e.Props, "openness")
			bf.Conscientiousness, _ = types.PropFloat(e.Props, "conscientiousness")
			bf.Extraversion, _ = types.PropFloat(e.Props, "extraversion")
			bf.Agreeableness, _ = types.PropFloat(e.Props, "agreeableness")
			bf.Neuroticism, _ = types.PropFloat(e.Props, "neuroticism")
			bf.Confidence, _ = types.PropFloat(e.Props, "confidence")
			out.BigFive = bf
		}

	default:
		for _, e := range edges {
			confidence, _ := types.PropFloat(e.Props, "confidence")
			ann := types.ScoredAnnotation{
				Value:       e.To.Key,
				ScoredAttrs: types.ScoredAttrs{Confidence: confidence},
			}
			switch kind {
			case types.EdgeExhibitsDistortion:
				out.Distortions = append(out.Distortions, ann)
			case types.EdgeRevealsAttachment:
				out.Attachments = append(out.Attachments, ann)
			case types.EdgeRevealsSchema:
				out.Schemas = append(out.Schemas, ann)
			case types.EdgeUsesDefense:
				out.Defenses = append(out.Defenses, ann)
			case types.EdgeExhibitsStage:
				out.Stages = append(out.Stages, ann)
			}
		}
	}
}
