package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/personaforge/pkg/types"
)

const vectorIndexName = "textchunk_embedding_index"

// Neo4jStore implements GraphStore on a Neo4j (or bolt-compatible) database,
// using MERGE for upserts, one write transaction per replace-edges cycle, and
// the native vector index for chunk similarity.
type Neo4jStore struct {
	client     neo4j.DriverWithContext
	database   string
	dimensions int
}

// NewNeo4jStore connects to a Neo4j instance. dimensions sizes the chunk
// vector index created by CreateIndices.
func NewNeo4jStore(uri, username, password, database string, dimensions int) (*Neo4jStore, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jStore{
		client:     client,
		database:   database,
		dimensions: dimensions,
	}, nil
}

func (n *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
}

// UpsertNode implements GraphStore.
func (n *Neo4jStore) UpsertNode(ctx context.Context, label types.NodeLabel, key string, props map[string]any) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	// Labels come from the fixed NodeLabel set, never from input, so the
	// Sprintf is safe; the key and props ride as parameters.
	query := fmt.Sprintf(`
		MERGE (n:%s {%s: $key})
		ON CREATE SET n.created_at = $now
		SET n += $props
		SET n.updated_at = $now
	`, label, label.KeyProperty())

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{
			"key":   key,
			"props": props,
			"now":   time.Now().UTC(),
		})
	})
	if err != nil {
		return fmt.Errorf("upsert %s %q: %w", label, key, err)
	}
	return nil
}

// GetNode implements GraphStore.
func (n *Neo4jStore) GetNode(ctx context.Context, label types.NodeLabel, key string) (*types.Node, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (n:%s {%s: $key})
		RETURN n
	`, label, label.KeyProperty())

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"key": key})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, types.ErrNotFound
		}
		return record, nil
	})
	if err != nil {
		return nil, err
	}

	record := result.(*neo4j.Record)
	nodeValue, found := record.Get("n")
	if !found {
		return nil, types.ErrNotFound
	}
	dbNode, ok := nodeValue.(dbtype.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected type for node: got %T, expected dbtype.Node", nodeValue)
	}
	return nodeFromDBNode(label, key, dbNode), nil
}

func nodeFromDBNode(label types.NodeLabel, key string, dbNode dbtype.Node) *types.Node {
	node := &types.Node{
		Label: label,
		Key:   key,
		Props: make(map[string]any, len(dbNode.Props)),
	}
	for k, v := range dbNode.Props {
		switch k {
		case "created_at":
			if t, ok := v.(time.Time); ok {
				node.CreatedAt = t
				continue
			}
		case "updated_at":
			if t, ok := v.(time.Time); ok {
				node.UpdatedAt = t
				continue
			}
		}
		node.Props[k] = v
	}
	return node
}

// ReplaceEdges implements GraphStore. Delete-then-rewrite runs inside one
// write transaction, so readers never observe a partial edge set.
func (n *Neo4jStore) ReplaceEdges(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edges []types.EdgeSpec) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	targetLabel := kind.TargetLabel()
	if targetLabel == "" && len(edges) > 0 {
		targetLabel = edges[0].To.Label
	}

	edgeParams := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		props := e.Props
		if props == nil {
			props = map[string]any{}
		}
		edgeParams = append(edgeParams, map[string]any{
			"key":   e.To.Key,
			"props": props,
		})
	}

	deleteQuery := fmt.Sprintf(`
		MATCH (a:%s {%s: $key})-[r:%s]->()
		DELETE r
	`, from.Label, from.Label.KeyProperty(), kind)

	var createQuery string
	if len(edges) > 0 {
		createQuery = fmt.Sprintf(`
			MATCH (a:%s {%s: $key})
			UNWIND $edges AS edge
			MERGE (b:%s {%s: edge.key})
			CREATE (a)-[r:%s]->(b)
			SET r = edge.props
		`, from.Label, from.Label.KeyProperty(), targetLabel, targetLabel.KeyProperty(), kind)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, deleteQuery, map[string]any{"key": from.Key}); err != nil {
			return nil, err
		}
		if createQuery == "" {
			return nil, nil
		}
		return tx.Run(ctx, createQuery, map[string]any{
			"key":   from.Key,
			"edges": edgeParams,
		})
	})
	if err != nil {
		return fmt.Errorf("replace %s edges of %s %q: %w", kind, from.Label, from.Key, err)
	}
	return nil
}

// AddEdge implements GraphStore. MERGE on the relationship pattern leaves
// every other same-kind edge in place, so concurrent additions commute.
func (n *Neo4jStore) AddEdge(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edge types.EdgeSpec) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	targetLabel := kind.TargetLabel()
	if targetLabel == "" {
		targetLabel = edge.To.Label
	}
	props := edge.Props
	if props == nil {
		props = map[string]any{}
	}

	query := fmt.Sprintf(`
		MATCH (a:%s {%s: $key})
		MERGE (b:%s {%s: $target})
		MERGE (a)-[r:%s]->(b)
		SET r += $props
	`, from.Label, from.Label.KeyProperty(), targetLabel, targetLabel.KeyProperty(), kind)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{
			"key":    from.Key,
			"target": edge.To.Key,
			"props":  props,
		})
	})
	if err != nil {
		return fmt.Errorf("add %s edge from %s %q: %w", kind, from.Label, from.Key, err)
	}
	return nil
}

// EdgesFrom implements GraphStore.
func (n *Neo4jStore) EdgesFrom(ctx context.Context, from types.NodeRef, kind types.EdgeKind) ([]types.Edge, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	targetLabel := kind.TargetLabel()
	targetKey := "name"
	if targetLabel != "" {
		targetKey = targetLabel.KeyProperty()
	}

	var query string
	if targetLabel != "" {
		query = fmt.Sprintf(`
			MATCH (a:%s {%s: $key})-[r:%s]->(b:%s)
			RETURN properties(r) AS props, b.%s AS target
			ORDER BY target
		`, from.Label, from.Label.KeyProperty(), kind, targetLabel, targetKey)
	} else {
		query = fmt.Sprintf(`
			MATCH (a:%s {%s: $key})-[r:%s]->(b)
			RETURN properties(r) AS props, coalesce(b.id, b.session_id, b.name) AS target
			ORDER BY target
		`, from.Label, from.Label.KeyProperty(), kind)
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"key": from.Key})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("edges %s of %s %q: %w", kind, from.Label, from.Key, err)
	}

	records := result.([]*neo4j.Record)
	out := make([]types.Edge, 0, len(records))
	for _, rec := range records {
		propsValue, _ := rec.Get("props")
		props, _ := propsValue.(map[string]any)
		targetValue, _ := rec.Get("target")
		targetKey, _ := targetValue.(string)
		toLabel := targetLabel
		if toLabel == "" {
			toLabel = structuralTarget(kind)
		}
		out = append(out, types.Edge{
			Kind:  kind,
			From:  from,
			To:    types.NodeRef{Label: toLabel, Key: targetKey},
			Props: props,
		})
	}
	return out, nil
}

func structuralTarget(kind types.EdgeKind) types.NodeLabel {
	switch kind {
	case types.EdgeParticipatedIn:
		return types.LabelSession
	case types.EdgeIncludes:
		return types.LabelQAPair
	case types.EdgeHasChunk:
		return types.LabelTextChunk
	case types.EdgeHasHistory:
		return types.LabelClientHistory
	default:
		return ""
	}
}

// Traverse implements GraphStore.
func (n *Neo4jStore) Traverse(ctx context.Context, ref types.NodeRef, kind types.EdgeKind, dir types.Direction) ([]types.NodeRef, error) {
	session := n.session(ctx)
	defer session.Close(ctx)

	pattern := fmt.Sprintf("(a:%s {%s: $key})-[:%s]->(b)", ref.Label, ref.Label.KeyProperty(), kind)
	farLabel := kind.TargetLabel()
	if farLabel == "" {
		farLabel = structuralTarget(kind)
	}
	if dir == types.DirectionIn {
		pattern = fmt.Sprintf("(b)-[:%s]->(a:%s {%s: $key})", kind, ref.Label, ref.Label.KeyProperty())
		farLabel = sourceLabel(kind)
	}

	query := fmt.Sprintf(`
		MATCH %s
		RETURN coalesce(b.id, b.session_id, b.client_id, b.name, b.type, b.profile) AS key
		ORDER BY key
	`, pattern)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"key": ref.Key})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("traverse %s from %s %q: %w", kind, ref.Label, ref.Key, err)
	}

	records := result.([]*neo4j.Record)
	out := make([]types.NodeRef, 0, len(records))
	for _, rec := range records {
		keyValue, _ := rec.Get("key")
		key, _ := keyValue.(string)
		out = append(out, types.NodeRef{Label: farLabel, Key: key})
	}
	return out, nil
}

// sourceLabel is the label on the near side of an edge kind, used when
// traversing against the arrow.
func sourceLabel(kind types.EdgeKind) types.NodeLabel {
	switch kind {
	case types.EdgeParticipatedIn:
		return types.LabelClient
	case types.EdgeIncludes:
		return types.LabelSession
	case types.EdgeHasChunk, types.EdgeRevealsEmotion, types.EdgeExhibitsDistortion,
		types.EdgeRevealsAttachment, types.EdgeRevealsSchema, types.EdgeUsesDefense,
		types.EdgeExhibitsStage, types.EdgeShowsBigFive:
		return types.LabelQAPair
	case types.EdgeHasHistory:
		return types.LabelClient
	default:
		return ""
	}
}

// UpsertChunkVector implements GraphStore.
func (n *Neo4jStore) UpsertChunkVector(ctx context.Context, chunkID string, vector []float32) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (c:TextChunk {id: $id})
			WITH c
			CALL db.create.setNodeVectorProperty(c, 'embedding', $vector)
			RETURN c.id
		`, map[string]any{"id": chunkID, "vector": vector})
	})
	if err != nil {
		return fmt.Errorf("upsert vector for chunk %q: %w", chunkID, err)
	}
	return nil
}

// VectorQuery implements GraphStore.
func (n *Neo4jStore) VectorQuery(ctx context.Context, vector []float32, k int) ([]types.ChunkHit, error) {
	if k <= 0 {
		return nil, nil
	}

	session := n.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			CALL db.index.vector.queryNodes($index, $k, $vector)
			YIELD node, score
			RETURN node.id AS chunk_id, score
			ORDER BY score DESC, chunk_id ASC
		`, map[string]any{
			"index":  vectorIndexName,
			"k":      k,
			"vector": vector,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	records := result.([]*neo4j.Record)
	out := make([]types.ChunkHit, 0, len(records))
	for _, rec := range records {
		idValue, _ := rec.Get("chunk_id")
		id, _ := idValue.(string)
		scoreValue, _ := rec.Get("score")
		score, _ := scoreValue.(float64)
		out = append(out, types.ChunkHit{ChunkID: id, Score: score})
	}
	return out, nil
}

// CreateIndices implements GraphStore: uniqueness constraints on every node
// label's natural key plus the chunk vector index.
func (n *Neo4jStore) CreateIndices(ctx context.Context) error {
	session := n.session(ctx)
	defer session.Close(ctx)

	labels := []types.NodeLabel{
		types.LabelClient, types.LabelSession, types.LabelQAPair,
		types.LabelTextChunk, types.LabelEmotion, types.LabelDistortion,
		types.LabelAttachment, types.LabelSchema, types.LabelDefense,
		types.LabelEriksonStage, types.LabelBigFive,
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, label := range labels {
			query := fmt.Sprintf(
				"CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
				label, label.KeyProperty())
			if _, err := tx.Run(ctx, query, nil); err != nil {
				return nil, fmt.Errorf("constraint for %s: %w", label, err)
			}
		}

		vectorQuery := fmt.Sprintf(`
			CREATE VECTOR INDEX %s IF NOT EXISTS
			FOR (c:TextChunk) ON (c.embedding)
			OPTIONS {indexConfig: {
				`+"`vector.dimensions`"+`: %d,
				`+"`vector.similarity_function`"+`: 'cosine'
			}}
		`, vectorIndexName, n.dimensions)
		if _, err := tx.Run(ctx, vectorQuery, nil); err != nil {
			return nil, fmt.Errorf("vector index: %w", err)
		}
		return nil, nil
	})
	return err
}

// Close implements GraphStore.
func (n *Neo4jStore) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// Provider implements GraphStore.
func (n *Neo4jStore) Provider() Provider { return ProviderNeo4j }
