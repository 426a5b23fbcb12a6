package driver

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/soundprediction/personaforge/pkg/types"
)

// ScriptWriter is a write-only GraphStore that renders every mutation as a
// declarative Cypher statement instead of applying it. The resulting script
// replays the same merge-by-key semantics on any Cypher-speaking store that
// lacks a transactional API reachable from here. Reads return empty results,
// so it only backs one-way export pipelines.
type ScriptWriter struct {
	mu         sync.Mutex
	statements []string
}

// NewScriptWriter creates an empty script writer.
func NewScriptWriter() *ScriptWriter {
	return &ScriptWriter{}
}

func (s *ScriptWriter) append(stmt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = append(s.statements, stmt)
}

// UpsertNode implements GraphStore.
func (s *ScriptWriter) UpsertNode(ctx context.Context, label types.NodeLabel, key string, props map[string]any) error {
	stmt := fmt.Sprintf("MERGE (n:%s {%s: %s})", label, label.KeyProperty(), cypherValue(key))
	if len(props) > 0 {
		stmt += fmt.Sprintf("\nSET n += %s", cypherMap(props))
	}
	s.append(stmt + ";")
	return nil
}

// GetNode implements GraphStore; a script target has nothing to read.
func (s *ScriptWriter) GetNode(ctx context.Context, label types.NodeLabel, key string) (*types.Node, error) {
	return nil, types.ErrNotFound
}

// ReplaceEdges implements GraphStore.
func (s *ScriptWriter) ReplaceEdges(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edges []types.EdgeSpec) error {
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (a:%s {%s: %s})\n", from.Label, from.Label.KeyProperty(), cypherValue(from.Key))
	fmt.Fprintf(&b, "OPTIONAL MATCH (a)-[r:%s]->()\nDELETE r;", kind)
	s.append(b.String())

	if len(edges) == 0 {
		return nil
	}

	targetLabel := kind.TargetLabel()
	if targetLabel == "" {
		targetLabel = edges[0].To.Label
	}

	b.Reset()
	fmt.Fprintf(&b, "MATCH (a:%s {%s: %s})\n", from.Label, from.Label.KeyProperty(), cypherValue(from.Key))
	b.WriteString("WITH a, [\n")
	for i, e := range edges {
		fmt.Fprintf(&b, "  {key: %s, props: %s}", cypherValue(e.To.Key), cypherMap(e.Props))
		if i < len(edges)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("] AS edges\nUNWIND edges AS edge\n")
	fmt.Fprintf(&b, "MERGE (b:%s {%s: edge.key})\n", targetLabel, targetLabel.KeyProperty())
	fmt.Fprintf(&b, "CREATE (a)-[r:%s]->(b)\nSET r = edge.props;", kind)
	s.append(b.String())
	return nil
}

// AddEdge implements GraphStore. Rendered as pure MERGE statements: replaying
// the script never deletes edges written by earlier statements, so structural
// links accumulate across the whole run.
func (s *ScriptWriter) AddEdge(ctx context.Context, from types.NodeRef, kind types.EdgeKind, edge types.EdgeSpec) error {
	targetLabel := kind.TargetLabel()
	if targetLabel == "" {
		targetLabel = edge.To.Label
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (a:%s {%s: %s})\n", from.Label, from.Label.KeyProperty(), cypherValue(from.Key))
	fmt.Fprintf(&b, "MERGE (b:%s {%s: %s})\n", targetLabel, targetLabel.KeyProperty(), cypherValue(edge.To.Key))
	fmt.Fprintf(&b, "MERGE (a)-[r:%s]->(b)", kind)
	if len(edge.Props) > 0 {
		fmt.Fprintf(&b, "\nSET r += %s", cypherMap(edge.Props))
	}
	s.append(b.String() + ";")
	return nil
}

// EdgesFrom implements GraphStore.
func (s *ScriptWriter) EdgesFrom(ctx context.Context, from types.NodeRef, kind types.EdgeKind) ([]types.Edge, error) {
	return nil, nil
}

// Traverse implements GraphStore.
func (s *ScriptWriter) Traverse(ctx context.Context, ref types.NodeRef, kind types.EdgeKind, dir types.Direction) ([]types.NodeRef, error) {
	return nil, nil
}

// UpsertChunkVector implements GraphStore.
func (s *ScriptWriter) UpsertChunkVector(ctx context.Context, chunkID string, vector []float32) error {
	s.append(fmt.Sprintf("MERGE (c:TextChunk {id: %s})\nSET c.embedding = %s;",
		cypherValue(chunkID), cypherVector(vector)))
	return nil
}

// VectorQuery implements GraphStore.
func (s *ScriptWriter) VectorQuery(ctx context.Context, vector []float32, k int) ([]types.ChunkHit, error) {
	return nil, nil
}

// CreateIndices implements GraphStore; emits the key constraints.
func (s *ScriptWriter) CreateIndices(ctx context.Context) error {
	for _, label := range []types.NodeLabel{
		types.LabelClient, types.LabelSession, types.LabelQAPair,
		types.LabelTextChunk, types.LabelEmotion, types.LabelDistortion,
		types.LabelAttachment, types.LabelSchema, types.LabelDefense,
		types.LabelEriksonStage, types.LabelBigFive,
	} {
		s.append(fmt.Sprintf("CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE;",
			label, label.KeyProperty()))
	}
	return nil
}

// Close implements GraphStore.
func (s *ScriptWriter) Close(ctx context.Context) error { return nil }

// Provider implements GraphStore.
func (s *ScriptWriter) Provider() Provider { return ProviderScript }

// Script returns the accumulated statements as one Cypher script.
func (s *ScriptWriter) Script() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.statements, "\n\n") + "\n"
}

// WriteTo writes the script to w.
func (s *ScriptWriter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.Script())
	return int64(n), err
}

// Len returns the number of buffered statements.
func (s *ScriptWriter) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statements)
}

func cypherValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(x) + "'"
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return "datetime(" + cypherValue(x.UTC().Format(time.RFC3339)) + ")"
	case []float32:
		return cypherVector(x)
	default:
		return cypherValue(fmt.Sprintf("%v", x))
	}
}

func cypherMap(props map[string]any) string {
	if len(props) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, cypherValue(props[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func cypherVector(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
