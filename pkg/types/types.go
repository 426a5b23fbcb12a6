package types

import "time"

// NodeLabel identifies the kind of a graph node.
type NodeLabel string

const (
	LabelClient        NodeLabel = "Client"
	LabelSession       NodeLabel = "Session"
	LabelQAPair        NodeLabel = "QA_Pair"
	LabelTextChunk     NodeLabel = "TextChunk"
	LabelEmotion       NodeLabel = "Emotion"
	LabelDistortion    NodeLabel = "Cognitive_Distortion"
	LabelAttachment    NodeLabel = "Attachment_Style"
	LabelSchema        NodeLabel = "Schema"
	LabelDefense       NodeLabel = "Defense_Mechanism"
	LabelEriksonStage  NodeLabel = "Erikson_Stage"
	LabelBigFive       NodeLabel = "Big_Five"
	LabelClientHistory NodeLabel = "History"
)

// TaxonomyLabels lists the shared, merge-by-key node labels. Nodes with these
// labels are singletons keyed by their natural name and shared across sessions.
var TaxonomyLabels = []NodeLabel{
	LabelEmotion,
	LabelDistortion,
	LabelAttachment,
	LabelSchema,
	LabelDefense,
	LabelEriksonStage,
	LabelBigFive,
}

// IsTaxonomy reports whether the label names a shared taxonomy node.
func (l NodeLabel) IsTaxonomy() bool {
	for _, t := range TaxonomyLabels {
		if l == t {
			return true
		}
	}
	return false
}

// KeyProperty returns the property name that holds a node's natural key.
// Cognitive distortions are keyed by "type" and Big Five profiles by
// "profile"; the structural nodes use their id fields and everything else
// uses "name".
func (l NodeLabel) KeyProperty() string {
	switch l {
	case LabelClient:
		return "client_id"
	case LabelSession:
		return "session_id"
	case LabelQAPair, LabelTextChunk:
		return "id"
	case LabelDistortion:
		return "type"
	case LabelBigFive:
		return "profile"
	default:
		return "name"
	}
}

// EdgeKind identifies a typed relationship in the graph.
type EdgeKind string

const (
	EdgeParticipatedIn     EdgeKind = "PARTICIPATED_IN"
	EdgeIncludes           EdgeKind = "INCLUDES"
	EdgeHasChunk           EdgeKind = "HAS_CHUNK"
	EdgeHasHistory         EdgeKind = "HAS_HISTORY"
	EdgeRevealsEmotion     EdgeKind = "REVEALS_EMOTION"
	EdgeExhibitsDistortion EdgeKind = "EXHIBITS_DISTORTION"
	EdgeRevealsAttachment  EdgeKind = "REVEALS_ATTACHMENT_STYLE"
	EdgeRevealsSchema      EdgeKind = "REVEALS_SCHEMA"
	EdgeUsesDefense        EdgeKind = "USES_DEFENSE_MECHANISM"
	EdgeExhibitsStage      EdgeKind = "EXHIBITS_STAGE"
	EdgeShowsBigFive       EdgeKind = "SHOWS_BIG_FIVE"
)

// FrameworkEdgeKinds lists the edge kinds that attach psychological framework
// taxonomy nodes to a QA pair. These are the edge sets that get replaced
// atomically when an analysis is regenerated.
var FrameworkEdgeKinds = []EdgeKind{
	EdgeRevealsEmotion,
	EdgeExhibitsDistortion,
	EdgeRevealsAttachment,
	EdgeRevealsSchema,
	EdgeUsesDefense,
	EdgeExhibitsStage,
	EdgeShowsBigFive,
}

// TargetLabel returns the taxonomy label a framework edge kind points at,
// or "" for the structural edge kinds.
func (k EdgeKind) TargetLabel() NodeLabel {
	switch k {
	case EdgeRevealsEmotion:
		return LabelEmotion
	case EdgeExhibitsDistortion:
		return LabelDistortion
	case EdgeRevealsAttachment:
		return LabelAttachment
	case EdgeRevealsSchema:
		return LabelSchema
	case EdgeUsesDefense:
		return LabelDefense
	case EdgeExhibitsStage:
		return LabelEriksonStage
	case EdgeShowsBigFive:
		return LabelBigFive
	default:
		return ""
	}
}

// Direction selects which way a traversal follows edges.
type Direction int

const (
	DirectionOut Direction = iota
	DirectionIn
)

// NodeRef identifies a node by label and natural key.
type NodeRef struct {
	Label NodeLabel `json:"label"`
	Key   string    `json:"key"`
}

// Node is a stored graph node with its properties.
type Node struct {
	Label     NodeLabel      `json:"label"`
	Key       string         `json:"key"`
	Props     map[string]any `json:"props,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// Ref returns the node's reference.
func (n *Node) Ref() NodeRef {
	return NodeRef{Label: n.Label, Key: n.Key}
}

// EdgeSpec describes one edge to insert: the target node plus the
// relationship-scoped attributes carried on the edge itself.
type EdgeSpec struct {
	To    NodeRef        `json:"to"`
	Props map[string]any `json:"props,omitempty"`
}

// Edge is a stored, typed relationship between two nodes. Attributes live on
// the edge, not on either endpoint.
type Edge struct {
	Kind  EdgeKind       `json:"kind"`
	From  NodeRef        `json:"from"`
	To    NodeRef        `json:"to"`
	Props map[string]any `json:"props,omitempty"`
}

// ChunkHit is one vector-query result.
type ChunkHit struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}
