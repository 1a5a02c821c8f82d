package domain

import "strings"

// Position holds x/y coordinates for rendering a node on the editor canvas.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// NodeOption is a forward reference to another node in the same graph.
// The option's displayed label is not stored here: it is resolved at read
// time as the target node's UserMessage.
type NodeOption struct {
	NextNodeID string `json:"nextNodeId" yaml:"nextNodeId" mapstructure:"nextNodeId"`
}

// WorkflowNode is one step of a conversation flow in persisted form.
// UserMessage is the trigger phrase; BotReply is emitted when it fires;
// Options are the outgoing references rendered as buttons.
type WorkflowNode struct {
	ID          string       `json:"id" yaml:"id" mapstructure:"id"`
	UserMessage string       `json:"userMessage" yaml:"userMessage" mapstructure:"userMessage"`
	BotReply    string       `json:"botReply" yaml:"botReply" mapstructure:"botReply"`
	Options     []NodeOption `json:"options" yaml:"options" mapstructure:"options"`
	Position    Position     `json:"position" yaml:"position" mapstructure:"position"`
}

// WorkflowGraph is the persisted adjacency form: nodes carry their own
// outgoing option lists. A chatbot owns at most one graph.
//
// Options SHOULD reference existing node IDs, but dangling references are
// tolerated: they are filtered at resolution time, never an error.
type WorkflowGraph struct {
	Nodes []WorkflowNode `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
}

// Normalize prepares text for equality comparison: trim + lowercase.
// No punctuation stripping and no unicode normalization beyond case folding,
// so "hello!" does not match "hello".
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GraphIndex provides exact lookups over an immutable graph snapshot.
// Indices are rebuilt deterministically from list order whenever the
// snapshot changes (once per session or editor load); they are never
// mutated in place.
type GraphIndex struct {
	byUserMessage map[string]*WorkflowNode
	byID          map[string]*WorkflowNode
}

// NewGraphIndex builds the userMessage and id indices for g.
// Nodes are visited in list order; when two nodes normalize to the same
// trigger text the later entry overwrites the earlier one (last write wins).
// A nil graph yields an index that finds nothing.
func NewGraphIndex(g *WorkflowGraph) *GraphIndex {
	ix := &GraphIndex{
		byUserMessage: make(map[string]*WorkflowNode),
		byID:          make(map[string]*WorkflowNode),
	}
	if g == nil {
		return ix
	}
	for i := range g.Nodes {
		node := &g.Nodes[i]
		ix.byUserMessage[Normalize(node.UserMessage)] = node
		ix.byID[node.ID] = node
	}
	return ix
}

// NodeByUserMessage returns the node whose normalized trigger phrase equals
// the normalized input, or nil.
func (ix *GraphIndex) NodeByUserMessage(text string) *WorkflowNode {
	return ix.byUserMessage[Normalize(text)]
}

// NodeByID returns the node with the given id, or nil.
func (ix *GraphIndex) NodeByID(id string) *WorkflowNode {
	return ix.byID[id]
}
