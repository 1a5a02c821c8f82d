package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// NodeData holds the editable payload of a node: the trigger phrase and the
// reply text. It mirrors the shape graph editors put under `data`.
type NodeData struct {
	UserMessage string `json:"userMessage" mapstructure:"userMessage"`
	BotReply    string `json:"botReply" mapstructure:"botReply"`
}

// EditableNode is the editor-only node form. It has no options field:
// outgoing edges ARE the options.
type EditableNode struct {
	ID       string   `json:"id" mapstructure:"id"`
	Position Position `json:"position" mapstructure:"position"`
	Data     NodeData `json:"data" mapstructure:"data"`
}

// EditableEdge is a directed connection between two editable nodes.
// Edge IDs must be unique within the edge set; multiple edges may share a
// source.
type EditableEdge struct {
	ID     string `json:"id" mapstructure:"id"`
	Source string `json:"source" mapstructure:"source"`
	Target string `json:"target" mapstructure:"target"`
}

// ToEditable converts a persisted graph into the editor's node/edge form.
//
// Every (node, option) pair with a non-empty target becomes an edge, even
// when the target id does not exist in the graph: dangling edges are kept
// visible so the editor can display and fix them. Edge IDs are derived from
// (source, target, ordinal) so duplicate source→target pairs stay unique.
func ToEditable(g *WorkflowGraph) ([]EditableNode, []EditableEdge) {
	nodes := []EditableNode{}
	edges := []EditableEdge{}
	if g == nil {
		return nodes, edges
	}
	for _, n := range g.Nodes {
		nodes = append(nodes, EditableNode{
			ID:       n.ID,
			Position: n.Position,
			Data: NodeData{
				UserMessage: n.UserMessage,
				BotReply:    n.BotReply,
			},
		})
		for i, opt := range n.Options {
			if opt.NextNodeID == "" {
				continue
			}
			edges = append(edges, EditableEdge{
				ID:     fmt.Sprintf("e-%s-%s-%d", n.ID, opt.NextNodeID, i),
				Source: n.ID,
				Target: opt.NextNodeID,
			})
		}
	}
	return nodes, edges
}

// ToPersisted converts the editor's node/edge form back into a persisted
// graph. Edges are grouped by source preserving their original insertion
// order, which determines the displayed order of option buttons. Edges with
// an empty target, or whose source is not present in nodes, are dropped.
//
// ToPersisted(ToEditable(g)) is semantically equivalent to g; editor-only
// edge metadata does not survive the round trip and is not required to.
func ToPersisted(nodes []EditableNode, edges []EditableEdge) *WorkflowGraph {
	optionsBySource := make(map[string][]NodeOption)
	for _, e := range edges {
		if e.Target == "" {
			continue
		}
		optionsBySource[e.Source] = append(optionsBySource[e.Source], NodeOption{NextNodeID: e.Target})
	}

	g := &WorkflowGraph{Nodes: []WorkflowNode{}}
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, WorkflowNode{
			ID:          n.ID,
			UserMessage: n.Data.UserMessage,
			BotReply:    n.Data.BotReply,
			Options:     optionsBySource[n.ID],
			Position:    n.Position,
		})
	}
	return g
}

// GraphFromDocument decodes a generic document (as stored in the document
// store or posted by an editor) into a typed graph.
func GraphFromDocument(doc map[string]any) (*WorkflowGraph, error) {
	var g WorkflowGraph
	if err := mapstructure.Decode(doc, &g); err != nil {
		return nil, fmt.Errorf("failed to decode workflow document: %w", err)
	}
	return &g, nil
}
