package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *WorkflowGraph {
	return &WorkflowGraph{
		Nodes: []WorkflowNode{
			{
				ID:          "n1",
				UserMessage: "order status",
				BotReply:    "enter order #",
				Options:     []NodeOption{{NextNodeID: "n2"}, {NextNodeID: "n3"}},
				Position:    Position{X: 10, Y: 20},
			},
			{ID: "n2", UserMessage: "talk to support", BotReply: "connecting"},
			{ID: "n3", UserMessage: "track package", BotReply: "tracking"},
		},
	}
}

func TestToEditable(t *testing.T) {
	nodes, edges := ToEditable(sampleGraph())

	require.Len(t, nodes, 3)
	assert.Equal(t, "n1", nodes[0].ID)
	assert.Equal(t, Position{X: 10, Y: 20}, nodes[0].Position)
	assert.Equal(t, "order status", nodes[0].Data.UserMessage)
	assert.Equal(t, "enter order #", nodes[0].Data.BotReply)

	require.Len(t, edges, 2)
	assert.Equal(t, EditableEdge{ID: "e-n1-n2-0", Source: "n1", Target: "n2"}, edges[0])
	assert.Equal(t, EditableEdge{ID: "e-n1-n3-1", Source: "n1", Target: "n3"}, edges[1])
}

func TestToEditable_DanglingEdgePreserved(t *testing.T) {
	g := &WorkflowGraph{
		Nodes: []WorkflowNode{
			{ID: "n1", UserMessage: "hi", Options: []NodeOption{{NextNodeID: "deleted"}}},
		},
	}
	_, edges := ToEditable(g)

	// The editor needs to see the broken edge to fix it.
	require.Len(t, edges, 1)
	assert.Equal(t, "deleted", edges[0].Target)
}

func TestToEditable_EmptyTargetSkipped(t *testing.T) {
	g := &WorkflowGraph{
		Nodes: []WorkflowNode{
			{ID: "n1", Options: []NodeOption{{NextNodeID: ""}, {NextNodeID: "n1"}}},
		},
	}
	_, edges := ToEditable(g)
	require.Len(t, edges, 1)
	// Ordinal keeps its original position even after the skip.
	assert.Equal(t, "e-n1-n1-1", edges[0].ID)
}

func TestToEditable_DuplicateSourceTargetPairs(t *testing.T) {
	g := &WorkflowGraph{
		Nodes: []WorkflowNode{
			{ID: "a", Options: []NodeOption{{NextNodeID: "b"}, {NextNodeID: "b"}}},
		},
	}
	_, edges := ToEditable(g)
	require.Len(t, edges, 2)
	assert.NotEqual(t, edges[0].ID, edges[1].ID)
}

func TestToPersisted(t *testing.T) {
	nodes := []EditableNode{
		{ID: "n1", Position: Position{X: 1, Y: 2}, Data: NodeData{UserMessage: "hi", BotReply: "hello"}},
		{ID: "n2", Data: NodeData{UserMessage: "bye", BotReply: "goodbye"}},
	}
	edges := []EditableEdge{
		{ID: "e1", Source: "n1", Target: "n2"},
		{ID: "e2", Source: "n1", Target: "n1"},
		{ID: "e3", Source: "ghost", Target: "n2"}, // unknown source, dropped
		{ID: "e4", Source: "n2", Target: ""},      // empty target, dropped
	}

	g := ToPersisted(nodes, edges)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, Position{X: 1, Y: 2}, g.Nodes[0].Position)
	// Edge insertion order becomes option order.
	assert.Equal(t, []NodeOption{{NextNodeID: "n2"}, {NextNodeID: "n1"}}, g.Nodes[0].Options)
	assert.Empty(t, g.Nodes[1].Options)
}

func TestRoundTrip_PreservesGraph(t *testing.T) {
	g := sampleGraph()
	nodes, edges := ToEditable(g)
	back := ToPersisted(nodes, edges)

	require.Len(t, back.Nodes, len(g.Nodes))
	for i, n := range g.Nodes {
		assert.Equal(t, n.ID, back.Nodes[i].ID)
		assert.Equal(t, n.UserMessage, back.Nodes[i].UserMessage)
		assert.Equal(t, n.BotReply, back.Nodes[i].BotReply)
		assert.Equal(t, n.Position, back.Nodes[i].Position)
		assert.ElementsMatch(t, n.Options, back.Nodes[i].Options)
	}
}

func TestGraphFromDocument(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"id":          "n1",
				"userMessage": "hi",
				"botReply":    "hello",
				"options":     []any{map[string]any{"nextNodeId": "n2"}},
				"position":    map[string]any{"x": 5.0, "y": 7.0},
			},
		},
	}

	g, err := GraphFromDocument(doc)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "hi", g.Nodes[0].UserMessage)
	assert.Equal(t, []NodeOption{{NextNodeID: "n2"}}, g.Nodes[0].Options)
	assert.Equal(t, Position{X: 5, Y: 7}, g.Nodes[0].Position)
}

func TestGraphFromDocument_BadShape(t *testing.T) {
	_, err := GraphFromDocument(map[string]any{"nodes": "not-a-list"})
	assert.Error(t, err)
}
