package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/replyflow/replyflow/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBotFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBotFile(t *testing.T) {
	path := writeBotFile(t, `
name: Support
start_message: "Welcome!"
faqs:
  - question: hours
    answer: "9-5"
workflow:
  nodes:
    - id: node1
      userMessage: order status
      botReply: "enter order #"
      next: [node2]
    - id: node2
      userMessage: talk to support
      botReply: connecting
`)

	bf, err := LoadBotFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Support", bf.Name)
	assert.Equal(t, "Welcome!", bf.StartMessage)
	require.Len(t, bf.Faqs, 1)
	require.NotNil(t, bf.Workflow)
	require.Len(t, bf.Workflow.Nodes, 2)
	assert.Equal(t, []string{"node2"}, bf.Workflow.Nodes[0].Next)
}

func TestLoadBotFile_Validation(t *testing.T) {
	cases := map[string]string{
		"missing name":       "start_message: hi",
		"faq without answer": "name: x\nfaqs:\n  - question: q",
		"node without id":    "name: x\nworkflow:\n  nodes:\n    - userMessage: m",
		"duplicate node id":  "name: x\nworkflow:\n  nodes:\n    - id: a\n    - id: a",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadBotFile(writeBotFile(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadBotFile_Missing(t *testing.T) {
	_, err := LoadBotFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestBotFileSeed(t *testing.T) {
	bf := &BotFile{
		Name:         "Support",
		StartMessage: "hi",
		Faqs:         []BotFileFaq{{Question: "hours", Answer: "9-5"}},
		Workflow: &BotFileGraph{Nodes: []BotFileNode{
			{ID: "node1", UserMessage: "order status", BotReply: "enter order #", Next: []string{"node2"}},
			{ID: "node2", UserMessage: "talk to support", BotReply: "connecting"},
		}},
	}

	store := memory.NewStore()
	ctx := context.Background()
	bot, err := bf.Seed(ctx, store)
	require.NoError(t, err)
	require.NotEmpty(t, bot.ID)

	faqs, err := store.ListFaqs(ctx, bot.ID)
	require.NoError(t, err)
	assert.Len(t, faqs, 1)

	g, err := store.GetWorkflow(ctx, bot.ID)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Nodes[0].Options, 1)
	assert.Equal(t, "node2", g.Nodes[0].Options[0].NextNodeID)
}

func TestCreateStore(t *testing.T) {
	store, err := CreateStore(Options{Backend: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = CreateStore(Options{Backend: "postgres"})
	assert.Error(t, err)
}
