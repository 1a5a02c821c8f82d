package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/ports"
	"gopkg.in/yaml.v3"
)

// BotFile is the on-disk definition of a chatbot: identity, FAQs and
// workflow in one YAML document, for seeding a store from the CLI.
type BotFile struct {
	Name         string        `yaml:"name"`
	StartMessage string        `yaml:"start_message"`
	Faqs         []BotFileFaq  `yaml:"faqs"`
	Workflow     *BotFileGraph `yaml:"workflow"`
}

type BotFileFaq struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type BotFileGraph struct {
	Nodes []BotFileNode `yaml:"nodes"`
}

type BotFileNode struct {
	ID          string   `yaml:"id"`
	UserMessage string   `yaml:"userMessage"`
	BotReply    string   `yaml:"botReply"`
	Next        []string `yaml:"next"`
}

// LoadBotFile reads and validates a bot definition from path.
func LoadBotFile(path string) (*BotFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot file: %w", err)
	}

	var bf BotFile
	if err := yaml.Unmarshal(raw, &bf); err != nil {
		return nil, fmt.Errorf("failed to parse bot file: %w", err)
	}

	if bf.Name == "" {
		return nil, fmt.Errorf("bot file %s: name is required", path)
	}
	for i, f := range bf.Faqs {
		if f.Question == "" || f.Answer == "" {
			return nil, fmt.Errorf("bot file %s: faq %d needs question and answer", path, i)
		}
	}
	if bf.Workflow != nil {
		seen := map[string]bool{}
		for i, n := range bf.Workflow.Nodes {
			if n.ID == "" {
				return nil, fmt.Errorf("bot file %s: workflow node %d needs an id", path, i)
			}
			if seen[n.ID] {
				return nil, fmt.Errorf("bot file %s: duplicate workflow node id %q", path, n.ID)
			}
			seen[n.ID] = true
		}
	}
	return &bf, nil
}

// Seed writes the bot definition into the store and returns the created
// chatbot.
func (bf *BotFile) Seed(ctx context.Context, store ports.Store) (*domain.Chatbot, error) {
	bot := &domain.Chatbot{Name: bf.Name, StartMessage: bf.StartMessage}
	if err := store.CreateChatbot(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to create chatbot: %w", err)
	}

	for _, f := range bf.Faqs {
		faq := &domain.Faq{Question: f.Question, Answer: f.Answer}
		if err := store.CreateFaq(ctx, bot.ID, faq); err != nil {
			return nil, fmt.Errorf("failed to create faq %q: %w", f.Question, err)
		}
	}

	if bf.Workflow != nil {
		if _, err := store.UpsertWorkflow(ctx, bot.ID, bf.Workflow.toGraph()); err != nil {
			return nil, fmt.Errorf("failed to store workflow: %w", err)
		}
	}
	return bot, nil
}

func (g *BotFileGraph) toGraph() *domain.WorkflowGraph {
	out := &domain.WorkflowGraph{Nodes: []domain.WorkflowNode{}}
	for _, n := range g.Nodes {
		node := domain.WorkflowNode{
			ID:          n.ID,
			UserMessage: n.UserMessage,
			BotReply:    n.BotReply,
		}
		for _, next := range n.Next {
			node.Options = append(node.Options, domain.NodeOption{NextNodeID: next})
		}
		out.Nodes = append(out.Nodes, node)
	}
	return out
}
