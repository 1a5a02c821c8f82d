// Package resolver implements the three-tier reply resolution: exact FAQ
// match, workflow node match, then delegation to the RAG fallback.
//
// The resolver is synchronous and pure: it never touches the network or the
// store. A RAG outcome is a signal for the caller to orchestrate, not a
// completed reply.
package resolver

import "github.com/replyflow/replyflow/pkg/domain"

// Tiers, in strict priority order.
const (
	TierFaq      = "faq"
	TierWorkflow = "workflow"
	TierRAG      = "rag"
)

// Kind tags the resolution outcome.
type Kind string

const (
	// KindAnswered means a tier produced the final reply.
	KindAnswered Kind = "answered"
	// KindDelegateToRAG means no tier matched; the caller must invoke the
	// RAG collaborator with the raw message and a bounded history.
	KindDelegateToRAG Kind = "delegate_to_rag"
)

// Outcome is the terminal result of resolving one user message.
type Outcome struct {
	Kind    Kind
	Tier    string
	Reply   string
	Options []domain.UIOption
}

// Snapshot is the read-only FAQ set and workflow graph for one session,
// loaded once at session start and never refreshed mid-session. Lookup
// indices are built eagerly so Resolve does no per-call allocation work
// beyond the option slice.
type Snapshot struct {
	Faqs  []domain.Faq
	Graph *domain.WorkflowGraph

	index *domain.GraphIndex
}

// NewSnapshot builds a snapshot with its graph indices. Both arguments may
// be empty/nil: a chatbot with no FAQs and no workflow resolves everything
// to the RAG tier.
func NewSnapshot(faqs []domain.Faq, graph *domain.WorkflowGraph) *Snapshot {
	return &Snapshot{
		Faqs:  faqs,
		Graph: graph,
		index: domain.NewGraphIndex(graph),
	}
}

// Resolve runs the tiers against one user message.
//
// FAQ strictly outranks workflow, which strictly outranks RAG. FAQ matching
// is a linear scan where the first normalized match wins (list order is the
// priority among duplicates); the workflow index keeps the last node for a
// duplicated trigger. Both behaviors are load-bearing and covered by tests.
func (s *Snapshot) Resolve(input string) Outcome {
	normalized := domain.Normalize(input)

	for _, faq := range s.Faqs {
		if domain.Normalize(faq.Question) == normalized {
			return Outcome{
				Kind:    KindAnswered,
				Tier:    TierFaq,
				Reply:   faq.Answer,
				Options: []domain.UIOption{},
			}
		}
	}

	if node := s.index.NodeByUserMessage(normalized); node != nil {
		return Outcome{
			Kind:    KindAnswered,
			Tier:    TierWorkflow,
			Reply:   node.BotReply,
			Options: s.nodeOptions(node),
		}
	}

	return Outcome{
		Kind:    KindDelegateToRAG,
		Tier:    TierRAG,
		Reply:   "",
		Options: []domain.UIOption{},
	}
}

// nodeOptions maps a node's outgoing references to option buttons. Options
// whose target is missing, or whose target's trigger normalizes to empty,
// are dropped silently.
func (s *Snapshot) nodeOptions(node *domain.WorkflowNode) []domain.UIOption {
	options := []domain.UIOption{}
	for _, opt := range node.Options {
		target := s.index.NodeByID(opt.NextNodeID)
		if target == nil || domain.Normalize(target.UserMessage) == "" {
			continue
		}
		options = append(options, domain.UIOption{
			Label: target.UserMessage,
			Value: target.UserMessage,
		})
	}
	return options
}
