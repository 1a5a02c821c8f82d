// Package memory implements ports.Store in process memory. It is the
// default backend for tests, the CLI chat command, and single-node serving.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/replyflow/replyflow/pkg/domain"
)

// Store implements ports.Store in memory. Safe for concurrent use.
// Values are copied on read and write so callers can never mutate stored
// state through a shared pointer.
type Store struct {
	mu sync.RWMutex

	bots     map[string]domain.Chatbot
	botOrder []string

	faqs      map[string][]domain.Faq
	workflows map[string]domain.WorkflowGraph

	sessions map[string]domain.ChatSession
	messages map[string][]domain.ChatMessage
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		bots:      make(map[string]domain.Chatbot),
		faqs:      make(map[string][]domain.Faq),
		workflows: make(map[string]domain.WorkflowGraph),
		sessions:  make(map[string]domain.ChatSession),
		messages:  make(map[string][]domain.ChatMessage),
	}
}

// CreateChatbot persists a new chatbot, assigning an ID when empty.
func (s *Store) CreateChatbot(ctx context.Context, bot *domain.Chatbot) error {
	if bot.ID == "" {
		bot.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bots[bot.ID]; !exists {
		s.botOrder = append(s.botOrder, bot.ID)
	}
	s.bots[bot.ID] = *bot
	return nil
}

// GetChatbot retrieves a chatbot by id.
func (s *Store) GetChatbot(ctx context.Context, id string) (*domain.Chatbot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bot, ok := s.bots[id]
	if !ok {
		return nil, domain.ErrChatbotNotFound
	}
	ret := bot
	return &ret, nil
}

// ListChatbots returns all chatbots in creation order.
func (s *Store) ListChatbots(ctx context.Context) ([]domain.Chatbot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bots := make([]domain.Chatbot, 0, len(s.botOrder))
	for _, id := range s.botOrder {
		if bot, ok := s.bots[id]; ok {
			bots = append(bots, bot)
		}
	}
	return bots, nil
}

// DeleteChatbot removes the chatbot and cascades to its FAQs and workflow.
func (s *Store) DeleteChatbot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bots, id)
	delete(s.faqs, id)
	delete(s.workflows, id)
	for i, botID := range s.botOrder {
		if botID == id {
			s.botOrder = append(s.botOrder[:i], s.botOrder[i+1:]...)
			break
		}
	}
	return nil
}

// CreateFaq appends a FAQ to the chatbot's ordered set.
func (s *Store) CreateFaq(ctx context.Context, chatbotID string, faq *domain.Faq) error {
	if faq.ID == "" {
		faq.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bots[chatbotID]; !ok {
		return domain.ErrChatbotNotFound
	}
	s.faqs[chatbotID] = append(s.faqs[chatbotID], *faq)
	return nil
}

// ListFaqs returns the chatbot's FAQs in creation order.
func (s *Store) ListFaqs(ctx context.Context, chatbotID string) ([]domain.Faq, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	faqs := make([]domain.Faq, len(s.faqs[chatbotID]))
	copy(faqs, s.faqs[chatbotID])
	return faqs, nil
}

// DeleteFaq removes one FAQ by id.
func (s *Store) DeleteFaq(ctx context.Context, chatbotID, faqID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	faqs := s.faqs[chatbotID]
	for i, f := range faqs {
		if f.ID == faqID {
			s.faqs[chatbotID] = append(faqs[:i], faqs[i+1:]...)
			return nil
		}
	}
	return domain.ErrFaqNotFound
}

// GetWorkflow retrieves the chatbot's graph.
func (s *Store) GetWorkflow(ctx context.Context, chatbotID string) (*domain.WorkflowGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.workflows[chatbotID]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return copyGraph(&g), nil
}

// UpsertWorkflow replaces the chatbot's graph, returning 1 if a graph
// already existed and 0 if this was an insert.
func (s *Store) UpsertWorkflow(ctx context.Context, chatbotID string, g *domain.WorkflowGraph) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bots[chatbotID]; !ok {
		return 0, domain.ErrChatbotNotFound
	}

	affected := 0
	if _, exists := s.workflows[chatbotID]; exists {
		affected = 1
	}

	s.workflows[chatbotID] = *copyGraph(g)
	return affected, nil
}

// copyGraph clones a graph down to the per-node option slices, so neither
// side can reach stored state through a shared backing array.
func copyGraph(g *domain.WorkflowGraph) *domain.WorkflowGraph {
	out := &domain.WorkflowGraph{Nodes: make([]domain.WorkflowNode, len(g.Nodes))}
	copy(out.Nodes, g.Nodes)
	for i, n := range g.Nodes {
		if n.Options == nil {
			continue
		}
		out.Nodes[i].Options = make([]domain.NodeOption, len(n.Options))
		copy(out.Nodes[i].Options, n.Options)
	}
	return out
}

// CreateSession opens a fresh session for a chatbot.
func (s *Store) CreateSession(ctx context.Context, chatbotID string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bots[chatbotID]; !ok {
		return nil, domain.ErrChatbotNotFound
	}

	sess := domain.ChatSession{
		ID:        uuid.NewString(),
		ChatbotID: chatbotID,
		CreatedAt: time.Now().UTC(),
	}
	s.sessions[sess.ID] = sess
	s.messages[sess.ID] = []domain.ChatMessage{}

	ret := sess
	return &ret, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	ret := sess
	return &ret, nil
}

// AppendMessage appends to the session log. Ephemeral placeholders are
// rejected: they must never be persisted.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg *domain.ChatMessage) error {
	if msg.Ephemeral {
		return errors.New("refusing to persist ephemeral message")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.messages[sessionID] = append(s.messages[sessionID], *msg)
	return nil
}

// ListMessages returns the session log in append order.
func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, domain.ErrSessionNotFound
	}
	msgs := make([]domain.ChatMessage, len(s.messages[sessionID]))
	copy(msgs, s.messages[sessionID])
	return msgs, nil
}
