// Package redis implements ports.Store on Redis, for deployments where the
// admin UI and chat UI run as separate processes against a shared store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/replyflow/replyflow/pkg/domain"
)

// Store implements ports.Store using Redis.
//
// Key layout (under the configurable prefix):
//
//	chatbots                    LIST of chatbot IDs, in creation order
//	chatbot:<id>                JSON chatbot document
//	chatbot:<id>:faqs           LIST of JSON FAQ documents, in creation order
//	chatbot:<id>:workflow       JSON workflow graph document
//	session:<id>                JSON session document
//	session:<id>:messages       LIST of JSON message documents, append order
type Store struct {
	client     *backend.Client
	prefix     string
	sessionTTL time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithPrefix sets the key prefix for all documents.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithSessionTTL sets the expiration for sessions and their message logs.
// Sessions are per-page-visit and never resumed, so a bounded TTL keeps the
// store from accumulating dead logs. Zero means no expiration.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.sessionTTL = ttl
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "replyflow:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

func (s *Store) chatbotKey(id string) string  { return s.key("chatbot", id) }
func (s *Store) faqsKey(id string) string     { return s.key("chatbot", id, "faqs") }
func (s *Store) workflowKey(id string) string { return s.key("chatbot", id, "workflow") }
func (s *Store) sessionKey(id string) string  { return s.key("session", id) }
func (s *Store) messagesKey(id string) string { return s.key("session", id, "messages") }
func (s *Store) indexKey() string             { return s.key("chatbots") }

// CreateChatbot persists a new chatbot, assigning an ID when empty.
func (s *Store) CreateChatbot(ctx context.Context, bot *domain.Chatbot) error {
	if bot.ID == "" {
		bot.ID = uuid.NewString()
	}
	data, err := json.Marshal(bot)
	if err != nil {
		return fmt.Errorf("failed to marshal chatbot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.chatbotKey(bot.ID), data, 0)
	pipe.RPush(ctx, s.indexKey(), bot.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save chatbot: %w", err)
	}
	return nil
}

// GetChatbot retrieves a chatbot by id.
func (s *Store) GetChatbot(ctx context.Context, id string) (*domain.Chatbot, error) {
	val, err := s.client.Get(ctx, s.chatbotKey(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrChatbotNotFound
		}
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}

	var bot domain.Chatbot
	if err := json.Unmarshal([]byte(val), &bot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chatbot: %w", err)
	}
	return &bot, nil
}

// ListChatbots returns all chatbots in creation order.
func (s *Store) ListChatbots(ctx context.Context) ([]domain.Chatbot, error) {
	ids, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbots: %w", err)
	}

	bots := make([]domain.Chatbot, 0, len(ids))
	for _, id := range ids {
		bot, err := s.GetChatbot(ctx, id)
		if errors.Is(err, domain.ErrChatbotNotFound) {
			continue // index entry outlived its document
		}
		if err != nil {
			return nil, err
		}
		bots = append(bots, *bot)
	}
	return bots, nil
}

// DeleteChatbot removes the chatbot and cascades to its FAQs and workflow.
func (s *Store) DeleteChatbot(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.chatbotKey(id), s.faqsKey(id), s.workflowKey(id))
	pipe.LRem(ctx, s.indexKey(), 1, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete chatbot: %w", err)
	}
	return nil
}

// CreateFaq appends a FAQ to the chatbot's ordered set.
func (s *Store) CreateFaq(ctx context.Context, chatbotID string, faq *domain.Faq) error {
	if err := s.requireChatbot(ctx, chatbotID); err != nil {
		return err
	}
	if faq.ID == "" {
		faq.ID = uuid.NewString()
	}
	data, err := json.Marshal(faq)
	if err != nil {
		return fmt.Errorf("failed to marshal faq: %w", err)
	}
	if err := s.client.RPush(ctx, s.faqsKey(chatbotID), data).Err(); err != nil {
		return fmt.Errorf("failed to save faq: %w", err)
	}
	return nil
}

// ListFaqs returns the chatbot's FAQs in creation order.
func (s *Store) ListFaqs(ctx context.Context, chatbotID string) ([]domain.Faq, error) {
	vals, err := s.client.LRange(ctx, s.faqsKey(chatbotID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}

	faqs := make([]domain.Faq, 0, len(vals))
	for _, val := range vals {
		var f domain.Faq
		if err := json.Unmarshal([]byte(val), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	return faqs, nil
}

// DeleteFaq removes one FAQ by id.
func (s *Store) DeleteFaq(ctx context.Context, chatbotID, faqID string) error {
	vals, err := s.client.LRange(ctx, s.faqsKey(chatbotID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list faqs: %w", err)
	}

	for _, val := range vals {
		var f domain.Faq
		if err := json.Unmarshal([]byte(val), &f); err != nil {
			continue
		}
		if f.ID == faqID {
			if err := s.client.LRem(ctx, s.faqsKey(chatbotID), 1, val).Err(); err != nil {
				return fmt.Errorf("failed to delete faq: %w", err)
			}
			return nil
		}
	}
	return domain.ErrFaqNotFound
}

// GetWorkflow retrieves the chatbot's graph.
func (s *Store) GetWorkflow(ctx context.Context, chatbotID string) (*domain.WorkflowGraph, error) {
	val, err := s.client.Get(ctx, s.workflowKey(chatbotID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	var g domain.WorkflowGraph
	if err := json.Unmarshal([]byte(val), &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}
	return &g, nil
}

// UpsertWorkflow replaces the chatbot's graph, returning 1 if a graph
// already existed and 0 if this was an insert.
func (s *Store) UpsertWorkflow(ctx context.Context, chatbotID string, g *domain.WorkflowGraph) (int, error) {
	if err := s.requireChatbot(ctx, chatbotID); err != nil {
		return 0, err
	}

	existed, err := s.client.Exists(ctx, s.workflowKey(chatbotID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check workflow existence: %w", err)
	}

	data, err := json.Marshal(g)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal workflow: %w", err)
	}
	if err := s.client.Set(ctx, s.workflowKey(chatbotID), data, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to save workflow: %w", err)
	}
	return int(existed), nil
}

// CreateSession opens a fresh session for a chatbot.
func (s *Store) CreateSession(ctx context.Context, chatbotID string) (*domain.ChatSession, error) {
	if err := s.requireChatbot(ctx, chatbotID); err != nil {
		return nil, err
	}

	sess := &domain.ChatSession{
		ID:        uuid.NewString(),
		ChatbotID: chatbotID,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.sessionKey(sess.ID), data, s.sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	val, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess domain.ChatSession
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// AppendMessage appends to the session log. Ephemeral placeholders are
// rejected: they must never be persisted.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg *domain.ChatMessage) error {
	if msg.Ephemeral {
		return errors.New("refusing to persist ephemeral message")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.messagesKey(sessionID), data)
	if s.sessionTTL > 0 {
		pipe.Expire(ctx, s.messagesKey(sessionID), s.sessionTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListMessages returns the session log in append order.
func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	vals, err := s.client.LRange(ctx, s.messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	msgs := make([]domain.ChatMessage, 0, len(vals))
	for _, val := range vals {
		var m domain.ChatMessage
		if err := json.Unmarshal([]byte(val), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *Store) requireChatbot(ctx context.Context, chatbotID string) error {
	exists, err := s.client.Exists(ctx, s.chatbotKey(chatbotID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check chatbot existence: %w", err)
	}
	if exists == 0 {
		return domain.ErrChatbotNotFound
	}
	return nil
}
