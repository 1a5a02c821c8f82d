// Package session coordinates access to chat sessions: it creates them with
// their greeting message and enforces the at-most-one in-flight send rule so
// the persisted message log never interleaves.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/replyflow/replyflow/internal/logging"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/ports"
)

// ErrSendInFlight is returned when a send is attempted while a previous one
// for the same session is still being resolved. The caller should reject or
// ignore the new send; it must not queue it.
var ErrSendInFlight = errors.New("a send is already in flight for this session")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access. It uses reference counting to
// garbage collect locks for idle sessions.
type Manager struct {
	store ports.Store

	mu    sync.Mutex
	locks map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given store.
func NewManager(store ports.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// Callers must pair it with release(sessionID).
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start creates a fresh session and immediately appends the synthetic
// greeting: the chatbot's start_message, or the default when it is blank.
// The greeting is persisted like any other bot message.
func (m *Manager) Start(ctx context.Context, chatbotID string) (*domain.ChatSession, *domain.ChatMessage, error) {
	bot, err := m.store.GetChatbot(ctx, chatbotID)
	if err != nil {
		return nil, nil, err
	}

	sess, err := m.store.CreateSession(ctx, chatbotID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	greeting := &domain.ChatMessage{
		Sender:  domain.SenderBot,
		Message: bot.StartMessage,
	}
	if greeting.Message == "" {
		greeting.Message = domain.DefaultStartMessage
	}
	if err := m.store.AppendMessage(ctx, sess.ID, greeting); err != nil {
		return nil, nil, fmt.Errorf("failed to persist greeting: %w", err)
	}

	m.logger.Info("session started", "session_id", sess.ID, "chatbot_id", chatbotID)
	return sess, greeting, nil
}

// TrySend runs fn while holding the session's lock, or fails immediately
// with ErrSendInFlight when another send holds it. Unlike a blocking lock,
// this rejects concurrent sends instead of serializing them: a send that
// arrives mid-resolution must not be queued behind the previous one.
func (m *Manager) TrySend(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	if !entry.mu.TryLock() {
		m.release(sessionID)
		m.logger.Warn("send rejected, previous send still in flight", "session_id", sessionID)
		return ErrSendInFlight
	}
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	return fn(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.Store {
	return m.store
}
