package replyflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/replyflow/replyflow/internal/logging"
	"github.com/replyflow/replyflow/pkg/adapters/memory"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/ports"
	"github.com/replyflow/replyflow/pkg/resolver"
	"github.com/replyflow/replyflow/pkg/session"
)

// Version of the replyflow module.
var Version = "0.2.0"

const defaultSnapshotCacheSize = 1024

// Engine is the high-level entry point for the replyflow library. It wires
// the document store, the resolver, and the RAG collaborator behind a small
// API for hosts (HTTP server, CLI, MCP).
type Engine struct {
	store        ports.Store
	answerer     ports.Answerer
	sessions     *session.Manager
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	historyLimit int

	// One read-only snapshot per session, built at session start and never
	// refreshed mid-session. The cache is bounded: once it is full the
	// oldest entry is evicted, and an evicted session's next send rebuilds
	// its snapshot through snapshotFor, the same path a process restart
	// takes.
	mu          sync.Mutex
	snapshots   map[string]*resolver.Snapshot
	snapshotIDs []string
	snapshotCap int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a document store. Defaults to the in-memory store.
func WithStore(store ports.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithAnswerer injects the RAG collaborator client. Without one, every RAG
// delegation resolves to the apology reply.
func WithAnswerer(a ports.Answerer) Option {
	return func(e *Engine) {
		e.answerer = a
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithHistoryLimit bounds the transcript sent to the RAG collaborator.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		e.historyLimit = n
	}
}

// WithSnapshotCacheSize bounds how many per-session snapshots are kept in
// memory at once. Values below 1 are ignored.
func WithSnapshotCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.snapshotCap = n
		}
	}
}

// New initializes a new replyflow Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:       logging.NewNop(),
		historyLimit: domain.DefaultHistoryLimit,
		snapshots:    make(map[string]*resolver.Snapshot),
		snapshotCap:  defaultSnapshotCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	e.sessions = session.NewManager(e.store, session.WithLogger(e.logger))
	return e
}

// Store returns the underlying document store, for hosts that also serve
// the admin CRUD surface.
func (e *Engine) Store() ports.Store {
	return e.store
}

// Reply is the final, persisted outcome of one user message.
//
// RAGErr is non-nil when the RAG collaborator failed and the apology reply
// was substituted; the reply text is still final and persisted, and the
// error is only for surfacing to the operator.
type Reply struct {
	Text    string
	Options []domain.UIOption
	Source  string
	RAGErr  error
}

// StartSession creates a fresh session for a chatbot, persists the greeting
// message, and loads the FAQ/workflow snapshot the session will resolve
// against for its whole lifetime.
func (e *Engine) StartSession(ctx context.Context, chatbotID string) (*domain.ChatSession, *domain.ChatMessage, error) {
	sess, greeting, err := e.sessions.Start(ctx, chatbotID)
	if err != nil {
		return nil, nil, err
	}

	snap, err := e.loadSnapshot(ctx, chatbotID)
	if err != nil {
		return nil, nil, err
	}
	e.cacheSnapshot(sess.ID, snap)

	return sess, greeting, nil
}

// Send resolves one user message for a session and returns the final reply.
//
// The user message and the resulting bot message (from whichever tier,
// apology included) are durably appended to the session log before Send
// returns. Concurrent sends on the same session fail with
// session.ErrSendInFlight; the caller should surface that and drop the
// message, not queue it.
func (e *Engine) Send(ctx context.Context, sessionID, text string) (*Reply, error) {
	var reply *Reply
	err := e.sessions.TrySend(ctx, sessionID, func(ctx context.Context) error {
		var err error
		reply, err = e.resolveAndPersist(ctx, sessionID, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Messages returns a session's persisted log in append order.
func (e *Engine) Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return e.store.ListMessages(ctx, sessionID)
}

func (e *Engine) resolveAndPersist(ctx context.Context, sessionID, text string) (*Reply, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snap, err := e.snapshotFor(ctx, sess)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.ChatMessage{Sender: domain.SenderUser, Message: text}
	if err := e.store.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	outcome := snap.Resolve(text)
	if e.hooks.OnResolve != nil {
		e.hooks.OnResolve(ctx, &domain.ResolveEvent{
			SessionID: sessionID,
			ChatbotID: sess.ChatbotID,
			Input:     text,
			Tier:      outcome.Tier,
		})
	}
	e.logger.Debug("message resolved",
		"session_id", sessionID,
		"tier", outcome.Tier,
	)

	if outcome.Kind == resolver.KindAnswered {
		botMsg := &domain.ChatMessage{Sender: domain.SenderBot, Message: outcome.Reply}
		if err := e.store.AppendMessage(ctx, sessionID, botMsg); err != nil {
			return nil, fmt.Errorf("failed to persist bot message: %w", err)
		}
		return &Reply{Text: outcome.Reply, Options: outcome.Options, Source: outcome.Tier}, nil
	}

	return e.delegateToRAG(ctx, sess, text)
}

// delegateToRAG calls the collaborator with the raw message text and a
// bounded history (including the just-persisted user message). Any failure
// substitutes the fixed apology; the bot reply is persisted either way, and
// there is no retry.
func (e *Engine) delegateToRAG(ctx context.Context, sess *domain.ChatSession, text string) (*Reply, error) {
	msgs, err := e.store.ListMessages(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := resolver.BuildHistory(msgs, e.historyLimit)

	if e.hooks.OnRAGCall != nil {
		e.hooks.OnRAGCall(ctx, &domain.RAGEvent{SessionID: sess.ID, ChatbotID: sess.ChatbotID})
	}

	start := time.Now()
	var ragErr error
	var answer *domain.RAGAnswer
	if e.answerer == nil {
		ragErr = errors.New("no RAG backend configured")
	} else {
		answer, ragErr = e.answerer.Ask(ctx, sess.ChatbotID, text, history)
	}

	if e.hooks.OnRAGReturn != nil {
		e.hooks.OnRAGReturn(ctx, &domain.RAGEvent{
			SessionID: sess.ID,
			ChatbotID: sess.ChatbotID,
			Duration:  time.Since(start),
			IsError:   ragErr != nil,
		})
	}

	replyText := domain.RAGApology
	if ragErr == nil {
		replyText = answer.Answer
	} else {
		e.logger.Warn("rag call failed, substituting apology",
			"session_id", sess.ID,
			"err", ragErr,
		)
	}

	botMsg := &domain.ChatMessage{Sender: domain.SenderBot, Message: replyText}
	if err := e.store.AppendMessage(ctx, sess.ID, botMsg); err != nil {
		return nil, fmt.Errorf("failed to persist bot message: %w", err)
	}

	return &Reply{
		Text:    replyText,
		Options: []domain.UIOption{},
		Source:  resolver.TierRAG,
		RAGErr:  ragErr,
	}, nil
}

// snapshotFor returns the session's snapshot, rebuilding it when the
// process did not see the session start (e.g. after a restart with a
// durable store). The rebuilt snapshot is then pinned for the session.
func (e *Engine) snapshotFor(ctx context.Context, sess *domain.ChatSession) (*resolver.Snapshot, error) {
	e.mu.Lock()
	snap, ok := e.snapshots[sess.ID]
	e.mu.Unlock()
	if ok {
		return snap, nil
	}

	snap, err := e.loadSnapshot(ctx, sess.ChatbotID)
	if err != nil {
		return nil, err
	}
	e.cacheSnapshot(sess.ID, snap)
	return snap, nil
}

// cacheSnapshot pins a session's snapshot, evicting the oldest entries when
// the cache is full.
func (e *Engine) cacheSnapshot(sessionID string, snap *resolver.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.snapshots[sessionID]; !ok {
		e.snapshotIDs = append(e.snapshotIDs, sessionID)
	}
	e.snapshots[sessionID] = snap

	for len(e.snapshots) > e.snapshotCap && len(e.snapshotIDs) > 0 {
		oldest := e.snapshotIDs[0]
		e.snapshotIDs = e.snapshotIDs[1:]
		delete(e.snapshots, oldest)
	}
}

func (e *Engine) loadSnapshot(ctx context.Context, chatbotID string) (*resolver.Snapshot, error) {
	faqs, err := e.store.ListFaqs(ctx, chatbotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load faqs: %w", err)
	}

	graph, err := e.store.GetWorkflow(ctx, chatbotID)
	if errors.Is(err, domain.ErrWorkflowNotFound) {
		graph = nil // a chatbot without a workflow resolves FAQ-then-RAG
	} else if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	return resolver.NewSnapshot(faqs, graph), nil
}
