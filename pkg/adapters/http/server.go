// Package http exposes the admin (chatbot/FAQ/workflow CRUD) and chat
// (session/message) surfaces over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/replyflow/replyflow"
	"github.com/replyflow/replyflow/internal/logging"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/ports"
	"github.com/replyflow/replyflow/pkg/session"
)

// Engine defines the chat orchestration interface the server needs.
type Engine interface {
	StartSession(ctx context.Context, chatbotID string) (*domain.ChatSession, *domain.ChatMessage, error)
	Send(ctx context.Context, sessionID, text string) (*replyflow.Reply, error)
	Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

// Server routes the admin and chat surfaces onto an Engine and its store.
type Server struct {
	engine Engine
	store  ports.Store
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server, *chi.Mux)

// WithLogger sets the request-handling logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server, _ *chi.Mux) {
		s.logger = logger
	}
}

// WithMetricsRegistry mounts /metrics for the given registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(_ *Server, r *chi.Mux) {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
}

// NewHandler creates the HTTP handler for the engine and store.
func NewHandler(engine Engine, store ports.Store, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		store:  store,
		logger: logging.NewNop(),
	}
	r := chi.NewRouter()
	for _, opt := range opts {
		opt(s, r)
	}

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)

	r.Route("/chatbots", func(r chi.Router) {
		r.Post("/", s.createChatbot)
		r.Get("/", s.listChatbots)
		r.Route("/{chatbotID}", func(r chi.Router) {
			r.Get("/", s.getChatbot)
			r.Delete("/", s.deleteChatbot)

			r.Post("/faqs", s.createFaq)
			r.Get("/faqs", s.listFaqs)
			r.Delete("/faqs/{faqID}", s.deleteFaq)

			r.Get("/workflow", s.getWorkflow)
			r.Put("/workflow", s.putWorkflow)
			r.Get("/workflow/editable", s.getEditableWorkflow)
			r.Put("/workflow/editable", s.putEditableWorkflow)

			r.Post("/sessions", s.createSession)
		})
	})

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/messages", s.listMessages)
		r.Post("/messages", s.postMessage)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "replyflow-http",
		"version": strings.TrimSpace(replyflow.Version),
	})
}

// -- Chatbots --

func (s *Server) createChatbot(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string `json:"name"`
		StartMessage string `json:"start_message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	bot := &domain.Chatbot{Name: body.Name, StartMessage: body.StartMessage}
	if err := s.store.CreateChatbot(r.Context(), bot); err != nil {
		s.serverError(w, "create chatbot failed", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, bot)
}

func (s *Server) listChatbots(w http.ResponseWriter, r *http.Request) {
	bots, err := s.store.ListChatbots(r.Context())
	if err != nil {
		s.serverError(w, "list chatbots failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, bots)
}

func (s *Server) getChatbot(w http.ResponseWriter, r *http.Request) {
	bot, err := s.store.GetChatbot(r.Context(), chi.URLParam(r, "chatbotID"))
	if err != nil {
		s.storeError(w, "get chatbot failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, bot)
}

func (s *Server) deleteChatbot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteChatbot(r.Context(), chi.URLParam(r, "chatbotID")); err != nil {
		s.serverError(w, "delete chatbot failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- FAQs --

func (s *Server) createFaq(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Question) == "" || strings.TrimSpace(body.Answer) == "" {
		s.writeError(w, http.StatusBadRequest, "question and answer are required")
		return
	}

	faq := &domain.Faq{Question: body.Question, Answer: body.Answer}
	if err := s.store.CreateFaq(r.Context(), chi.URLParam(r, "chatbotID"), faq); err != nil {
		s.storeError(w, "create faq failed", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, faq)
}

func (s *Server) listFaqs(w http.ResponseWriter, r *http.Request) {
	faqs, err := s.store.ListFaqs(r.Context(), chi.URLParam(r, "chatbotID"))
	if err != nil {
		s.serverError(w, "list faqs failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, faqs)
}

func (s *Server) deleteFaq(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteFaq(r.Context(), chi.URLParam(r, "chatbotID"), chi.URLParam(r, "faqID"))
	if err != nil {
		s.storeError(w, "delete faq failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Workflow --

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GetWorkflow(r.Context(), chi.URLParam(r, "chatbotID"))
	if err != nil {
		s.storeError(w, "get workflow failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, g)
}

func (s *Server) putWorkflow(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g, err := domain.GraphFromDocument(doc)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpsertWorkflow(r.Context(), chi.URLParam(r, "chatbotID"), g)
	if err != nil {
		s.storeError(w, "upsert workflow failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) getEditableWorkflow(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.GetWorkflow(r.Context(), chi.URLParam(r, "chatbotID"))
	if errors.Is(err, domain.ErrWorkflowNotFound) {
		g = nil // the editor opens an empty canvas
	} else if err != nil {
		s.storeError(w, "get workflow failed", err)
		return
	}

	nodes, edges := domain.ToEditable(g)
	s.writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes, "edges": edges})
}

func (s *Server) putEditableWorkflow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nodes []domain.EditableNode `json:"nodes"`
		Edges []domain.EditableEdge `json:"edges"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g := domain.ToPersisted(body.Nodes, body.Edges)
	updated, err := s.store.UpsertWorkflow(r.Context(), chi.URLParam(r, "chatbotID"), g)
	if err != nil {
		s.storeError(w, "upsert workflow failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// -- Chat --

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, greeting, err := s.engine.StartSession(r.Context(), chi.URLParam(r, "chatbotID"))
	if err != nil {
		s.storeError(w, "start session failed", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"session":  sess,
		"messages": []domain.ChatMessage{*greeting},
	})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.engine.Messages(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.storeError(w, "list messages failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, msgs)
}

// messageResponse is the chat UI's reply payload. Error carries the
// operator-visible cause when the apology was substituted; the reply text
// is final and already persisted either way.
type messageResponse struct {
	Reply   string            `json:"reply"`
	Options []domain.UIOption `json:"options"`
	Source  string            `json:"source"`
	Error   string            `json:"error,omitempty"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	reply, err := s.engine.Send(r.Context(), sessionID, body.Message)
	if errors.Is(err, session.ErrSendInFlight) {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.storeError(w, "send failed", err)
		return
	}

	resp := messageResponse{
		Reply:   reply.Text,
		Options: reply.Options,
		Source:  reply.Source,
	}
	if reply.RAGErr != nil {
		resp.Error = reply.RAGErr.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// -- Helpers --

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// storeError maps sentinel not-found errors to 404 and everything else to 500.
func (s *Server) storeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrChatbotNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrWorkflowNotFound),
		errors.Is(err, domain.ErrFaqNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.serverError(w, msg, err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "err", err)
	s.writeError(w, http.StatusInternalServerError, msg)
}
