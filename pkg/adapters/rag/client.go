// Package rag is the HTTP client for the external retrieval-augmented
// generation service that answers messages no FAQ or workflow node matched.
//
// The service's internals (OCR, chunking, embeddings, vector search, LLM
// prompting) are a black box; this client only speaks the /chat/rag
// endpoint contract and treats everything unexpected as a failure.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/replyflow/replyflow/pkg/domain"
)

// ErrContract is returned when the service responds with a payload that
// violates the endpoint contract (e.g. a missing or non-string answer).
// Callers treat it exactly like a transport failure.
var ErrContract = errors.New("rag: response violates contract")

const defaultTimeout = 60 * time.Second

// Client talks to the RAG service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout bounds each call; expiry is a RAG failure like any other.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask posts the raw user message and bounded history to /chat/rag.
// Implements ports.Answerer.
func (c *Client) Ask(ctx context.Context, chatbotID, userMessage string, history []domain.HistoryItem) (*domain.RAGAnswer, error) {
	if history == nil {
		history = []domain.HistoryItem{}
	}
	body, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("rag: failed to marshal history: %w", err)
	}

	endpoint := fmt.Sprintf("%s/chat/rag?%s", c.baseURL, url.Values{
		"chatbot_id":   {chatbotID},
		"user_message": {userMessage},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rag: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rag: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rag: unexpected status %d", resp.StatusCode)
	}

	// Decode with a raw answer field so a non-string answer is detected as
	// a contract violation rather than a generic decode error.
	var payload struct {
		Answer  json.RawMessage    `json:"answer"`
		Sources []domain.RAGSource `json:"sources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContract, err)
	}

	// json.Unmarshal treats a JSON null as a no-op on the target, so it
	// must be rejected explicitly alongside the absent case.
	var answer string
	if payload.Answer == nil || string(payload.Answer) == "null" ||
		json.Unmarshal(payload.Answer, &answer) != nil {
		return nil, fmt.Errorf("%w: missing or non-string answer field", ErrContract)
	}

	return &domain.RAGAnswer{Answer: answer, Sources: payload.Sources}, nil
}

// Health probes the service's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("rag: failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rag: health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rag: health check returned status %d", resp.StatusCode)
	}
	return nil
}
