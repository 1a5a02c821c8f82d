package domain

import "time"

// Sender values for chat messages.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// History roles sent to the RAG collaborator.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession is created fresh on every chat load and never survives a
// reload. It owns an ordered, append-only message log.
type ChatSession struct {
	ID        string    `json:"id"`
	ChatbotID string    `json:"chatbot_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one entry of a session's log. Messages are append-only:
// they are never updated after creation.
//
// Ephemeral marks a transient placeholder (e.g. a "thinking" indicator).
// Ephemeral messages must never be persisted and are excluded from RAG
// history.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Ephemeral bool      `json:"-"`
}

// UIOption is an ephemeral option button derived at resolution time from a
// matched node's outgoing options. Label and Value are both the target
// node's UserMessage: clicking an option is indistinguishable from typing
// that exact phrase.
type UIOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// HistoryItem is one role-tagged entry of the transcript sent to the RAG
// collaborator.
type HistoryItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RAGSource is a retrieved chunk cited by a RAG answer.
type RAGSource struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Filename string  `json:"filename"`
}

// RAGAnswer is the successful response of the RAG collaborator.
type RAGAnswer struct {
	Answer  string      `json:"answer"`
	Sources []RAGSource `json:"sources,omitempty"`
}
