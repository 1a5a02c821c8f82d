package domain

import (
	"context"
	"time"
)

// ResolveEvent describes the outcome of one resolver pass.
type ResolveEvent struct {
	SessionID string `json:"session_id"`
	ChatbotID string `json:"chatbot_id"`
	Input     string `json:"input"`
	Tier      string `json:"tier"`
}

// RAGEvent describes one call to the RAG collaborator.
type RAGEvent struct {
	SessionID string        `json:"session_id"`
	ChatbotID string        `json:"chatbot_id"`
	Duration  time.Duration `json:"duration"`
	IsError   bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for host observability (logging,
// metrics). All hooks are optional.
type LifecycleHooks struct {
	OnResolve   func(context.Context, *ResolveEvent)
	OnRAGCall   func(context.Context, *RAGEvent)
	OnRAGReturn func(context.Context, *RAGEvent)
}
