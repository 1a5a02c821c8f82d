package ports

import (
	"context"

	"github.com/replyflow/replyflow/pkg/domain"
)

// Answerer is the RAG collaborator behind the fallback tier. It receives
// the raw (non-normalized) user message plus a bounded, role-tagged history.
//
// Any error, including timeouts and contract violations, is treated by the
// caller as a RAG failure: the apology reply is substituted and persisted,
// with no retry.
type Answerer interface {
	Ask(ctx context.Context, chatbotID, userMessage string, history []domain.HistoryItem) (*domain.RAGAnswer, error)
}
