package ports

import (
	"context"

	"github.com/replyflow/replyflow/pkg/domain"
)

// Store is the document-store collaborator. Consistency guarantees are
// delegated entirely to the backing store; no transactions are assumed.
//
// Not-found conditions are reported with the sentinel errors in pkg/domain
// so callers can match them with errors.Is.
type Store interface {
	// CreateChatbot persists a new chatbot, assigning its ID when empty.
	CreateChatbot(ctx context.Context, bot *domain.Chatbot) error

	// GetChatbot returns domain.ErrChatbotNotFound for unknown IDs.
	GetChatbot(ctx context.Context, id string) (*domain.Chatbot, error)

	// ListChatbots returns all chatbots in creation order.
	ListChatbots(ctx context.Context) ([]domain.Chatbot, error)

	// DeleteChatbot removes the chatbot and everything it owns (FAQs and
	// workflow). Deleting an unknown chatbot is not an error.
	DeleteChatbot(ctx context.Context, id string) error

	// CreateFaq appends a FAQ to a chatbot's ordered set, assigning its ID
	// when empty. The chatbot must exist.
	CreateFaq(ctx context.Context, chatbotID string, faq *domain.Faq) error

	// ListFaqs returns the chatbot's FAQs in creation order. List order is
	// the match priority among duplicated questions.
	ListFaqs(ctx context.Context, chatbotID string) ([]domain.Faq, error)

	// DeleteFaq returns domain.ErrFaqNotFound for unknown FAQ IDs.
	DeleteFaq(ctx context.Context, chatbotID, faqID string) error

	// GetWorkflow returns domain.ErrWorkflowNotFound when the chatbot has
	// no graph yet.
	GetWorkflow(ctx context.Context, chatbotID string) (*domain.WorkflowGraph, error)

	// UpsertWorkflow updates the chatbot's graph if one exists, otherwise
	// inserts it. The returned count is the number of existing rows that
	// were updated (0 means inserted), which the editor uses to decide
	// whether its update fell back to an insert.
	UpsertWorkflow(ctx context.Context, chatbotID string, g *domain.WorkflowGraph) (int, error)

	// CreateSession opens a fresh session for a chatbot.
	CreateSession(ctx context.Context, chatbotID string) (*domain.ChatSession, error)

	// GetSession returns domain.ErrSessionNotFound for unknown IDs.
	GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)

	// AppendMessage durably appends one message to a session's log,
	// assigning its ID and timestamp when empty. Ephemeral messages must
	// never reach the store; implementations reject them.
	AppendMessage(ctx context.Context, sessionID string, msg *domain.ChatMessage) error

	// ListMessages returns the session's log in append order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}
