package resolver

import (
	"strings"

	"github.com/replyflow/replyflow/pkg/domain"
)

// BuildHistory derives the bounded, role-tagged transcript sent to the RAG
// collaborator from a session's message log.
//
// maxItems is clamped to [0, domain.MaxHistoryLimit]; 0 yields an empty
// sequence. Ephemeral placeholders and whitespace-only messages are dropped,
// sender "user" maps to role "user" and everything else to "assistant", and
// only the last maxItems entries survive, in chronological order.
//
// Pure: safe to call speculatively before the triggering message is
// persisted, as long as the caller includes it in the input.
func BuildHistory(messages []domain.ChatMessage, maxItems int) []domain.HistoryItem {
	if maxItems < 0 {
		maxItems = 0
	}
	if maxItems > domain.MaxHistoryLimit {
		maxItems = domain.MaxHistoryLimit
	}

	items := []domain.HistoryItem{}
	if maxItems == 0 {
		return items
	}

	for _, m := range messages {
		if m.Ephemeral || strings.TrimSpace(m.Message) == "" {
			continue
		}
		role := domain.RoleAssistant
		if m.Sender == domain.SenderUser {
			role = domain.RoleUser
		}
		items = append(items, domain.HistoryItem{Role: role, Content: m.Message})
	}

	if len(items) > maxItems {
		items = items[len(items)-maxItems:]
	}
	return items
}
