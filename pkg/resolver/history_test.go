package resolver_test

import (
	"fmt"
	"testing"

	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHistory_RoleMapping(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Sender: domain.SenderBot, Message: "welcome"},
		{Sender: domain.SenderUser, Message: "hi"},
		{Sender: "system", Message: "note"}, // unknown senders become assistant
	}

	history := resolver.BuildHistory(msgs, 10)
	require.Len(t, history, 3)
	assert.Equal(t, domain.HistoryItem{Role: "assistant", Content: "welcome"}, history[0])
	assert.Equal(t, domain.HistoryItem{Role: "user", Content: "hi"}, history[1])
	assert.Equal(t, "assistant", history[2].Role)
}

func TestBuildHistory_FiltersEphemeralAndBlank(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Sender: domain.SenderUser, Message: "hi"},
		{Sender: domain.SenderBot, Message: "Thinking...", Ephemeral: true},
		{Sender: domain.SenderBot, Message: "   "},
		{Sender: domain.SenderBot, Message: ""},
		{Sender: domain.SenderBot, Message: "hello"},
	}

	history := resolver.BuildHistory(msgs, 10)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "hello", history[1].Content)
}

func TestBuildHistory_KeepsLastN_InOrder(t *testing.T) {
	var msgs []domain.ChatMessage
	for i := 0; i < 10; i++ {
		msgs = append(msgs, domain.ChatMessage{
			Sender:  domain.SenderUser,
			Message: fmt.Sprintf("m%d", i),
		})
	}

	history := resolver.BuildHistory(msgs, 3)
	require.Len(t, history, 3)
	assert.Equal(t, "m7", history[0].Content)
	assert.Equal(t, "m8", history[1].Content)
	assert.Equal(t, "m9", history[2].Content)
}

func TestBuildHistory_Clamping(t *testing.T) {
	msgs := make([]domain.ChatMessage, 100)
	for i := range msgs {
		msgs[i] = domain.ChatMessage{Sender: domain.SenderUser, Message: "x"}
	}

	assert.Empty(t, resolver.BuildHistory(msgs, 0))
	assert.Empty(t, resolver.BuildHistory(msgs, -5))
	assert.Len(t, resolver.BuildHistory(msgs, 1000), domain.MaxHistoryLimit)
}

func TestBuildHistory_Idempotent(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Sender: domain.SenderUser, Message: "a"},
		{Sender: domain.SenderBot, Message: "b"},
	}
	first := resolver.BuildHistory(msgs, 5)
	second := resolver.BuildHistory(msgs, 5)
	assert.Equal(t, first, second)
}
