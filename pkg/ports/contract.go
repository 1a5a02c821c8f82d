package ports

import (
	"context"
	"testing"

	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract runs a suite of tests to verify that a Store
// implementation adheres to the defined interface contract. Every store
// adapter's test file should call it.
func RunStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("Chatbot CRUD", func(t *testing.T) {
		bot := &domain.Chatbot{Name: "Support", StartMessage: "Hello!"}
		require.NoError(t, store.CreateChatbot(ctx, bot))
		require.NotEmpty(t, bot.ID, "CreateChatbot should assign an ID")

		loaded, err := store.GetChatbot(ctx, bot.ID)
		require.NoError(t, err)
		assert.Equal(t, "Support", loaded.Name)
		assert.Equal(t, "Hello!", loaded.StartMessage)

		_, err = store.GetChatbot(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrChatbotNotFound)

		bots, err := store.ListChatbots(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, bots)

		require.NoError(t, store.DeleteChatbot(ctx, bot.ID))
		_, err = store.GetChatbot(ctx, bot.ID)
		assert.ErrorIs(t, err, domain.ErrChatbotNotFound)

		// Idempotent delete.
		assert.NoError(t, store.DeleteChatbot(ctx, bot.ID))
	})

	t.Run("Faq ordering", func(t *testing.T) {
		bot := &domain.Chatbot{Name: "Faq bot"}
		require.NoError(t, store.CreateChatbot(ctx, bot))

		first := &domain.Faq{Question: "hours", Answer: "9-5"}
		second := &domain.Faq{Question: "address", Answer: "main st"}
		require.NoError(t, store.CreateFaq(ctx, bot.ID, first))
		require.NoError(t, store.CreateFaq(ctx, bot.ID, second))
		require.NotEmpty(t, first.ID)

		faqs, err := store.ListFaqs(ctx, bot.ID)
		require.NoError(t, err)
		require.Len(t, faqs, 2)
		assert.Equal(t, "hours", faqs[0].Question, "list order must be creation order")
		assert.Equal(t, "address", faqs[1].Question)

		require.NoError(t, store.DeleteFaq(ctx, bot.ID, first.ID))
		faqs, err = store.ListFaqs(ctx, bot.ID)
		require.NoError(t, err)
		require.Len(t, faqs, 1)
		assert.Equal(t, "address", faqs[0].Question)

		assert.ErrorIs(t, store.DeleteFaq(ctx, bot.ID, "missing"), domain.ErrFaqNotFound)
	})

	t.Run("Faq requires chatbot", func(t *testing.T) {
		err := store.CreateFaq(ctx, "missing", &domain.Faq{Question: "q", Answer: "a"})
		assert.ErrorIs(t, err, domain.ErrChatbotNotFound)
	})

	t.Run("Workflow upsert", func(t *testing.T) {
		bot := &domain.Chatbot{Name: "Flow bot"}
		require.NoError(t, store.CreateChatbot(ctx, bot))

		_, err := store.GetWorkflow(ctx, bot.ID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

		g := &domain.WorkflowGraph{Nodes: []domain.WorkflowNode{
			{ID: "n1", UserMessage: "hi", BotReply: "hello"},
		}}
		affected, err := store.UpsertWorkflow(ctx, bot.ID, g)
		require.NoError(t, err)
		assert.Equal(t, 0, affected, "first upsert inserts")

		g.Nodes[0].BotReply = "hello there"
		affected, err = store.UpsertWorkflow(ctx, bot.ID, g)
		require.NoError(t, err)
		assert.Equal(t, 1, affected, "second upsert updates")

		loaded, err := store.GetWorkflow(ctx, bot.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Nodes, 1)
		assert.Equal(t, "hello there", loaded.Nodes[0].BotReply)
	})

	t.Run("Cascade delete", func(t *testing.T) {
		bot := &domain.Chatbot{Name: "Doomed"}
		require.NoError(t, store.CreateChatbot(ctx, bot))
		require.NoError(t, store.CreateFaq(ctx, bot.ID, &domain.Faq{Question: "q", Answer: "a"}))
		_, err := store.UpsertWorkflow(ctx, bot.ID, &domain.WorkflowGraph{})
		require.NoError(t, err)

		require.NoError(t, store.DeleteChatbot(ctx, bot.ID))

		_, err = store.GetWorkflow(ctx, bot.ID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
		faqs, err := store.ListFaqs(ctx, bot.ID)
		require.NoError(t, err)
		assert.Empty(t, faqs)
	})

	t.Run("Sessions and messages", func(t *testing.T) {
		bot := &domain.Chatbot{Name: "Chat bot"}
		require.NoError(t, store.CreateChatbot(ctx, bot))

		sess, err := store.CreateSession(ctx, bot.ID)
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)
		assert.Equal(t, bot.ID, sess.ChatbotID)
		assert.False(t, sess.CreatedAt.IsZero())

		loaded, err := store.GetSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, loaded.ID)

		_, err = store.GetSession(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		msg1 := &domain.ChatMessage{Sender: domain.SenderBot, Message: "welcome"}
		msg2 := &domain.ChatMessage{Sender: domain.SenderUser, Message: "hi"}
		require.NoError(t, store.AppendMessage(ctx, sess.ID, msg1))
		require.NoError(t, store.AppendMessage(ctx, sess.ID, msg2))
		require.NotEmpty(t, msg1.ID)
		assert.False(t, msg1.CreatedAt.IsZero())

		msgs, err := store.ListMessages(ctx, sess.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "welcome", msgs[0].Message, "log must keep append order")
		assert.Equal(t, "hi", msgs[1].Message)
	})

	t.Run("Ephemeral messages rejected", func(t *testing.T) {
		bot := &domain.Chatbot{Name: "Strict bot"}
		require.NoError(t, store.CreateChatbot(ctx, bot))
		sess, err := store.CreateSession(ctx, bot.ID)
		require.NoError(t, err)

		err = store.AppendMessage(ctx, sess.ID, &domain.ChatMessage{
			Sender: domain.SenderBot, Message: "Thinking...", Ephemeral: true,
		})
		assert.Error(t, err, "placeholders must never be persisted")
	})

	t.Run("Session requires chatbot", func(t *testing.T) {
		_, err := store.CreateSession(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrChatbotNotFound)
	})

	t.Run("Append requires session", func(t *testing.T) {
		err := store.AppendMessage(ctx, "missing", &domain.ChatMessage{
			Sender: domain.SenderUser, Message: "hi",
		})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
