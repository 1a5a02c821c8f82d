package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/replyflow/replyflow/pkg/adapters/memory"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/replyflow/replyflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBot(t *testing.T, store *memory.Store, startMessage string) *domain.Chatbot {
	t.Helper()
	bot := &domain.Chatbot{Name: "Test", StartMessage: startMessage}
	require.NoError(t, store.CreateChatbot(context.Background(), bot))
	return bot
}

func TestStart_PersistsGreeting(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	bot := newBot(t, store, "Welcome to support!")

	sess, greeting, err := mgr.Start(context.Background(), bot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SenderBot, greeting.Sender)
	assert.Equal(t, "Welcome to support!", greeting.Message)

	msgs, err := store.ListMessages(context.Background(), sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Welcome to support!", msgs[0].Message)
}

func TestStart_DefaultGreeting(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	bot := newBot(t, store, "")

	_, greeting, err := mgr.Start(context.Background(), bot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStartMessage, greeting.Message)
}

func TestStart_UnknownChatbot(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, _, err := mgr.Start(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrChatbotNotFound)
}

func TestTrySend_RejectsConcurrentSend(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	bot := newBot(t, store, "")
	sess, _, err := mgr.Start(context.Background(), bot.ID)
	require.NoError(t, err)

	started := make(chan struct{})
	finish := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = mgr.TrySend(context.Background(), sess.ID, func(ctx context.Context) error {
			close(started)
			<-finish
			return nil
		})
	}()

	<-started
	err = mgr.TrySend(context.Background(), sess.ID, func(ctx context.Context) error {
		t.Fatal("second send must not run while the first is in flight")
		return nil
	})
	assert.ErrorIs(t, err, session.ErrSendInFlight)

	close(finish)
	wg.Wait()

	// Once the first send completes, the session accepts sends again.
	err = mgr.TrySend(context.Background(), sess.ID, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestTrySend_IndependentSessions(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	bot := newBot(t, store, "")

	sessA, _, err := mgr.Start(context.Background(), bot.ID)
	require.NoError(t, err)
	sessB, _, err := mgr.Start(context.Background(), bot.ID)
	require.NoError(t, err)

	blockA := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = mgr.TrySend(context.Background(), sessA.ID, func(ctx context.Context) error {
			close(started)
			<-blockA
			return nil
		})
	}()
	<-started

	// A busy session A does not block session B.
	done := make(chan error, 1)
	go func() {
		done <- mgr.TrySend(context.Background(), sessB.ID, func(ctx context.Context) error {
			return nil
		})
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("send on independent session blocked")
	}

	close(blockA)
	wg.Wait()
}
