package replyflow

import (
	"context"
	"testing"

	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCacheBounded(t *testing.T) {
	eng := New(WithSnapshotCacheSize(2))
	ctx := context.Background()

	bot := &domain.Chatbot{Name: "Support"}
	require.NoError(t, eng.Store().CreateChatbot(ctx, bot))
	require.NoError(t, eng.Store().CreateFaq(ctx, bot.ID, &domain.Faq{Question: "hours", Answer: "9-5"}))

	first, _, err := eng.StartSession(ctx, bot.ID)
	require.NoError(t, err)
	second, _, err := eng.StartSession(ctx, bot.ID)
	require.NoError(t, err)
	third, _, err := eng.StartSession(ctx, bot.ID)
	require.NoError(t, err)

	eng.mu.Lock()
	assert.Len(t, eng.snapshots, 2, "cache must never exceed its bound")
	_, hasFirst := eng.snapshots[first.ID]
	_, hasSecond := eng.snapshots[second.ID]
	_, hasThird := eng.snapshots[third.ID]
	eng.mu.Unlock()
	assert.False(t, hasFirst, "oldest entry is evicted first")
	assert.True(t, hasSecond)
	assert.True(t, hasThird)

	// An evicted session keeps working: its snapshot is rebuilt on the
	// next send and re-pinned.
	reply, err := eng.Send(ctx, first.ID, "hours")
	require.NoError(t, err)
	assert.Equal(t, "9-5", reply.Text)

	eng.mu.Lock()
	assert.Len(t, eng.snapshots, 2)
	_, hasFirst = eng.snapshots[first.ID]
	eng.mu.Unlock()
	assert.True(t, hasFirst)
}
