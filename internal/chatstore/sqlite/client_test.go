package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capstone-recommender/backend/internal/domain"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "chats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.InitSchema())
	return c
}

func TestAppendAndRecentRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Append(ctx, "chat-1", domain.RoleUser, fmt.Sprintf("question %d", i)))
		require.NoError(t, c.Append(ctx, "chat-1", domain.RoleAssistant, fmt.Sprintf("answer %d", i)))
	}

	turns, err := c.Recent(ctx, "chat-1", 100)
	require.NoError(t, err)
	require.Len(t, turns, 10)

	// Oldest first, alternating roles.
	require.Equal(t, "question 0", turns[0].Content)
	require.Equal(t, domain.RoleUser, turns[0].Role)
	require.Equal(t, "answer 4", turns[9].Content)
	require.Equal(t, domain.RoleAssistant, turns[9].Role)
}

func TestRecentKeepsNewestWhenLimited(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Append(ctx, "chat-1", domain.RoleUser, fmt.Sprintf("turn %d", i)))
	}

	turns, err := c.Recent(ctx, "chat-1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	require.Equal(t, "turn 7", turns[0].Content)
	require.Equal(t, "turn 9", turns[2].Content)
}

func TestRecentIsolatesChats(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, "chat-1", domain.RoleUser, "first chat"))
	require.NoError(t, c.Append(ctx, "chat-2", domain.RoleUser, "second chat"))

	turns, err := c.Recent(ctx, "chat-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Equal(t, "first chat", turns[0].Content)
}

func TestRecentEmptyChat(t *testing.T) {
	c := newTestClient(t)

	turns, err := c.Recent(context.Background(), "no-such-chat", 10)
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestRecentZeroLimit(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, "chat-1", domain.RoleUser, "x"))

	turns, err := c.Recent(ctx, "chat-1", 0)
	require.NoError(t, err)
	require.Empty(t, turns)
}

func TestChatMetadata(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateChat(ctx, "chat-1", "ML capstone ideas", "suggest a machine learning capstone"))

	chat, err := c.GetChat(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, chat)
	require.Equal(t, "ML capstone ideas", chat.Title)
	require.Zero(t, chat.MessageCount)

	require.NoError(t, c.Append(ctx, "chat-1", domain.RoleUser, "q"))
	require.NoError(t, c.Append(ctx, "chat-1", domain.RoleAssistant, "a"))

	chat, err = c.GetChat(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, 2, chat.MessageCount)
}

func TestCreateChatIdempotent(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateChat(ctx, "chat-1", "original title", "preview"))
	require.NoError(t, c.CreateChat(ctx, "chat-1", "replacement title", "preview"))

	chat, err := c.GetChat(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, "original title", chat.Title)
}

func TestGetChatMissing(t *testing.T) {
	c := newTestClient(t)

	chat, err := c.GetChat(context.Background(), "no-such-chat")
	require.NoError(t, err)
	require.Nil(t, chat)
}

func TestListChatsNewestFirst(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateChat(ctx, "chat-1", "first", ""))
	require.NoError(t, c.CreateChat(ctx, "chat-2", "second", ""))

	// Touching chat-1 bumps its last_updated past chat-2's.
	require.NoError(t, c.Append(ctx, "chat-1", domain.RoleUser, "x"))

	chats, err := c.ListChats(ctx, 10)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	require.Equal(t, "chat-1", chats[0].ID)
}
