package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateChars(t *testing.T) {
	require.Equal(t, "abc", TruncateChars("abc", 10))
	require.Equal(t, "abc", TruncateChars("abcdef", 3))
	require.Equal(t, "", TruncateChars("abc", 0))
	require.Equal(t, "", TruncateChars("abc", -1))
}

func TestTruncateCharsCountsRunes(t *testing.T) {
	s := strings.Repeat("é", 10)
	out := TruncateChars(s, 4)
	require.Equal(t, strings.Repeat("é", 4), out)
}

func TestChatTitleShortQuery(t *testing.T) {
	title := ChatTitle("suggest a capstone project")
	require.Equal(t, "suggest a capstone project", title)
}

func TestChatTitleLongQueryTruncates(t *testing.T) {
	title := ChatTitle("I am a final year student looking for an interesting machine learning capstone project idea")
	require.True(t, strings.HasSuffix(title, "..."))
	require.LessOrEqual(t, len(strings.Fields(title)), defaultTitleTokens+1)
}

func TestChatTitleStripsPunctuation(t *testing.T) {
	title := ChatTitle("What should I build?")
	require.NotContains(t, title, "?")
	require.Contains(t, title, "build")
}

func TestChatTitleEmptyQuery(t *testing.T) {
	require.Equal(t, "New chat", ChatTitle(""))
	require.Equal(t, "New chat", ChatTitle("   "))
}
