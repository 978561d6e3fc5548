package textutil

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

const defaultTitleTokens = 8

// TruncateChars cuts s down to at most limit characters, counting runes so
// a multi-byte character is never split. No ellipsis is added; callers that
// render snippets append their own marker.
func TruncateChars(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// ChatTitle derives a short chat title from the first user query by keeping
// its leading tokens. Tokenization comes from prose so punctuation does not
// leak into the title; on tokenizer failure the raw words are used instead.
func ChatTitle(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "New chat"
	}

	words := tokenize(query)
	if len(words) == 0 {
		return "New chat"
	}
	if len(words) > defaultTitleTokens {
		words = words[:defaultTitleTokens]
		return strings.Join(words, " ") + "..."
	}
	return strings.Join(words, " ")
}

func tokenize(s string) []string {
	doc, err := prose.NewDocument(s,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return strings.Fields(s)
	}

	var words []string
	for _, tok := range doc.Tokens() {
		if isWordToken(tok.Text) {
			words = append(words, tok.Text)
		}
	}
	return words
}

func isWordToken(text string) bool {
	for _, r := range text {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r > 127 {
			return true
		}
	}
	return false
}
