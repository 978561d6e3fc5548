package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capstone-recommender/backend/internal/domain"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return s.vector, s.err
}

type stubIndex struct {
	items []domain.EvidenceItem
	err   error
	lastK int
}

func (s *stubIndex) Query(_ context.Context, _ []float32, topK int) ([]domain.EvidenceItem, error) {
	s.lastK = topK
	return s.items, s.err
}

func TestRetrieveOrdersByScore(t *testing.T) {
	index := &stubIndex{items: []domain.EvidenceItem{
		{ID: "b", Score: 0.5},
		{ID: "a", Score: 0.9},
		{ID: "c", Score: 0.1},
	}}
	r := New(&stubEmbedder{vector: []float32{1}}, index, 10, 500)

	items, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "a", items[0].ID)
	require.Equal(t, "b", items[1].ID)
	require.Equal(t, "c", items[2].ID)
}

func TestRetrieveCapsAtTopK(t *testing.T) {
	index := &stubIndex{items: []domain.EvidenceItem{
		{ID: "a", Score: 0.9},
		{ID: "b", Score: 0.8},
		{ID: "c", Score: 0.7},
	}}
	r := New(&stubEmbedder{vector: []float32{1}}, index, 2, 500)

	items, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].ID)
	require.Equal(t, 2, index.lastK)
}

func TestRetrieveTruncatesSnippets(t *testing.T) {
	index := &stubIndex{items: []domain.EvidenceItem{
		{ID: "a", Text: strings.Repeat("é", 100), Score: 0.9},
	}}
	r := New(&stubEmbedder{vector: []float32{1}}, index, 10, 10)

	items, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("é", 10), items[0].Text)
}

func TestRetrieveEmptyResult(t *testing.T) {
	r := New(&stubEmbedder{vector: []float32{1}}, &stubIndex{}, 10, 500)

	items, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestRetrieveEmbedError(t *testing.T) {
	r := New(&stubEmbedder{err: domain.ErrEmbeddingUnavailable}, &stubIndex{}, 10, 500)

	_, err := r.Retrieve(context.Background(), "query")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestRetrieveIndexError(t *testing.T) {
	index := &stubIndex{err: domain.ErrRetrievalUnavailable}
	r := New(&stubEmbedder{vector: []float32{1}}, index, 10, 500)

	_, err := r.Retrieve(context.Background(), "query")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrRetrievalUnavailable))
}

func TestNewAppliesDefaults(t *testing.T) {
	r := New(&stubEmbedder{vector: []float32{1}}, &stubIndex{}, 0, 0)
	require.Equal(t, defaultTopK, r.topK)
	require.Equal(t, defaultSnippetChars, r.snippetChars)
}
