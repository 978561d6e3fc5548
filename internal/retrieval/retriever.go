package retrieval

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/pkg/logger"
	"github.com/capstone-recommender/backend/pkg/textutil"
)

const (
	defaultTopK         = 10
	defaultSnippetChars = 500
)

// Retriever turns a free-text query into a ranked evidence bundle: it embeds
// the query, asks the vector index for the top-K neighbors, and truncates
// each chunk to a snippet budget before it reaches the prompt. It is
// read-only against the index.
type Retriever struct {
	embedder     domain.Embedder
	index        domain.VectorIndex
	topK         int
	snippetChars int
}

func New(embedder domain.Embedder, index domain.VectorIndex, topK, snippetChars int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	if snippetChars <= 0 {
		snippetChars = defaultSnippetChars
	}
	return &Retriever{
		embedder:     embedder,
		index:        index,
		topK:         topK,
		snippetChars: snippetChars,
	}
}

// Retrieve returns at most topK items ordered by descending score. Zero
// results is a valid outcome, not an error; callers fall back to answering
// without project context.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.EvidenceItem, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	items, err := r.index.Query(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	// The index is expected to return ranked results; sorting again keeps
	// the ordering contract independent of the backend.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if len(items) > r.topK {
		items = items[:r.topK]
	}

	for i := range items {
		items[i].Text = textutil.TruncateChars(items[i].Text, r.snippetChars)
	}

	logger.Debug("retrieval completed",
		zap.Int("results", len(items)),
		zap.Int("topK", r.topK),
	)

	return items, nil
}
