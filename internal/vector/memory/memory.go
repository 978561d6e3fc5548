package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/capstone-recommender/backend/internal/domain"
)

// Index is a brute-force cosine-similarity VectorIndex kept in memory. It
// backs the offline development mode and tests; production uses Milvus.
type Index struct {
	mu    sync.RWMutex
	dim   int
	items []item
}

type item struct {
	id       string
	vector   []float32
	text     string
	metadata map[string]string
}

func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

// Upsert replaces any existing entry with the same id. It exists so the
// offline mode can be seeded; the real index is populated by ingestion.
func (x *Index) Upsert(id string, vector []float32, text string, metadata map[string]string) error {
	if len(vector) != x.dim {
		return fmt.Errorf("%w: vector has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(vector), x.dim)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	entry := item{id: id, vector: vector, text: text, metadata: metadata}
	for i := range x.items {
		if x.items[i].id == id {
			x.items[i] = entry
			return nil
		}
	}
	x.items = append(x.items, entry)
	return nil
}

func (x *Index) Query(_ context.Context, vector []float32, topK int) ([]domain.EvidenceItem, error) {
	if len(vector) != x.dim {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(vector), x.dim)
	}
	if topK <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]domain.EvidenceItem, 0, len(x.items))
	for _, it := range x.items {
		results = append(results, domain.EvidenceItem{
			ID:       it.id,
			Text:     it.text,
			Score:    cosine(vector, it.vector),
			Metadata: it.metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
