package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Deterministic is an offline Embedder for development and tests. It maps
// each token to a pseudo-random unit direction derived from its hash and
// sums them, so related texts overlap on shared tokens. The vectors carry
// no semantic meaning and must never be mixed into a real index.
type Deterministic struct {
	dim int
}

func NewDeterministic(dim int) *Deterministic {
	if dim <= 0 {
		dim = 256
	}
	return &Deterministic{dim: dim}
}

func (d *Deterministic) Embed(_ context.Context, text string) ([]float32, error) {
	acc := make([]float64, d.dim)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(token))
		state := h.Sum64()

		for i := range acc {
			// 64-bit LCG stream seeded by the token hash.
			state = state*6364136223846793005 + 1442695040888963407
			acc[i] += float64(int64(state)>>11) / float64(1<<52)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	if norm == 0 {
		acc[0] = 1
		norm = 1
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, d.dim)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}
