package domain

import "context"

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex answers top-K nearest-neighbor queries over the indexed
// project chunks, ordered by descending similarity. Index construction and
// upserts belong to the ingestion pipeline, not to this interface.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]EvidenceItem, error)
}

// ChatStore is an append-only log of chat turns. Implementations must be
// safe for concurrent appends from turns of different chats.
type ChatStore interface {
	Append(ctx context.Context, chatID string, role Role, content string) error
	Recent(ctx context.Context, chatID string, limit int) ([]ChatTurn, error)
}

// Generator produces the answer text for an assembled prompt. Calls may
// block for several seconds; implementations honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
