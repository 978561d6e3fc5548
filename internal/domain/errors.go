package domain

import "errors"

// Failure kinds for the turn pipeline. Adapters wrap their backend errors
// around these sentinels so callers can branch with errors.Is instead of
// matching message text.
var (
	// ErrEmbeddingUnavailable: the embedding backend is unreachable or
	// rejected the request. Non-fatal; the turn degrades to no context.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")

	// ErrRetrievalUnavailable: the vector index is unreachable. Non-fatal.
	ErrRetrievalUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch: an embedding's length does not match the index
	// dimensionality. Fatal for the retrieval stage only.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGenerationUnavailable / ErrGenerationTimeout: the generator failed.
	// Fatal for the turn; the user gets a fixed apology.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
	ErrGenerationTimeout     = errors.New("generation timed out")

	// ErrStoreUnavailable: the chat store is unreachable. After a successful
	// generation this is logged only; the answer is still returned.
	ErrStoreUnavailable = errors.New("chat store unavailable")
)
