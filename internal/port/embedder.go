package port

import (
	"context"

	"ragserve/internal/domain"
)

// EmbeddingBackend is the remote embedding capability. It may fail or time out;
// callers are expected to absorb failures into a degraded path.
type EmbeddingBackend interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the fixed embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// Embedder converts text into fixed-dimension vectors and never fails: backend
// errors are absorbed into a deterministic fallback vector flagged as such.
type Embedder interface {
	Embed(ctx context.Context, text string) domain.Embedding

	// Dimension returns the fixed output dimension shared by primary and
	// fallback vectors.
	Dimension() int
}
