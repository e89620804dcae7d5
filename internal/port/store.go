package port

import (
	"context"

	"ragserve/internal/domain"
)

// VectorStore is the durable mapping from segment id to segment, shared by all
// sessions. Writes are serialized by the implementation; readers observe the
// last committed snapshot.
type VectorStore interface {
	// Add merges the segments into the store, stamping each with the document
	// id. Segments with an existing id are overwritten, so re-ingesting
	// identical content is idempotent. Returns an error only on unrecoverable
	// I/O failure.
	Add(ctx context.Context, documentID string, segments []domain.Segment) error

	// Search returns up to topK results ordered by descending cosine
	// similarity to the query vector. Stored vectors whose dimension differs
	// from the query's are silently excluded. Ties keep insertion order.
	Search(ctx context.Context, query []float32, topK int) ([]domain.RetrievalResult, error)

	// SearchText embeds the text internally and then searches. Empty text
	// yields no query vector and therefore an empty result.
	SearchText(ctx context.Context, text string, topK int) ([]domain.RetrievalResult, error)

	// Count returns the number of stored segments.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying persistence handle.
	Close() error
}
