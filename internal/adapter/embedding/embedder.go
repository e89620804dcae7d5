// Package embedding converts text segments into fixed-dimension vectors.
// The primary path delegates to a remote backend; failures are absorbed into a
// deterministic local fallback so embedding never fails outright.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log/slog"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// Embedder wraps an EmbeddingBackend with the degraded-mode fallback. The
// fallback vector carries no semantic similarity; it only keeps the store's
// dimension invariant intact and is flagged so callers can exclude it.
type Embedder struct {
	backend port.EmbeddingBackend
	logger  *slog.Logger
}

// NewEmbedder creates an embedder over the given backend.
func NewEmbedder(backend port.EmbeddingBackend, logger *slog.Logger) *Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{backend: backend, logger: logger}
}

// Embed returns a vector of the backend's dimension. Backend errors never
// propagate; they switch the result to the fallback path.
func (e *Embedder) Embed(ctx context.Context, text string) domain.Embedding {
	vector, err := e.backend.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("embedding backend failed, using fallback vector",
			"model", e.backend.ModelName(), "error", err)
		return domain.Embedding{
			Vector:   fallbackVector(text, e.backend.Dimension()),
			Fallback: true,
		}
	}
	return domain.Embedding{Vector: vector}
}

// Dimension returns the fixed output dimension shared by both paths.
func (e *Embedder) Dimension() int { return e.backend.Dimension() }

// fallbackVector derives a dimension-length vector from the input bytes using
// sha256 in counter mode, mapping each digest byte into [0, 1). Identical text
// always yields an identical vector.
func fallbackVector(text string, dimension int) []float32 {
	vector := make([]float32, dimension)
	var block [4]byte
	for i := 0; i < dimension; i += sha256.Size {
		binary.BigEndian.PutUint32(block[:], uint32(i/sha256.Size))
		digest := sha256.Sum256(append([]byte(text), block[:]...))
		for j := 0; j < sha256.Size && i+j < dimension; j++ {
			vector[i+j] = float32(digest[j]) / 256.0
		}
	}
	return vector
}
