package embedding

import (
	"context"
	"fmt"
)

// MockBackend is a deterministic in-process backend for tests and offline use.
// It projects the first runes of the text onto the vector, which is enough for
// identical texts to match exactly and related texts to overlap.
type MockBackend struct {
	dimension int
	fail      bool
}

// NewMockBackend creates a mock backend with the given dimension.
func NewMockBackend(dimension int) *MockBackend {
	return &MockBackend{dimension: dimension}
}

// NewFailingBackend creates a backend whose Embed always errors, for
// exercising the fallback path.
func NewFailingBackend(dimension int) *MockBackend {
	return &MockBackend{dimension: dimension, fail: true}
}

// Embed generates a deterministic pseudo-embedding.
func (b *MockBackend) Embed(_ context.Context, text string) ([]float32, error) {
	if b.fail {
		return nil, fmt.Errorf("mock backend unavailable")
	}
	vector := make([]float32, b.dimension)
	i := 0
	for _, r := range text {
		if i >= b.dimension {
			break
		}
		vector[i] = float32(r) / 1000.0
		i++
	}
	return vector, nil
}

// Dimension returns the embedding vector dimension.
func (b *MockBackend) Dimension() int { return b.dimension }

// ModelName returns the name of the embedding model.
func (b *MockBackend) ModelName() string { return "mock" }
