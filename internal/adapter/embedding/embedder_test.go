package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderPrimaryPath(t *testing.T) {
	e := NewEmbedder(NewMockBackend(8), nil)

	emb := e.Embed(context.Background(), "hello")
	require.Len(t, emb.Vector, 8)
	assert.False(t, emb.Fallback)
}

func TestEmbedderFallbackOnBackendFailure(t *testing.T) {
	e := NewEmbedder(NewFailingBackend(16), nil)

	emb := e.Embed(context.Background(), "hello")
	require.Len(t, emb.Vector, 16)
	assert.True(t, emb.Fallback)
}

func TestMockBackendProjectsRunesWithoutGaps(t *testing.T) {
	b := NewMockBackend(4)

	v, err := b.Embed(context.Background(), "héllo")
	require.NoError(t, err)
	// One vector entry per rune, so multi-byte characters leave no zero gaps.
	assert.Equal(t, []float32{'h' / 1000.0, 'é' / 1000.0, 'l' / 1000.0, 'l' / 1000.0}, v)
}

func TestFallbackVectorDeterministic(t *testing.T) {
	a := fallbackVector("same text", 64)
	b := fallbackVector("same text", 64)
	c := fallbackVector("other text", 64)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFallbackVectorDimension(t *testing.T) {
	// Dimensions straddling the sha256 block size.
	for _, dim := range []int{1, 31, 32, 33, 100, 1536} {
		v := fallbackVector("text", dim)
		require.Len(t, v, dim)
		for _, x := range v {
			assert.GreaterOrEqual(t, x, float32(0))
			assert.Less(t, x, float32(1))
		}
	}
}
