package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragserve/internal/adapter/chunker"
	"ragserve/internal/adapter/embedding"
	"ragserve/internal/adapter/store"
	"ragserve/internal/domain"
	"ragserve/internal/port"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T, embedder port.Embedder) port.VectorStore {
	t.Helper()
	s, err := store.NewSnapshotStore(filepath.Join(t.TempDir(), "store.json"), embedder)
	require.NoError(t, err)
	return s
}

func newTestChunker(t *testing.T, size, overlap int) port.Chunker {
	t.Helper()
	c, err := chunker.NewOverlapChunker(size, overlap)
	require.NoError(t, err)
	return c
}

func TestIngestSuccess(t *testing.T) {
	embedder := embedding.NewEmbedder(embedding.NewMockBackend(8), testLogger())
	st := newTestStore(t, embedder)
	w := NewIngestWorkflow(
		&stubFetcher{content: "Paris is the capital of France."},
		&stubParser{metadata: map[string]any{"title": "France"}},
		newTestChunker(t, 100, 20),
		embedder,
		st,
		false,
		testLogger(),
	)

	result, err := w.Ingest(context.Background(), "https://example.com/france", "doc-france")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Segments)
	assert.Zero(t, result.Degraded)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := st.SearchText(context.Background(), "Paris is the capital of France.", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "doc-france", results[0].DocumentID())
	assert.Equal(t, "France", results[0].Metadata["title"])
	assert.Equal(t, 0, results[0].Metadata[domain.MetaChunkIndex])
}

func TestIngestFetchFailureShortCircuits(t *testing.T) {
	embedder := embedding.NewEmbedder(embedding.NewMockBackend(8), testLogger())
	st := newTestStore(t, embedder)
	w := NewIngestWorkflow(
		&stubFetcher{err: errStub},
		&stubParser{},
		newTestChunker(t, 100, 20),
		embedder, st, false, testLogger(),
	)

	_, err := w.Ingest(context.Background(), "https://example.com", "doc")
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageFetch, stageErr.Stage)

	n, _ := st.Count(context.Background())
	assert.Zero(t, n, "failed ingest must not persist segments")
}

func TestIngestEmptyFetchShortCircuits(t *testing.T) {
	embedder := embedding.NewEmbedder(embedding.NewMockBackend(8), testLogger())
	w := NewIngestWorkflow(
		&stubFetcher{content: ""},
		&stubParser{},
		newTestChunker(t, 100, 20),
		embedder, newTestStore(t, embedder), false, testLogger(),
	)

	_, err := w.Ingest(context.Background(), "https://example.com", "doc")
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageFetch, stageErr.Stage)
}

func TestIngestParseFailureShortCircuits(t *testing.T) {
	embedder := embedding.NewEmbedder(embedding.NewMockBackend(8), testLogger())
	w := NewIngestWorkflow(
		&stubFetcher{content: "raw"},
		&stubParser{err: errors.New("bad markup")},
		newTestChunker(t, 100, 20),
		embedder, newTestStore(t, embedder), false, testLogger(),
	)

	_, err := w.Ingest(context.Background(), "https://example.com", "doc")
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageParse, stageErr.Stage)
}

func TestIngestDegradedVectorsStoredByDefault(t *testing.T) {
	embedder := embedding.NewEmbedder(embedding.NewFailingBackend(8), testLogger())
	st := newTestStore(t, embedder)
	w := NewIngestWorkflow(
		&stubFetcher{content: "some text"},
		&stubParser{},
		newTestChunker(t, 100, 20),
		embedder, st, false, testLogger(),
	)

	result, err := w.Ingest(context.Background(), "file.txt", "doc")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Segments)
	assert.Equal(t, 1, result.Degraded)
}

func TestIngestSkipDegradedExcludesEverything(t *testing.T) {
	embedder := embedding.NewEmbedder(embedding.NewFailingBackend(8), testLogger())
	st := newTestStore(t, embedder)
	w := NewIngestWorkflow(
		&stubFetcher{content: "some text"},
		&stubParser{},
		newTestChunker(t, 100, 20),
		embedder, st, true, testLogger(),
	)

	_, err := w.Ingest(context.Background(), "file.txt", "doc")
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageEmbed, stageErr.Stage)

	n, _ := st.Count(context.Background())
	assert.Zero(t, n)
}

func TestIngestIdempotent(t *testing.T) {
	embedder := embedding.NewEmbedder(embedding.NewMockBackend(8), testLogger())
	st := newTestStore(t, embedder)
	w := NewIngestWorkflow(
		&stubFetcher{content: "Paris is the capital of France."},
		&stubParser{},
		newTestChunker(t, 100, 20),
		embedder, st, false, testLogger(),
	)

	_, err := w.Ingest(context.Background(), "src", "doc")
	require.NoError(t, err)
	first, err := st.SearchText(context.Background(), "capital", 5)
	require.NoError(t, err)

	_, err = w.Ingest(context.Background(), "src", "doc")
	require.NoError(t, err)
	second, err := st.SearchText(context.Background(), "capital", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
