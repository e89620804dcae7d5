// Package workflow contains the two orchestration state machines of the
// system: ingestion (fetch → parse → chunk&embed → store) and querying
// (expand → retrieve → generate → validate → format). Each stage gates the
// next; a failed or empty stage short-circuits the rest.
package workflow

import (
	"context"
	"log/slog"
	"strings"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// IngestWorkflow drives a document from its source reference into the shared
// vector store. No retries happen at this layer; retry policy, if any, belongs
// to the fetcher.
type IngestWorkflow struct {
	fetcher      port.Fetcher
	parser       port.Parser
	chunker      port.Chunker
	embedder     port.Embedder
	store        port.VectorStore
	skipDegraded bool
	logger       *slog.Logger
}

// NewIngestWorkflow wires an ingestion pipeline. skipDegraded excludes
// fallback-provenance vectors from the index instead of storing them.
func NewIngestWorkflow(
	fetcher port.Fetcher,
	parser port.Parser,
	chunker port.Chunker,
	embedder port.Embedder,
	store port.VectorStore,
	skipDegraded bool,
	logger *slog.Logger,
) *IngestWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestWorkflow{
		fetcher:      fetcher,
		parser:       parser,
		chunker:      chunker,
		embedder:     embedder,
		store:        store,
		skipDegraded: skipDegraded,
		logger:       logger,
	}
}

// IngestResult summarizes a successful ingestion.
type IngestResult struct {
	Segments int // segments persisted
	Degraded int // chunks embedded via the fallback path
	Skipped  int // degraded chunks excluded from the index
}

// Ingest runs the full pipeline for one source. A nil error means the document
// is retrievable; any other outcome is a *StageError naming the failed stage.
func (w *IngestWorkflow) Ingest(ctx context.Context, sourceRef, documentID string) (*IngestResult, error) {
	raw, err := w.fetcher.Fetch(ctx, sourceRef)
	if err != nil {
		return nil, failStage(StageFetch, "could not fetch source", err)
	}
	if raw == "" {
		return nil, failStage(StageFetch, "source returned no content", nil)
	}

	parsed, err := w.parser.Parse(raw, contentTypeFor(sourceRef))
	if err != nil {
		return nil, failStage(StageParse, "could not parse content", err)
	}
	if parsed.Text == "" {
		return nil, failStage(StageParse, "parsed content is empty", nil)
	}

	chunks := w.chunker.Chunk(parsed.Text)
	if len(chunks) == 0 {
		return nil, failStage(StageChunk, "no chunks produced", nil)
	}

	result := &IngestResult{}
	segments := make([]domain.Segment, 0, len(chunks))
	for i, chunk := range chunks {
		emb := w.embedder.Embed(ctx, chunk)
		if emb.Fallback {
			result.Degraded++
			if w.skipDegraded {
				result.Skipped++
				continue
			}
		}

		metadata := make(map[string]any, len(parsed.Metadata)+1)
		for k, v := range parsed.Metadata {
			metadata[k] = v
		}
		metadata[domain.MetaChunkIndex] = i

		segments = append(segments, domain.Segment{
			ID:       domain.SegmentID(chunk, i),
			Text:     chunk,
			Vector:   emb.Vector,
			Metadata: metadata,
		})
	}
	if len(segments) == 0 {
		return nil, failStage(StageEmbed, "every chunk was excluded as degraded", nil)
	}

	if err := w.store.Add(ctx, documentID, segments); err != nil {
		return nil, failStage(StageStore, "could not persist segments", err)
	}

	result.Segments = len(segments)
	w.logger.Info("document ingested",
		"document_id", documentID, "segments", result.Segments, "degraded", result.Degraded)
	return result, nil
}

// contentTypeFor picks the parser content type from the shape of the source
// reference. Remote sources are treated as HTML, local ones as plain text.
func contentTypeFor(sourceRef string) string {
	if strings.HasPrefix(sourceRef, "http://") || strings.HasPrefix(sourceRef, "https://") || strings.HasPrefix(sourceRef, "www.") {
		return "text/html"
	}
	return "text/plain"
}
