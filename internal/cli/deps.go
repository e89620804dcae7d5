package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"ragserve/config"
	"ragserve/internal/adapter/chunker"
	"ragserve/internal/adapter/embedding"
	"ragserve/internal/adapter/fetch"
	"ragserve/internal/adapter/llm"
	"ragserve/internal/adapter/parse"
	"ragserve/internal/adapter/store"
	"ragserve/internal/port"
	"ragserve/internal/workflow"
)

// deps is the wired dependency graph shared by the serve, ingest and query
// commands.
type deps struct {
	embedder  port.Embedder
	store     port.VectorStore
	ingest    *workflow.IngestWorkflow
	generator port.Generator
	validator port.Validator
}

func buildDeps(cfg *config.Config) (*deps, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg, embedder)
	if err != nil {
		return nil, err
	}

	chk, err := chunker.NewOverlapChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		st.Close()
		return nil, err
	}

	fetcher := fetch.NewSourceFetcher(
		fetch.NewHTTPFetcher(time.Duration(cfg.Generation.FetchTimeoutSec)*time.Second),
		fetch.NewFileFetcher(rootDir),
	)

	client, err := llm.NewClient(cfg.Generation.APIKeyEnv, cfg.Generation.BaseURL)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &deps{
		embedder: embedder,
		store:    st,
		ingest: workflow.NewIngestWorkflow(
			fetcher,
			parse.NewContentParser(),
			chk,
			embedder,
			st,
			cfg.Embedding.SkipDegraded,
			logger,
		),
		generator: llm.NewOpenAIGenerator(client, cfg.Generation.Model, cfg.Generation.Temperature),
		validator: llm.NewAgentValidator(client, cfg.Generation.ValidatorModel()),
	}, nil
}

func (d *deps) close() {
	d.store.Close()
}

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	var backend port.EmbeddingBackend
	switch cfg.Embedding.Provider {
	case "mock":
		backend = embedding.NewMockBackend(cfg.Embedding.Dimension)
	case "openai":
		var err error
		backend, err = embedding.NewOpenAIBackend(
			cfg.Embedding.APIKeyEnv,
			cfg.Embedding.Model,
			cfg.Embedding.BaseURL,
			cfg.Embedding.Dimension,
		)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
	return embedding.NewEmbedder(backend, logger), nil
}

func openStore(cfg *config.Config, embedder port.Embedder) (port.VectorStore, error) {
	path := cfg.Store.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}

	switch cfg.Store.Backend {
	case "bolt":
		return store.NewBoltStore(path, embedder)
	default:
		return store.NewSnapshotStore(path, embedder)
	}
}
