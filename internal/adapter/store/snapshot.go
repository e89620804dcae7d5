// Package store provides the persistent segment stores shared by all sessions.
// Two backends exist: a human-readable whole-file JSON snapshot (the default)
// and a bbolt-backed store for larger corpora. Both serialize writers behind a
// mutex while readers score against the last committed in-memory snapshot.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// SnapshotStore persists segments as a single JSON file keyed by segment id.
// Every write is a full load-modify-save cycle over the file; the in-memory
// copy is the committed snapshot readers search against. Insertion order is
// preserved across reloads so similarity ties break deterministically.
type SnapshotStore struct {
	path     string
	embedder port.Embedder

	mu       sync.RWMutex
	order    []string
	segments map[string]domain.Segment
}

var _ port.VectorStore = (*SnapshotStore)(nil)

// NewSnapshotStore opens or creates the snapshot file at path. An absent file
// is created empty on first use.
func NewSnapshotStore(path string, embedder port.Embedder) (*SnapshotStore, error) {
	s := &SnapshotStore{
		path:     path,
		embedder: embedder,
		segments: make(map[string]domain.Segment),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to create store file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat store file: %w", err)
	}

	if err := s.reload(); err != nil {
		return nil, fmt.Errorf("failed to load store file: %w", err)
	}
	return s, nil
}

// reload replaces the in-memory snapshot with the file contents. Caller must
// hold the write lock (or be the constructor).
func (s *SnapshotStore) reload() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	order, segments, err := decodeSnapshot(f)
	if err != nil {
		return err
	}
	s.order = order
	s.segments = segments
	return nil
}

// Add merges the segments into the persisted mapping, stamping each with the
// document id. Existing ids are overwritten in place, keeping their insertion
// position, so repeated ingestion of identical content changes nothing
// observable. Returns an error only on I/O failure.
func (s *SnapshotStore) Add(_ context.Context, documentID string, segments []domain.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Full load-modify-save cycle against the file, in one critical section.
	if err := s.reload(); err != nil {
		return fmt.Errorf("failed to reload store: %w", err)
	}

	for _, seg := range segments {
		meta := make(map[string]any, len(seg.Metadata)+1)
		for k, v := range seg.Metadata {
			meta[k] = v
		}
		meta[domain.MetaDocumentID] = documentID
		seg.Metadata = meta

		if _, exists := s.segments[seg.ID]; !exists {
			s.order = append(s.order, seg.ID)
		}
		s.segments[seg.ID] = seg
	}

	data, err := encodeSnapshot(s.order, s.segments)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}

// Search returns the topK most similar stored segments.
func (s *SnapshotStore) Search(_ context.Context, query []float32, topK int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]domain.Segment, 0, len(s.order))
	for _, id := range s.order {
		candidates = append(candidates, s.segments[id])
	}
	return rank(query, candidates, topK), nil
}

// SearchText embeds the text and searches with the resulting vector.
func (s *SnapshotStore) SearchText(ctx context.Context, text string, topK int) ([]domain.RetrievalResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	emb := s.embedder.Embed(ctx, text)
	return s.Search(ctx, emb.Vector, topK)
}

// Count returns the number of stored segments.
func (s *SnapshotStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments), nil
}

// Close is a no-op for the file snapshot backend.
func (s *SnapshotStore) Close() error { return nil }

// decodeSnapshot reads the snapshot object while preserving the file's key
// order. Corrupted entries abort the load rather than being silently dropped;
// an empty file decodes as an empty store.
func decodeSnapshot(r io.Reader) ([]string, map[string]domain.Segment, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, map[string]domain.Segment{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("store file must contain a JSON object, got %v", tok)
	}

	var order []string
	segments := make(map[string]domain.Segment)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key token %v", keyTok)
		}

		var seg domain.Segment
		if err := dec.Decode(&seg); err != nil {
			return nil, nil, fmt.Errorf("corrupt segment %q: %w", id, err)
		}
		seg.ID = id

		if _, exists := segments[id]; !exists {
			order = append(order, id)
		}
		segments[id] = seg
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return order, segments, nil
}

// encodeSnapshot renders the store as an indented JSON object with keys in
// insertion order.
func encodeSnapshot(order []string, segments map[string]domain.Segment) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, id := range order {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")

		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")

		val, err := json.Marshal(segments[id])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	if len(order) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
