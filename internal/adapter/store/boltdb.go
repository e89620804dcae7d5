package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

var bucketSegments = []byte("segments")

// BoltStore persists segments in a bbolt database. Intended for corpora large
// enough that rewriting a whole JSON snapshot per ingest becomes the dominant
// cost. Search still runs brute force over an in-memory cache.
type BoltStore struct {
	db       *bbolt.DB
	embedder port.Embedder

	mu       sync.RWMutex
	order    []string
	segments map[string]domain.Segment
	seqs     map[string]uint64
}

var _ port.VectorStore = (*BoltStore)(nil)

// boltSegment is the stored record. Seq preserves insertion order across
// restarts, since bbolt iterates keys lexicographically.
type boltSegment struct {
	Text     string         `json:"text"`
	Vector   []float32      `json:"embedding"`
	Metadata map[string]any `json:"metadata"`
	Seq      uint64         `json:"seq"`
}

// NewBoltStore opens or creates a bbolt-backed store at path.
func NewBoltStore(path string, embedder port.Embedder) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSegments)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create segments bucket: %w", err)
	}

	s := &BoltStore{
		db:       db,
		embedder: embedder,
		segments: make(map[string]domain.Segment),
		seqs:     make(map[string]uint64),
	}
	if err := s.loadSegments(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load segments: %w", err)
	}
	return s, nil
}

// loadSegments fills the in-memory cache, ordered by insertion sequence.
func (s *BoltStore) loadSegments() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSegments)
		if b == nil {
			return nil
		}

		err := b.ForEach(func(k, v []byte) error {
			var rec boltSegment
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt segment %q: %w", k, err)
			}
			id := string(k)
			s.segments[id] = domain.Segment{
				ID:       id,
				Text:     rec.Text,
				Vector:   rec.Vector,
				Metadata: rec.Metadata,
			}
			s.seqs[id] = rec.Seq
			s.order = append(s.order, id)
			return nil
		})
		if err != nil {
			return err
		}

		sort.SliceStable(s.order, func(i, j int) bool {
			return s.seqs[s.order[i]] < s.seqs[s.order[j]]
		})
		return nil
	})
}

// Add merges the segments in a single transaction, stamping the document id.
// Overwriting an existing id keeps its original insertion position. The cache
// is updated only after the transaction commits, so a rolled-back batch leaves
// readers on the previous snapshot.
func (s *BoltStore) Add(_ context.Context, documentID string, segments []domain.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]domain.Segment, 0, len(segments))
	newSeqs := make(map[string]uint64)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSegments)
		if b == nil {
			return fmt.Errorf("segments bucket not found")
		}

		for _, seg := range segments {
			meta := make(map[string]any, len(seg.Metadata)+1)
			for k, v := range seg.Metadata {
				meta[k] = v
			}
			meta[domain.MetaDocumentID] = documentID
			seg.Metadata = meta

			seq, ok := s.seqs[seg.ID]
			if !ok {
				seq, ok = newSeqs[seg.ID]
			}
			if !ok {
				var err error
				if seq, err = b.NextSequence(); err != nil {
					return err
				}
				newSeqs[seg.ID] = seq
			}

			data, err := json.Marshal(boltSegment{
				Text:     seg.Text,
				Vector:   seg.Vector,
				Metadata: seg.Metadata,
				Seq:      seq,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(seg.ID), data); err != nil {
				return err
			}

			staged = append(staged, seg)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, seg := range staged {
		if _, exists := s.segments[seg.ID]; !exists {
			s.order = append(s.order, seg.ID)
		}
		s.segments[seg.ID] = seg
	}
	for id, seq := range newSeqs {
		s.seqs[id] = seq
	}
	return nil
}

// Search returns the topK most similar stored segments.
func (s *BoltStore) Search(_ context.Context, query []float32, topK int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]domain.Segment, 0, len(s.order))
	for _, id := range s.order {
		candidates = append(candidates, s.segments[id])
	}
	return rank(query, candidates, topK), nil
}

// SearchText embeds the text and searches with the resulting vector.
func (s *BoltStore) SearchText(ctx context.Context, text string, topK int) ([]domain.RetrievalResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	emb := s.embedder.Embed(ctx, text)
	return s.Search(ctx, emb.Vector, topK)
}

// Count returns the number of stored segments.
func (s *BoltStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments), nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }
