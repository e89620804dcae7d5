package domain

// Segment is one chunk of source text together with its embedding vector and
// metadata. Segments are immutable once stored; the ID is a content-derived
// fingerprint so re-ingesting identical content at the same position overwrites
// the same entry.
type Segment struct {
	ID       string         `json:"-"`
	Text     string         `json:"text"`
	Vector   []float32      `json:"embedding"`
	Metadata map[string]any `json:"metadata"`
}

// MetaDocumentID is the metadata key carrying document identity. There is no
// document-level entity; a document is the set of segments sharing this value.
const MetaDocumentID = "document_id"

// MetaChunkIndex is the metadata key for a segment's position within its document.
const MetaChunkIndex = "chunk_index"

// DocumentID returns the stamped document id, or "" if the segment has none.
func (s Segment) DocumentID() string {
	if s.Metadata == nil {
		return ""
	}
	id, _ := s.Metadata[MetaDocumentID].(string)
	return id
}

// Embedding is the result of embedding a piece of text. Fallback marks vectors
// produced by the degraded-mode generator after a backend failure; such vectors
// carry no semantic similarity and callers may choose to exclude them.
type Embedding struct {
	Vector   []float32
	Fallback bool
}

// RetrievalResult is one scored hit from a similarity search. Ephemeral,
// produced per query, never persisted.
type RetrievalResult struct {
	SegmentID string
	Text      string
	Metadata  map[string]any
	Score     float64
}

// DocumentID returns the document id stamped on the result's metadata.
func (r RetrievalResult) DocumentID() string {
	if r.Metadata == nil {
		return ""
	}
	id, _ := r.Metadata[MetaDocumentID].(string)
	return id
}
