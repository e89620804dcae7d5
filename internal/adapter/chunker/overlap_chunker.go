package chunker

import "fmt"

// OverlapChunker splits text into fixed-size segments with a configurable
// overlap between consecutive segments. Splitting is rune-based so multi-byte
// characters are never cut in half.
type OverlapChunker struct {
	size    int
	overlap int
}

// NewOverlapChunker validates the chunking parameters once, at construction.
// size must be positive and strictly greater than overlap, which must be
// non-negative; overlap == 0 degenerates to non-overlapping tiling.
func NewOverlapChunker(size, overlap int) (*OverlapChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &OverlapChunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into ordered segments of at most size runes, advancing
// the offset by size-overlap runes for as long as it stays inside the text.
// With a positive overlap the final strides emit the shrinking tail segments.
// Exact duplicate segments are dropped keeping first occurrence, and empty
// input yields no segments.
func (c *OverlapChunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	stride := c.size - c.overlap

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	seen := make(map[string]struct{}, len(chunks))
	unique := chunks[:0]
	for _, chunk := range chunks {
		if _, ok := seen[chunk]; ok {
			continue
		}
		seen[chunk] = struct{}{}
		unique = append(unique, chunk)
	}
	return unique
}

// Size returns the configured maximum chunk length in runes.
func (c *OverlapChunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *OverlapChunker) Overlap() int { return c.overlap }
