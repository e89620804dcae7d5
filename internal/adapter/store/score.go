package store

import (
	"math"
	"sort"

	"ragserve/internal/domain"
)

// cosineSimilarity computes the normalized dot product of two vectors. Defined
// as 0 when either vector has zero norm or the lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rank scores every candidate against the query vector and returns at most
// topK results ordered by descending similarity. Candidates whose dimension
// differs from the query's are excluded rather than erroring; ties keep the
// candidates' original order (stable sort over insertion order).
func rank(query []float32, candidates []domain.Segment, topK int) []domain.RetrievalResult {
	if len(query) == 0 || topK <= 0 {
		return nil
	}

	results := make([]domain.RetrievalResult, 0, len(candidates))
	for _, seg := range candidates {
		if len(seg.Vector) != len(query) {
			continue
		}
		results = append(results, domain.RetrievalResult{
			SegmentID: seg.ID,
			Text:      seg.Text,
			Metadata:  seg.Metadata,
			Score:     cosineSimilarity(query, seg.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
