package workflow

import (
	"fmt"
	"strings"

	"ragserve/internal/domain"
)

// snippetLength is the fixed length of the leading snippet attached to each
// unique source.
const snippetLength = 100

// FormatResponse renders the final user-facing message: the answer followed by
// a source list de-duplicated by document id in first-occurrence order.
func FormatResponse(answer string, retrieved []domain.RetrievalResult) domain.QueryResponse {
	sources := collectSources(retrieved)

	var sb strings.Builder
	sb.WriteString(answer)
	if len(sources) > 0 {
		sb.WriteString("\n\n--- Sources ---\n")
		for i, src := range sources {
			fmt.Fprintf(&sb, "%d. Document: %s\n", i+1, src.DocumentID)
			if src.Snippet != "" {
				fmt.Fprintf(&sb, "   Snippet: '%s'\n", src.Snippet)
			}
		}
	}

	return domain.QueryResponse{
		Status:  domain.StatusSuccess,
		Message: sb.String(),
		Answer:  answer,
		Sources: sources,
	}
}

func collectSources(retrieved []domain.RetrievalResult) []domain.Source {
	seen := make(map[string]struct{}, len(retrieved))
	var sources []domain.Source
	for _, r := range retrieved {
		docID := r.DocumentID()
		if docID == "" {
			docID = "Unknown Document"
		}
		if _, ok := seen[docID]; ok {
			continue
		}
		seen[docID] = struct{}{}
		sources = append(sources, domain.Source{
			DocumentID: docID,
			Snippet:    snippet(r.Text),
		})
	}
	return sources
}

// snippet returns the first snippetLength runes of text, with an ellipsis when
// truncated.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "..."
}
