package port

import (
	"context"

	"ragserve/internal/domain"
)

// Generator is the text-generation backend.
type Generator interface {
	// Generate produces a completion for the given conversation turns.
	Generate(ctx context.Context, turns []domain.Turn) (string, error)

	// GenerateStructured asks the backend for a JSON object containing a list
	// of strings and returns the decoded list. Malformed output is an error;
	// callers fall back to an empty list.
	GenerateStructured(ctx context.Context, prompt string) ([]string, error)
}

// Validator judges whether a generated answer is supported by the retrieved
// context it was conditioned on.
type Validator interface {
	Validate(ctx context.Context, answer, query string, retrieved []domain.RetrievalResult) (domain.Verdict, error)
}
