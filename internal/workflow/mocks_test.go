package workflow

import (
	"context"
	"fmt"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

type stubFetcher struct {
	content string
	err     error
}

func (f *stubFetcher) Fetch(context.Context, string) (string, error) {
	return f.content, f.err
}

type stubParser struct {
	metadata map[string]any
	err      error
}

func (p *stubParser) Parse(raw string, _ string) (port.ParsedDocument, error) {
	if p.err != nil {
		return port.ParsedDocument{}, p.err
	}
	meta := p.metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return port.ParsedDocument{Text: raw, Metadata: meta}, nil
}

type stubGenerator struct {
	answer    string
	genErr    error
	terms     []string
	termsErr  error
	panicking bool

	lastTurns []domain.Turn
}

func (g *stubGenerator) Generate(_ context.Context, turns []domain.Turn) (string, error) {
	if g.panicking {
		panic("generator exploded")
	}
	g.lastTurns = turns
	return g.answer, g.genErr
}

func (g *stubGenerator) GenerateStructured(context.Context, string) ([]string, error) {
	return g.terms, g.termsErr
}

type stubStore struct {
	searchErr error
}

func (s *stubStore) Add(context.Context, string, []domain.Segment) error { return nil }

func (s *stubStore) Search(context.Context, []float32, int) ([]domain.RetrievalResult, error) {
	return nil, s.searchErr
}

func (s *stubStore) SearchText(context.Context, string, int) ([]domain.RetrievalResult, error) {
	return nil, s.searchErr
}

func (s *stubStore) Count(context.Context) (int, error) { return 0, nil }

func (s *stubStore) Close() error { return nil }

type stubValidator struct {
	verdict domain.Verdict
	err     error
}

func (v *stubValidator) Validate(context.Context, string, string, []domain.RetrievalResult) (domain.Verdict, error) {
	return v.verdict, v.err
}

var errStub = fmt.Errorf("stub failure")
