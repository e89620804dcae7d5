package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend generates embeddings through an OpenAI-compatible API. Pointing
// BaseURL at an Ollama server (http://localhost:11434/v1) works unchanged.
type OpenAIBackend struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewOpenAIBackend creates an embedding backend. The API key is read from the
// named environment variable; for local servers such as Ollama any non-empty
// placeholder key is accepted.
func NewOpenAIBackend(apiKeyEnv, model, baseURL string, dimension int) (*OpenAIBackend, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		if baseURL == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
		}
		apiKey = "unused"
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if dimension <= 0 {
		dimension = defaultDimension(model)
	}

	return &OpenAIBackend{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		dimension: dimension,
	}, nil
}

func defaultDimension(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "nomic-embed-text":
		return 768
	case "mxbai-embed-large":
		return 1024
	case "all-minilm":
		return 384
	default:
		return 1536
	}
}

// Embed requests one embedding vector for the given text.
func (b *OpenAIBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(b.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i := range raw {
		vector[i] = float32(raw[i])
	}
	if len(vector) != b.dimension {
		return nil, fmt.Errorf("backend returned dimension %d, expected %d", len(vector), b.dimension)
	}
	return vector, nil
}

// Dimension returns the embedding vector dimension.
func (b *OpenAIBackend) Dimension() int { return b.dimension }

// ModelName returns the name of the embedding model.
func (b *OpenAIBackend) ModelName() string { return b.model }
