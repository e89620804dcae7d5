// Package llm adapts an OpenAI-compatible chat API to the generation and
// validation ports. Pointing the base URL at an Ollama server works unchanged.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ragserve/internal/domain"
)

// NewClient builds a chat client from the environment. For local servers a
// missing API key is replaced with a placeholder.
func NewClient(apiKeyEnv, baseURL string) (*openai.Client, error) {
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
	return openai.NewClientWithConfig(cfg), nil
}

// OpenAIGenerator implements the Generator port over a chat-completion API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIGenerator creates a generator using the given client and model.
func NewOpenAIGenerator(client *openai.Client, model string, temperature float32) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, temperature: temperature}
}

// Generate produces a completion for the conversation turns.
func (g *OpenAIGenerator) Generate(ctx context.Context, turns []domain.Turn) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toMessages(turns),
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// expandedTerms is the only structured-output schema the generator accepts.
// Anything else the model produces is treated as a malformed response.
type expandedTerms struct {
	ExpandedTerms []string `json:"expanded_terms"`
}

// GenerateStructured asks the model for a JSON object of the form
// {"expanded_terms": [...]} and returns the decoded, trimmed list. The decode
// is strict: unknown keys or a non-conforming shape are an error, and the
// caller falls back to an empty list.
func (g *OpenAIGenerator) GenerateStructured(ctx context.Context, prompt string) ([]string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("structured generation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("structured generation returned no choices")
	}

	var decoded expandedTerms
	if err := strictDecode(resp.Choices[0].Message.Content, &decoded); err != nil {
		return nil, fmt.Errorf("malformed structured output: %w", err)
	}

	terms := make([]string, 0, len(decoded.ExpandedTerms))
	for _, term := range decoded.ExpandedTerms {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return terms, nil
}

// strictDecode unmarshals JSON rejecting unknown fields and trailing content.
func strictDecode(raw string, out any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing content after JSON object")
	}
	return nil
}

func toMessages(turns []domain.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, turn := range turns {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		}
	}
	return messages
}
