package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ragserve/internal/domain"
)

const validatorPrompt = `You are a strict answer validator for a retrieval-augmented QA system.
Given a user query, retrieved context passages and a generated answer, judge
whether every claim in the answer is supported by the context. An answer that
states the context is insufficient is valid.
Respond with a JSON object of the form {"is_valid": <bool>, "reason": <string>}
and nothing else. The reason must be a short explanation and may be empty when
the answer is valid.`

// AgentValidator judges generated answers against their retrieved context by
// asking the chat model for a structured verdict.
type AgentValidator struct {
	client *openai.Client
	model  string
}

// NewAgentValidator creates a validation agent using the given client and model.
func NewAgentValidator(client *openai.Client, model string) *AgentValidator {
	return &AgentValidator{client: client, model: model}
}

// Validate returns the model's verdict on whether the answer is supported by
// the retrieved segments.
func (v *AgentValidator) Validate(ctx context.Context, answer, query string, retrieved []domain.RetrievalResult) (domain.Verdict, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User query: %s\n\nContext passages:\n", query)
	for i, r := range retrieved {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Text)
	}
	fmt.Fprintf(&sb, "\nGenerated answer:\n%s\n", answer)

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: validatorPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("validation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Verdict{}, fmt.Errorf("validation returned no choices")
	}

	var verdict domain.Verdict
	if err := strictDecode(resp.Choices[0].Message.Content, &verdict); err != nil {
		return domain.Verdict{}, fmt.Errorf("malformed validation verdict: %w", err)
	}
	return verdict, nil
}
