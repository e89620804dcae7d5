package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragserve/internal/domain"
)

// newFakeChatServer returns a client wired to a server that always answers
// chat completions with the given assistant content.
func newFakeChatServer(t *testing.T, content string) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestGenerateReturnsTrimmedContent(t *testing.T) {
	client := newFakeChatServer(t, "  Paris is the capital of France.  ")
	g := NewOpenAIGenerator(client, "test-model", 0.1)

	answer, err := g.Generate(context.Background(), []domain.Turn{
		{Role: domain.RoleSystem, Content: "answer from context"},
		{Role: domain.RoleUser, Content: "capital of france?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", answer)
}

func TestGenerateStructuredDecodesTerms(t *testing.T) {
	client := newFakeChatServer(t, `{"expanded_terms": [" paris ", "french capital", "", "city of light"]}`)
	g := NewOpenAIGenerator(client, "test-model", 0.7)

	terms, err := g.GenerateStructured(context.Background(), "expand: capital of france")
	require.NoError(t, err)
	assert.Equal(t, []string{"paris", "french capital", "city of light"}, terms)
}

func TestGenerateStructuredRejectsMalformedOutput(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "here are some terms: paris"},
		{"unknown key", `{"terms": ["paris"]}`},
		{"wrong value type", `{"expanded_terms": "paris"}`},
		{"trailing content", `{"expanded_terms": ["paris"]} extra`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newFakeChatServer(t, tc.content)
			g := NewOpenAIGenerator(client, "test-model", 0)

			_, err := g.GenerateStructured(context.Background(), "expand")
			assert.Error(t, err)
		})
	}
}

func TestValidatorDecodesVerdict(t *testing.T) {
	client := newFakeChatServer(t, `{"is_valid": false, "reason": "unsupported claim"}`)
	v := NewAgentValidator(client, "test-model")

	verdict, err := v.Validate(context.Background(), "The moon is cheese.", "what is the moon?", []domain.RetrievalResult{
		{Text: "The moon is a natural satellite."},
	})
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.Equal(t, "unsupported claim", verdict.Reason)
}
