package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ragserve/internal/domain"
	"ragserve/internal/port"
)

// SystemPrompt seeds every session's conversation. The rules pin the model to
// the retrieved context so validation has something to hold it against.
const SystemPrompt = `You are a highly accurate and concise AI assistant. Your primary goal is to answer questions based solely on the provided context information. Follow these strict rules:
1. Use only the provided context. Do not use any outside knowledge.
2. Provide a direct and factual answer based on the context.
3. If the answer cannot be found or fully inferred from the given context, clearly state: 'I don't have enough information in the provided context to answer that.'
4. Never make up information or speculate beyond the context.
5. Be brief and to the point. Avoid verbose explanations.`

const expansionPromptTemplate = `You are an expert query expansion tool. Your task is to generate 3 to 5 highly relevant alternative phrasings, exact synonyms, and related keywords for a given user query. These expanded terms should help in finding more information in a document database. Do NOT include the original query in the output. The output MUST be a JSON object with a single key 'expanded_terms', whose value is a JSON array of strings. Do not add any conversational text, explanations, or extraneous characters outside the JSON.

User Query: '%s'

Example for 'capital of france': {"expanded_terms": ["paris", "french capital city", "city of light", "france's main city"]}

Your output JSON:`

// Fixed user-facing messages, one per terminal status class.
const (
	msgEmptyQuery       = "Could not process your query."
	msgNoResults        = "I couldn't find any relevant information for your query."
	msgRetrievalFailed  = "An error occurred while searching for relevant information."
	msgGenerationFailed = "An error occurred while generating the response."
)

// topKDefault is how many segments a query retrieves.
const topKDefault = 5

// QueryWorkflow answers one session's questions against the shared store,
// maintaining that session's conversation state. Not safe for concurrent use;
// each session owns exactly one instance.
type QueryWorkflow struct {
	store        port.VectorStore
	generator    port.Generator
	validator    port.Validator
	conversation *domain.Conversation
	topK         int
	logger       *slog.Logger
}

// NewQueryWorkflow creates a query workflow bound to the given conversation.
// topK <= 0 selects the default of 5.
func NewQueryWorkflow(
	store port.VectorStore,
	generator port.Generator,
	validator port.Validator,
	conversation *domain.Conversation,
	topK int,
	logger *slog.Logger,
) *QueryWorkflow {
	if topK <= 0 {
		topK = topKDefault
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryWorkflow{
		store:        store,
		generator:    generator,
		validator:    validator,
		conversation: conversation,
		topK:         topK,
		logger:       logger,
	}
}

// Conversation exposes the workflow's conversation state to its owning session.
func (w *QueryWorkflow) Conversation() *domain.Conversation { return w.conversation }

// Query runs the full query state machine and always returns a structured
// response; no error or panic crosses this boundary.
func (w *QueryWorkflow) Query(ctx context.Context, userQuery string) (resp domain.QueryResponse) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("query workflow panicked", "panic", r)
			resp = domain.QueryResponse{
				Status:  domain.StatusError,
				Message: fmt.Sprintf("An unexpected error occurred: %v", r),
			}
		}
	}()

	cleaned := strings.ToLower(strings.TrimSpace(userQuery))
	if cleaned == "" {
		return domain.QueryResponse{Status: domain.StatusFailed, Message: msgEmptyQuery}
	}

	enhanced := w.expandQuery(ctx, cleaned)

	retrieved, err := w.store.SearchText(ctx, enhanced, w.topK)
	if err != nil {
		w.logger.Error("retrieval failed", "error", err)
		return domain.QueryResponse{Status: domain.StatusFailed, Message: msgRetrievalFailed}
	}
	if len(retrieved) == 0 {
		return domain.QueryResponse{Status: domain.StatusNoResults, Message: msgNoResults}
	}

	answer, err := w.generate(ctx, userQuery, retrieved)
	if err != nil {
		w.logger.Error("generation failed", "error", err)
		return domain.QueryResponse{Status: domain.StatusFailed, Message: msgGenerationFailed}
	}

	verdict, err := w.validator.Validate(ctx, answer, userQuery, retrieved)
	if err != nil {
		w.logger.Error("validation failed", "error", err)
		return domain.QueryResponse{Status: domain.StatusFailed, Message: msgGenerationFailed}
	}
	if !verdict.Valid {
		reason := verdict.Reason
		if reason == "" {
			reason = "Unknown"
		}
		return domain.QueryResponse{
			Status:  domain.StatusValidationFailed,
			Message: fmt.Sprintf("Response validation failed. Reason: %s. Please rephrase your query.", reason),
		}
	}

	return FormatResponse(answer, retrieved)
}

// expandQuery asks the generator for alternative phrasings and unions them
// with the cleaned query. Any failure or malformed output degrades to the
// cleaned query alone. The union is sorted, so the enhanced query is
// order-independent with respect to the expansion list.
func (w *QueryWorkflow) expandQuery(ctx context.Context, cleaned string) string {
	terms, err := w.generator.GenerateStructured(ctx, fmt.Sprintf(expansionPromptTemplate, cleaned))
	if err != nil {
		w.logger.Debug("query expansion unavailable", "error", err)
		return cleaned
	}
	if len(terms) == 0 {
		return cleaned
	}

	set := map[string]struct{}{cleaned: {}}
	for _, term := range terms {
		set[term] = struct{}{}
	}
	union := make([]string, 0, len(set))
	for term := range set {
		union = append(union, term)
	}
	sort.Strings(union)
	return strings.Join(union, ", ")
}

// generate invokes the backend once with the conversation history plus a
// composed turn holding the retrieved context and the original query. On
// success the real user query and the answer are appended to the conversation;
// the synthetic composed turn is never recorded.
func (w *QueryWorkflow) generate(ctx context.Context, userQuery string, retrieved []domain.RetrievalResult) (string, error) {
	var contexts []string
	for i, r := range retrieved {
		contexts = append(contexts, fmt.Sprintf("Context from source %d:\n%s", i+1, r.Text))
	}
	composed := fmt.Sprintf("User Query: %s\n\nContext:\n%s\n\nAnswer:",
		userQuery, strings.Join(contexts, "\n\n"))

	turns := append(w.conversation.Turns(), domain.Turn{Role: domain.RoleUser, Content: composed})

	answer, err := w.generator.Generate(ctx, turns)
	if err != nil {
		return "", failStage(StageGenerate, "generation backend failed", err)
	}
	if answer == "" {
		return "", failStage(StageGenerate, "generation returned empty answer", nil)
	}

	w.conversation.Append(domain.RoleUser, userQuery)
	w.conversation.Append(domain.RoleAssistant, answer)
	return answer, nil
}
