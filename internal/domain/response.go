package domain

// Status is the terminal state of a query workflow run. Every status maps to
// exactly one user-facing message class.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusNoResults        Status = "no_results"
	StatusValidationFailed Status = "validation_failed"
	StatusFailed           Status = "failed"
	StatusError            Status = "error"
)

// Source is one de-duplicated document reference attached to an answer.
type Source struct {
	DocumentID string `json:"document_id"`
	Snippet    string `json:"snippet,omitempty"`
}

// QueryResponse is the structured outcome of a query workflow. Message is the
// fully formatted user-facing text; Answer is the raw generated answer before
// formatting (empty for non-success statuses).
type QueryResponse struct {
	Status  Status   `json:"status"`
	Message string   `json:"message"`
	Answer  string   `json:"answer,omitempty"`
	Sources []Source `json:"sources,omitempty"`
}

// Verdict is the validation agent's judgement of a generated answer.
type Verdict struct {
	Valid  bool   `json:"is_valid"`
	Reason string `json:"reason,omitempty"`
}
