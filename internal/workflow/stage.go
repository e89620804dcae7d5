package workflow

import "fmt"

// Stage names one step of a workflow state machine.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageParse    Stage = "parse"
	StageChunk    Stage = "chunk"
	StageEmbed    Stage = "embed"
	StageStore    Stage = "store"
	StageExpand   Stage = "expand"
	StageRetrieve Stage = "retrieve"
	StageGenerate Stage = "generate"
	StageValidate Stage = "validate"
)

// StageError records which stage short-circuited a workflow and why. Workflows
// convert collaborator failures into StageErrors instead of letting them
// propagate, so callers and tests can assert on the specific failure cause.
type StageError struct {
	Stage  Stage
	Reason string
	Err    error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s stage failed: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %s", e.Stage, e.Reason)
}

func (e *StageError) Unwrap() error { return e.Err }

func failStage(stage Stage, reason string, err error) *StageError {
	return &StageError{Stage: stage, Reason: reason, Err: err}
}
