package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrFlowComplete is returned when input arrives after the terminal step
	ErrFlowComplete = errors.New("conversation already complete")
	// ErrStaleStep is returned when an answer targets a step that is no longer current
	ErrStaleStep = errors.New("answer does not target the current step")
	// ErrSuggestionUnsupported is returned for steps that declare no assistant intent
	ErrSuggestionUnsupported = errors.New("step does not support suggestions")
)

// ValidationError means a required step received an empty answer. The step is
// re-prompted and neither the document nor the position changes.
type ValidationError struct {
	StepID string
	Prompt string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %q requires an answer", e.StepID)
}

// AssistantUnavailableError means a suggestion could not be produced. The user
// continues manually.
type AssistantUnavailableError struct {
	StepID string
	Cause  error
}

func (e *AssistantUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assistant unavailable for step %q: %v", e.StepID, e.Cause)
	}
	return fmt.Sprintf("assistant unavailable for step %q", e.StepID)
}

func (e *AssistantUnavailableError) Unwrap() error {
	return e.Cause
}
