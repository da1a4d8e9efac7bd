package assistant

import "fmt"

// APICallError represents a failed or unusable model call
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("assistant API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("assistant API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// PromptError represents a suggestion request that cannot be turned into a prompt
type PromptError struct {
	Intent string
	Cause  error
}

func (e *PromptError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no prompt for intent %q: %v", e.Intent, e.Cause)
	}
	return fmt.Sprintf("no prompt for intent %q", e.Intent)
}

func (e *PromptError) Unwrap() error {
	return e.Cause
}
