package script

import "fmt"

// ScriptError represents a malformed step script
type ScriptError struct {
	StepID  string
	Message string
	Cause   error
}

func (e *ScriptError) Error() string {
	prefix := "script error"
	if e.StepID != "" {
		prefix = fmt.Sprintf("script error at step %q", e.StepID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// InvalidBranchTargetError reports a skipTo/loopTo that cannot be followed
type InvalidBranchTargetError struct {
	StepID string
	Branch string // "skipTo" or "loopTo"
	Target string
	Reason string
}

func (e *InvalidBranchTargetError) Error() string {
	return fmt.Sprintf("invalid %s target %q on step %q: %s", e.Branch, e.Target, e.StepID, e.Reason)
}

// UnreachableStepError reports steps no path from the first question leads to
type UnreachableStepError struct {
	StepIDs []string
}

func (e *UnreachableStepError) Error() string {
	return fmt.Sprintf("unreachable steps: %v", e.StepIDs)
}
