// Package fieldpath resolves symbolic field paths such as "experience.achievements"
// into write targets inside a StructuredDocument.
package fieldpath

import "fmt"

// UnknownFieldPathError is returned when a path is not part of the known vocabulary
type UnknownFieldPathError struct {
	Path string
}

func (e *UnknownFieldPathError) Error() string {
	return fmt.Sprintf("unknown field path: %q", e.Path)
}

// ApplyError represents a failure writing a resolved target into a document
type ApplyError struct {
	Message string
	Cause   error
}

func (e *ApplyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("field path apply error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("field path apply error: %s", e.Message)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}
