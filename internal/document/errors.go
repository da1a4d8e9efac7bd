package document

import "fmt"

// LoadError means a CV file could not be read or did not hold a valid document.
// Path is empty when the content did not come from a file.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := "cv document: " + e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("cv document %s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NormalizationError means a document has content that cannot be cleaned up
type NormalizationError struct {
	Message string
}

func (e *NormalizationError) Error() string {
	return "cv document normalization: " + e.Message
}
