// Package server provides the HTTP REST API over CV-building sessions.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/session"
)

var (
	// ErrPersistenceDisabled is returned by document endpoints when no database is configured
	ErrPersistenceDisabled = errors.New("document persistence is not configured")
	// ErrConversationIncomplete is returned when saving a session that has not reached the end
	ErrConversationIncomplete = errors.New("conversation is not complete")
	// ErrDocumentNotFound indicates a saved document does not exist
	ErrDocumentNotFound = errors.New("document not found")
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		answerErr     *flow.ValidationError
		assistantErr  *flow.AssistantUnavailableError
		templateErr   *rendering.TemplateError
		exportErr     *export.ExportError
	)

	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &answerErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, flow.ErrStaleStep),
		errors.Is(err, flow.ErrFlowComplete),
		errors.Is(err, session.ErrSuggestionPending),
		errors.Is(err, ErrConversationIncomplete):
		return http.StatusConflict
	case errors.Is(err, flow.ErrSuggestionUnsupported):
		return http.StatusBadRequest
	case errors.As(err, &assistantErr), errors.Is(err, ErrPersistenceDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &templateErr):
		if templateErr.Cause == nil {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	case errors.As(err, &exportErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
