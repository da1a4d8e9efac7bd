package session

import "errors"

var (
	// ErrSessionNotFound is returned for unknown, expired or deleted sessions
	ErrSessionNotFound = errors.New("session not found")
	// ErrSuggestionPending is returned when an answer or a second suggestion arrives
	// while a suggestion for the session is still outstanding
	ErrSuggestionPending = errors.New("a suggestion is already in progress")
)
