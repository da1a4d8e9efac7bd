package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/types"
)

// Listing bounds for ListDocuments
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// SavedDocument is a persisted CV
type SavedDocument struct {
	ID         uuid.UUID                 `json:"id"`
	SessionID  uuid.UUID                 `json:"sessionId"`
	FullName   string                    `json:"fullName"`
	Title      string                    `json:"title"`
	TemplateID string                    `json:"templateId,omitempty"`
	Content    *types.StructuredDocument `json:"content"`
	CreatedAt  time.Time                 `json:"createdAt"`
	UpdatedAt  time.Time                 `json:"updatedAt"`
}

// DocumentSummary is a SavedDocument without its content
type DocumentSummary struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`
	FullName  string    `json:"fullName"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}
