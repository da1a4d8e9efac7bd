package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cv-builder/internal/types"
)

// SaveDocument stores the document for a session. Saving the same session again
// replaces the earlier content and keeps the document id.
func (db *DB) SaveDocument(ctx context.Context, sessionID uuid.UUID, templateID string, doc *types.StructuredDocument) (*SavedDocument, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	content, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	fullName, title := headline(doc)
	saved := &SavedDocument{
		SessionID:  sessionID,
		FullName:   fullName,
		Title:      title,
		TemplateID: templateID,
		Content:    doc,
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO cv_documents (session_id, full_name, title, template_id, content)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id) DO UPDATE
		 SET full_name = $2, title = $3, template_id = $4, content = $5, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		sessionID, fullName, title, templateID, content,
	).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return saved, nil
}

// GetDocument retrieves a saved document by id. It returns nil when none exists.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*SavedDocument, error) {
	var saved SavedDocument
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, full_name, title, template_id, content, created_at, updated_at
		 FROM cv_documents WHERE id = $1`,
		id,
	).Scan(&saved.ID, &saved.SessionID, &saved.FullName, &saved.Title, &saved.TemplateID,
		&content, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc := types.NewStructuredDocument()
	if err := json.Unmarshal(content, doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
	}
	saved.Content = doc
	return &saved, nil
}

// ListDocuments returns the most recently updated documents first
func (db *DB) ListDocuments(ctx context.Context, limit int) ([]DocumentSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, full_name, title, updated_at
		 FROM cv_documents ORDER BY updated_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	summaries := []DocumentSummary{}
	for rows.Next() {
		var s DocumentSummary
		if err := rows.Scan(&s.ID, &s.SessionID, &s.FullName, &s.Title, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return summaries, nil
}

// DeleteDocument removes a saved document; it reports whether one was deleted
func (db *DB) DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM cv_documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func headline(doc *types.StructuredDocument) (string, string) {
	return strings.TrimSpace(doc.PersonalInfo.FullName), strings.TrimSpace(doc.PersonalInfo.Title)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
