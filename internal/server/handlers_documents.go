package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/rendering"
)

// ExportRequest is the body of POST /sessions/{id}/export
type ExportRequest struct {
	Template string `json:"template"`
	FileName string `json:"file_name" validate:"omitempty,max=120"`
}

// handleListTemplates returns the registered templates
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"templates": s.renderer.Templates(),
		"default":   s.defaultTmpl,
	})
}

// templateID returns the requested template or the configured default
func (s *Server) templateID(requested string) string {
	if requested == "" {
		return s.defaultTmpl
	}
	return requested
}

// handlePreview renders the session's document with one template
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.sessionDocument(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	preview, err := s.renderer.Render(doc, s.templateID(r.URL.Query().Get("template")))
	if err != nil {
		s.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", preview.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(preview.Body)); err != nil {
		log.Printf("Error writing preview: %v", err)
	}
}

// handleListPreviews renders the session's document with every template
func (s *Server) handleListPreviews(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.sessionDocument(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	previews, err := s.renderer.RenderAll(r.Context(), doc)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"previews": previews})
}

// handleExport renders the session's document and prints it to PDF
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.sessionDocument(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	var req ExportRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	preview, err := s.renderer.Render(doc, s.templateID(req.Template))
	if err != nil {
		s.handleError(w, err)
		return
	}
	if preview.Format != rendering.FormatHTML {
		s.handleError(w, &ErrValidation{Field: "template", Message: "only HTML templates can be exported to PDF"})
		return
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = doc.PersonalInfo.FullName
	}

	artifact, err := s.exporter.ExportPreview(r.Context(), preview, fileName)
	if err != nil {
		s.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		log.Printf("Error writing PDF: %v", err)
	}
}

// handleSaveDocument persists a finished session's document. Saving again replaces it.
func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	if s.documents == nil {
		s.handleError(w, ErrPersistenceDisabled)
		return
	}

	sess, doc, err := s.sessionDocument(r)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if !sess.Snapshot().Completed {
		s.handleError(w, ErrConversationIncomplete)
		return
	}

	templateID := s.templateID(r.URL.Query().Get("template"))
	if _, ok := s.renderer.Lookup(templateID); !ok {
		s.handleError(w, &rendering.TemplateError{TemplateID: templateID, Message: "unknown template"})
		return
	}

	saved, err := s.documents.SaveDocument(r.Context(), sess.ID, templateID, doc)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to save document: %w", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, saved)
}

// handleListDocuments lists saved documents, most recently updated first
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.documents == nil {
		s.handleError(w, ErrPersistenceDisabled)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.handleError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = parsed
	}

	docs, err := s.documents.ListDocuments(r.Context(), limit)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to list documents: %w", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleGetDocument returns one saved document
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.documents == nil {
		s.handleError(w, ErrPersistenceDisabled)
		return
	}

	id, err := parseDocumentID(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	saved, err := s.documents.GetDocument(r.Context(), id)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to get document: %w", err))
		return
	}
	if saved == nil {
		s.handleError(w, ErrDocumentNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, saved)
}

// handleDeleteDocument removes a saved document
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if s.documents == nil {
		s.handleError(w, ErrPersistenceDisabled)
		return
	}

	id, err := parseDocumentID(r)
	if err != nil {
		s.handleError(w, err)
		return
	}

	deleted, err := s.documents.DeleteDocument(r.Context(), id)
	if err != nil {
		s.handleError(w, fmt.Errorf("failed to delete document: %w", err))
		return
	}
	if !deleted {
		s.handleError(w, ErrDocumentNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseDocumentID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid document ID"}
	}
	return id, nil
}
