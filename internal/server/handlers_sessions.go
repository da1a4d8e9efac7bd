package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/session"
	"github.com/jonathan/cv-builder/internal/types"
)

// AnswerRequest is the body of POST /sessions/{id}/answers
type AnswerRequest struct {
	StepID string `json:"step_id" validate:"required"`
	Input  string `json:"input"`
}

// AnswerResponse carries the transcript entries produced by an answer and the new position
type AnswerResponse struct {
	Entries  []types.TranscriptEntry `json:"entries"`
	Snapshot flow.Snapshot           `json:"snapshot"`
}

// SuggestionRequest is the body of the suggestion endpoints
type SuggestionRequest struct {
	StepID string `json:"step_id" validate:"required"`
}

// SuggestionResponse is an offered suggestion. Submitting it unchanged flags the
// answer as AI generated.
type SuggestionResponse struct {
	StepID     string `json:"stepId"`
	Suggestion string `json:"suggestion"`
}

// handleCreateSession starts a conversation and returns its opening state
func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.store.Create()
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, sess.View())
}

// handleGetSession returns the session snapshot, document and transcript
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Lookup(r.PathValue("id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.View())
}

// handleDeleteSession discards a conversation
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Lookup(r.PathValue("id"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.store.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitAnswer applies one answer to the current step
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Lookup(r.PathValue("id"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	var req AnswerRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	result, err := sess.Submit(req.StepID, req.Input)
	if err != nil {
		var answerErr *flow.ValidationError
		if errors.As(err, &answerErr) {
			s.jsonResponse(w, HTTPStatus(err), map[string]string{
				"error":  err.Error(),
				"stepId": answerErr.StepID,
				"prompt": answerErr.Prompt,
			})
			return
		}
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, AnswerResponse{
		Entries:  result.Entries,
		Snapshot: sess.Snapshot(),
	})
}

// handleSuggestion asks the assistant for a suggestion on the current step
func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Lookup(r.PathValue("id"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	var req SuggestionRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	text, err := sess.Suggest(r.Context(), req.StepID)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SuggestionResponse{StepID: req.StepID, Suggestion: text})
}

// handleSuggestionStream is handleSuggestion over SSE: a pending event is sent at
// once, keep-alive comments while the assistant works, then a suggestion, a notice
// or an error event.
func (s *Server) handleSuggestionStream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Lookup(r.PathValue("id"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	var req SuggestionRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := stream.pending(req.StepID); err != nil {
		log.Printf("[SERVER] Error writing SSE event: %v", err)
		return
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := sess.Suggest(r.Context(), req.StepID)
		done <- outcome{text: text, err: err}
	}()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := stream.keepAlive(); err != nil {
				log.Printf("[SERVER] Suggestion stream closed: %v", err)
				return
			}
		case res := <-done:
			var assistantErr *flow.AssistantUnavailableError
			switch {
			case errors.As(res.err, &assistantErr):
				err = stream.notice(req.StepID, flow.AssistantUnavailableNotice)
			case res.err != nil:
				err = stream.fail(res.err)
			default:
				err = stream.suggestion(SuggestionResponse{StepID: req.StepID, Suggestion: res.text})
			}
			if err != nil {
				log.Printf("[SERVER] Error writing SSE event: %v", err)
			}
			return
		}
	}
}

// sessionDocument looks up the session named in the path and returns a copy of its document
func (s *Server) sessionDocument(r *http.Request) (*session.Session, *types.StructuredDocument, error) {
	sess, err := s.store.Lookup(r.PathValue("id"))
	if err != nil {
		return nil, nil, err
	}
	return sess, sess.Document(), nil
}
