// Package session owns live conversations. Each session holds one engine and
// serialises every call into it.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/types"
)

// Session is one conversation. It is safe for concurrent use.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	engine     *flow.Engine
	suggesting atomic.Bool
}

// View is a consistent copy of a session's state
type View struct {
	ID         uuid.UUID                `json:"id"`
	CreatedAt  time.Time                `json:"createdAt"`
	Snapshot   flow.Snapshot            `json:"snapshot"`
	Document   types.StructuredDocument `json:"document"`
	Transcript []types.TranscriptEntry  `json:"transcript"`
}

func newSession(engine *flow.Engine) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		engine:    engine,
	}
}

// Submit answers the current step. It fails with ErrSuggestionPending while a
// suggestion is outstanding so an answer cannot race the suggestion it may replace.
func (s *Session) Submit(stepID, input string) (*flow.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suggesting.Load() {
		return nil, ErrSuggestionPending
	}
	return s.engine.Submit(stepID, input)
}

// Suggest requests a suggestion for stepID. The session lock is released while the
// assistant runs; answers are rejected until it returns.
func (s *Session) Suggest(ctx context.Context, stepID string) (string, error) {
	if !s.suggesting.CompareAndSwap(false, true) {
		return "", ErrSuggestionPending
	}
	defer s.suggesting.Store(false)

	s.mu.Lock()
	req, err := s.engine.BeginSuggestion(stepID)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	text, callErr := s.engine.CallAssistant(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.CompleteSuggestion(stepID, text, callErr)
}

// Suggesting reports whether a suggestion is outstanding
func (s *Session) Suggesting() bool {
	return s.suggesting.Load()
}

// View returns a copy of the session's state
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		Snapshot:   s.engine.Snapshot(),
		Document:   copyDocument(s.engine.Document()),
		Transcript: s.engine.Transcript(),
	}
}

// Snapshot returns the engine snapshot
func (s *Session) Snapshot() flow.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// Document returns a deep copy of the document built so far
func (s *Session) Document() *types.StructuredDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := copyDocument(s.engine.Document())
	return &doc
}

func copyDocument(doc *types.StructuredDocument) types.StructuredDocument {
	out := *doc
	out.Experiences = make([]types.Experience, len(doc.Experiences))
	for i, exp := range doc.Experiences {
		exp.Achievements = append([]string{}, exp.Achievements...)
		out.Experiences[i] = exp
	}
	out.Education = append([]types.Education{}, doc.Education...)
	out.SkillGroups = make([]types.SkillGroup, len(doc.SkillGroups))
	for i, group := range doc.SkillGroups {
		group.Items = append([]string{}, group.Items...)
		out.SkillGroups[i] = group
	}
	out.Certifications = append([]types.Certification{}, doc.Certifications...)
	out.Languages = append([]types.Language{}, doc.Languages...)
	return out
}
