package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/script"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/session"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	text  string
	err   error
	delay time.Duration
}

func (f *fakeAssistant) Suggest(ctx context.Context, _ types.SuggestionRequest) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

type fakeExporter struct {
	last     *rendering.Preview
	fileName string
	err      error
}

func (f *fakeExporter) ExportPreview(_ context.Context, preview *rendering.Preview, fileName string) (*export.Artifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.last = preview
	f.fileName = fileName
	return &export.Artifact{FileName: export.SanitizeFileName(fileName), Data: []byte("%PDF-1.4")}, nil
}

// fakeDocuments is an in-memory DocumentStore
type fakeDocuments struct {
	docs   map[uuid.UUID]*db.SavedDocument
	closed bool
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[uuid.UUID]*db.SavedDocument)}
}

func (f *fakeDocuments) SaveDocument(_ context.Context, sessionID uuid.UUID, templateID string, doc *types.StructuredDocument) (*db.SavedDocument, error) {
	for _, saved := range f.docs {
		if saved.SessionID == sessionID {
			saved.Content = doc
			saved.TemplateID = templateID
			return saved, nil
		}
	}
	saved := &db.SavedDocument{
		ID:         uuid.New(),
		SessionID:  sessionID,
		FullName:   doc.PersonalInfo.FullName,
		Title:      doc.PersonalInfo.Title,
		TemplateID: templateID,
		Content:    doc,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.docs[saved.ID] = saved
	return saved, nil
}

func (f *fakeDocuments) GetDocument(_ context.Context, id uuid.UUID) (*db.SavedDocument, error) {
	return f.docs[id], nil
}

func (f *fakeDocuments) ListDocuments(_ context.Context, _ int) ([]db.DocumentSummary, error) {
	out := make([]db.DocumentSummary, 0, len(f.docs))
	for _, saved := range f.docs {
		out = append(out, db.DocumentSummary{ID: saved.ID, SessionID: saved.SessionID, FullName: saved.FullName})
	}
	return out, nil
}

func (f *fakeDocuments) DeleteDocument(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.docs[id]
	delete(f.docs, id)
	return ok, nil
}

func (f *fakeDocuments) Close() { f.closed = true }

type testDeps struct {
	assistant flow.Assistant
	exporter  Exporter
	documents DocumentStore
	rateLimit *ratelimit.Config
	origins   []string
}

func newTestServer(t *testing.T, deps testDeps) *Server {
	t.Helper()
	store := session.NewStore(func() (*flow.Engine, error) {
		return flow.NewEngine(script.MustDefault(), flow.Options{Assistant: deps.assistant})
	}, session.Options{})

	if deps.exporter == nil {
		deps.exporter = &fakeExporter{}
	}
	if deps.rateLimit == nil {
		deps.rateLimit = &ratelimit.Config{Enabled: false}
	}

	s, err := New(Config{
		Store:          store,
		Renderer:       rendering.MustNewRenderer(),
		Exporter:       deps.exporter,
		Documents:      deps.documents,
		RateLimit:      deps.rateLimit,
		AllowedOrigins: deps.origins,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

type sessionResponse struct {
	ID         string                   `json:"id"`
	Snapshot   flow.Snapshot            `json:"snapshot"`
	Document   types.StructuredDocument `json:"document"`
	Transcript []types.TranscriptEntry  `json:"transcript"`
}

func createSession(t *testing.T, s *Server) sessionResponse {
	t.Helper()
	w := doRequest(t, s, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// answerAll submits each input to whatever step is current
func answerAll(t *testing.T, s *Server, id string, stepID string, inputs ...string) string {
	t.Helper()
	for _, input := range inputs {
		w := doRequest(t, s, http.MethodPost, "/sessions/"+id+"/answers", AnswerRequest{StepID: stepID, Input: input})
		require.Equal(t, http.StatusOK, w.Code, "step %s: %s", stepID, w.Body.String())
		var resp AnswerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		stepID = resp.Snapshot.StepID
	}
	return stepID
}

// toSummary answers the identity questions and stops on the summary step
func toSummary(t *testing.T, s *Server, id string) string {
	t.Helper()
	return answerAll(t, s, id, "fullName",
		"Jeanne Dupont", "Cheffe de projet", "jeanne@example.com",
		"passer", "passer", "passer", "passer")
}

// completeConversation walks a session to the end, declining every optional section
func completeConversation(t *testing.T, s *Server, id string) {
	t.Helper()
	stepID := toSummary(t, s, id)
	stepID = answerAll(t, s, id, stepID,
		"passer", "non",
		"Master Management", "Sorbonne", "passer", "2015 - 2017", "passer", "non",
		"Gestion", "Agile, Scrum", "non",
		"non", "passer")
	require.Equal(t, script.TerminalID, stepID)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testDeps{})

	w := doRequest(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["persistence"])
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t, testDeps{})

	resp := createSession(t, s)

	_, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "fullName", resp.Snapshot.StepID)
	assert.Equal(t, 1, resp.Snapshot.State.CurrentStepIndex)
	assert.False(t, resp.Snapshot.Completed)
	require.Len(t, resp.Transcript, 2)
	assert.Equal(t, types.RoleEngine, resp.Transcript[0].Role)
}

func TestGetSession(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)
	answerAll(t, s, created.ID, "fullName", "Jeanne Dupont")

	w := doRequest(t, s, http.MethodGet, "/sessions/"+created.ID, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "title", resp.Snapshot.StepID)
	assert.Equal(t, "Jeanne Dupont", resp.Document.PersonalInfo.FullName)
	assert.Len(t, resp.Transcript, 4)
}

func TestGetSession_NotFound(t *testing.T) {
	s := newTestServer(t, testDeps{})

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		w := doRequest(t, s, http.MethodGet, "/sessions/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodDelete, "/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, s, http.MethodGet, "/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitAnswer(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/answers",
		AnswerRequest{StepID: "fullName", Input: "  Jeanne Dupont  "})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "title", resp.Snapshot.StepID)
	require.NotEmpty(t, resp.Entries)
	assert.Equal(t, types.RoleUser, resp.Entries[0].Role)
	assert.Equal(t, "Jeanne Dupont", resp.Entries[0].Text)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)
	path := "/sessions/" + created.ID + "/answers"

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "empty required answer", body: AnswerRequest{StepID: "fullName", Input: "   "}, status: http.StatusUnprocessableEntity},
		{name: "stale step", body: AnswerRequest{StepID: "email", Input: "x@example.com"}, status: http.StatusConflict},
		{name: "missing step id", body: map[string]string{"input": "Jeanne"}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	// Nothing above moved the conversation
	w := doRequest(t, s, http.MethodGet, "/sessions/"+created.ID, nil)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fullName", resp.Snapshot.StepID)
	assert.Len(t, resp.Transcript, 2)
}

func TestSubmitAnswer_ValidationCarriesPrompt(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/answers", AnswerRequest{StepID: "fullName"})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fullName", resp["stepId"])
	assert.Equal(t, created.Snapshot.Prompt, resp["prompt"])
}

func TestSubmitAnswer_InvalidJSON(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+created.ID+"/answers", strings.NewReader("{"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestion(t *testing.T) {
	s := newTestServer(t, testDeps{assistant: &fakeAssistant{text: "Cheffe de projet orientée résultats."}})
	created := createSession(t, s)
	stepID := toSummary(t, s, created.ID)
	require.Equal(t, "summary", stepID)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/suggestion", SuggestionRequest{StepID: stepID})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SuggestionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Cheffe de projet orientée résultats.", resp.Suggestion)

	// Accepting the suggestion unchanged flags the entry
	w = doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/answers", AnswerRequest{StepID: stepID, Input: resp.Suggestion})
	require.Equal(t, http.StatusOK, w.Code)
	var answer AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	require.NotEmpty(t, answer.Entries)
	assert.True(t, answer.Entries[0].IsAIGenerated)
}

func TestSuggestion_AssistantUnavailable(t *testing.T) {
	s := newTestServer(t, testDeps{assistant: &fakeAssistant{err: errors.New("quota exceeded")}})
	created := createSession(t, s)
	stepID := toSummary(t, s, created.ID)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/suggestion", SuggestionRequest{StepID: stepID})

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, flow.AssistantUnavailableNotice, resp["notice"])

	// The user continues manually on the same step
	w = doRequest(t, s, http.MethodGet, "/sessions/"+created.ID, nil)
	var view sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "summary", view.Snapshot.StepID)
}

func TestSuggestion_Unsupported(t *testing.T) {
	s := newTestServer(t, testDeps{assistant: &fakeAssistant{text: "x"}})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/suggestion", SuggestionRequest{StepID: "fullName"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestionStream(t *testing.T) {
	s := newTestServer(t, testDeps{assistant: &fakeAssistant{text: "Un résumé."}})
	created := createSession(t, s)
	stepID := toSummary(t, s, created.ID)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/suggestion/stream", SuggestionRequest{StepID: stepID})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: pending\n")
	assert.Contains(t, body, "event: suggestion\n")
	assert.Contains(t, body, "Un résumé.")
	assert.Less(t, strings.Index(body, "event: pending"), strings.Index(body, "event: suggestion"))
}

func TestSuggestionStream_Notice(t *testing.T) {
	s := newTestServer(t, testDeps{assistant: &fakeAssistant{err: errors.New("boom")}})
	created := createSession(t, s)
	stepID := toSummary(t, s, created.ID)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/suggestion/stream", SuggestionRequest{StepID: stepID})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: notice\n")
	assert.NotContains(t, w.Body.String(), "event: suggestion")
}

func TestSuggestionStream_KeepAlive(t *testing.T) {
	previous := sseKeepAlive
	sseKeepAlive = 5 * time.Millisecond
	t.Cleanup(func() { sseKeepAlive = previous })

	s := newTestServer(t, testDeps{assistant: &fakeAssistant{text: "Un résumé.", delay: 50 * time.Millisecond}})
	created := createSession(t, s)
	stepID := toSummary(t, s, created.ID)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/suggestion/stream", SuggestionRequest{StepID: stepID})

	body := w.Body.String()
	assert.Contains(t, body, ": keep-alive\n\n")
	assert.Less(t, strings.Index(body, ": keep-alive"), strings.Index(body, "event: suggestion"))
}

func TestSuggestionStream_StaleStep(t *testing.T) {
	s := newTestServer(t, testDeps{assistant: &fakeAssistant{text: "Un résumé."}})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/suggestion/stream", SuggestionRequest{StepID: "summary"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error\n")
	assert.Contains(t, w.Body.String(), `"status":409`)
}

func TestListTemplates(t *testing.T) {
	s := newTestServer(t, testDeps{})

	w := doRequest(t, s, http.MethodGet, "/templates", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Templates []rendering.Template `json:"templates"`
		Default   string               `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, rendering.DefaultTemplate, resp.Default)
	ids := make([]string, 0, len(resp.Templates))
	for _, tmpl := range resp.Templates {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{"classic", "latex", "modern"}, ids)
}

func TestPreview(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)
	answerAll(t, s, created.ID, "fullName", "Jeanne Dupont")

	w := doRequest(t, s, http.MethodGet, "/sessions/"+created.ID+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `id="cv"`)
	assert.Contains(t, w.Body.String(), "Jeanne Dupont")

	w = doRequest(t, s, http.MethodGet, "/sessions/"+created.ID+"/preview?template=latex", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rendering.FormatLaTeX.ContentType(), w.Header().Get("Content-Type"))

	w = doRequest(t, s, http.MethodGet, "/sessions/"+created.ID+"/preview?template=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPreviews(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodGet, "/sessions/"+created.ID+"/previews", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Previews []rendering.Preview `json:"previews"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Previews, 3)
}

func TestExport(t *testing.T) {
	exporter := &fakeExporter{}
	s := newTestServer(t, testDeps{exporter: exporter})
	created := createSession(t, s)
	answerAll(t, s, created.ID, "fullName", "Jeanne Dupont")

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/export", ExportRequest{Template: "modern"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jeanne-Dupont.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())
	require.NotNil(t, exporter.last)
	assert.Equal(t, "modern", exporter.last.TemplateID)
	assert.Equal(t, "Jeanne Dupont", exporter.fileName)
}

func TestExport_Errors(t *testing.T) {
	s := newTestServer(t, testDeps{exporter: &fakeExporter{err: &export.ExportError{Message: "chrome crashed"}}})
	created := createSession(t, s)
	path := "/sessions/" + created.ID + "/export"

	w := doRequest(t, s, http.MethodPost, path, ExportRequest{Template: "latex"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodPost, path, ExportRequest{Template: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, s, http.MethodPost, path, ExportRequest{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSaveDocument_PersistenceDisabled(t *testing.T) {
	s := newTestServer(t, testDeps{})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/save", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(t, s, http.MethodGet, "/documents", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSaveDocument_Incomplete(t *testing.T) {
	s := newTestServer(t, testDeps{documents: newFakeDocuments()})
	created := createSession(t, s)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/save", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSaveAndFetchDocument(t *testing.T) {
	docs := newFakeDocuments()
	s := newTestServer(t, testDeps{documents: docs})
	created := createSession(t, s)
	completeConversation(t, s, created.ID)

	w := doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/save?template=modern", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved db.SavedDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "modern", saved.TemplateID)
	assert.Equal(t, "Jeanne Dupont", saved.FullName)

	// Saving again replaces the same record
	w = doRequest(t, s, http.MethodPost, "/sessions/"+created.ID+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, docs.docs, 1)

	w = doRequest(t, s, http.MethodGet, "/documents/"+saved.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched db.SavedDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.NotNil(t, fetched.Content)
	require.Len(t, fetched.Content.Education, 1)
	assert.Equal(t, "Sorbonne", fetched.Content.Education[0].School)

	w = doRequest(t, s, http.MethodGet, "/documents?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), saved.ID.String())

	w = doRequest(t, s, http.MethodDelete, "/documents/"+saved.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, s, http.MethodGet, "/documents/"+saved.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocuments_BadRequests(t *testing.T) {
	s := newTestServer(t, testDeps{documents: newFakeDocuments()})

	w := doRequest(t, s, http.MethodGet, "/documents/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodGet, "/documents?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, s, http.MethodDelete, "/documents/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CloseReleasesDocuments(t *testing.T) {
	docs := newFakeDocuments()
	s := newTestServer(t, testDeps{documents: docs})

	s.Close()

	assert.True(t, docs.closed)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, testDeps{origins: []string{"https://cv.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "https://cv.example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cv.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit_Suggestion(t *testing.T) {
	s := newTestServer(t, testDeps{
		assistant: &fakeAssistant{text: "Un résumé."},
		rateLimit: &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			Rules: []ratelimit.Rule{
				{Path: "/sessions/*/suggestion", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
			},
		},
	})
	created := createSession(t, s)
	stepID := toSummary(t, s, created.ID)
	path := "/sessions/" + created.ID + "/suggestion"

	w := doRequest(t, s, http.MethodPost, path, SuggestionRequest{StepID: stepID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = doRequest(t, s, http.MethodPost, path, SuggestionRequest{StepID: stepID})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{Renderer: rendering.MustNewRenderer()})
	assert.Error(t, err)

	store := session.NewStore(func() (*flow.Engine, error) {
		return flow.NewEngine(script.MustDefault(), flow.Options{})
	}, session.Options{})
	_, err = New(Config{Store: store})
	assert.Error(t, err)
}
