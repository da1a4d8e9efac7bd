package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/session"
	"github.com/jonathan/cv-builder/internal/types"
)

// Exporter turns an HTML preview into a PDF
type Exporter interface {
	ExportPreview(ctx context.Context, preview *rendering.Preview, fileName string) (*export.Artifact, error)
}

// DocumentStore persists finished CV documents
type DocumentStore interface {
	SaveDocument(ctx context.Context, sessionID uuid.UUID, templateID string, doc *types.StructuredDocument) (*db.SavedDocument, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*db.SavedDocument, error)
	ListDocuments(ctx context.Context, limit int) ([]db.DocumentSummary, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error)
	Close()
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	store          *session.Store
	renderer       *rendering.Renderer
	exporter       Exporter
	documents      DocumentStore
	rateLimiter    *ratelimit.Limiter
	validator      *validator.Validate
	allowedOrigins []string
	defaultTmpl    string
	verbose        bool
	closeOnce      sync.Once
}

// Config holds server configuration
type Config struct {
	Port           string
	Store          *session.Store
	Renderer       *rendering.Renderer
	Exporter       Exporter
	Documents      DocumentStore // optional; document endpoints answer 503 without it
	RateLimit      *ratelimit.Config
	AllowedOrigins []string
	DefaultTmpl    string
	Verbose        bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if cfg.Exporter == nil {
		cfg.Exporter = export.NewPDFExporter(cfg.Verbose)
	}
	if cfg.DefaultTmpl == "" {
		cfg.DefaultTmpl = rendering.DefaultTemplate
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.LoadConfig()
	}

	s := &Server{
		store:          cfg.Store,
		renderer:       cfg.Renderer,
		exporter:       cfg.Exporter,
		documents:      cfg.Documents,
		rateLimiter:    ratelimit.NewLimiter(cfg.RateLimit),
		validator:      validator.New(),
		allowedOrigins: cfg.AllowedOrigins,
		defaultTmpl:    cfg.DefaultTmpl,
		verbose:        cfg.Verbose,
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleListTemplates)

	// Conversation endpoints
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/answers", s.handleSubmitAnswer)
	mux.HandleFunc("POST /sessions/{id}/suggestion", s.handleSuggestion)
	mux.HandleFunc("POST /sessions/{id}/suggestion/stream", s.handleSuggestionStream)

	// Output endpoints
	mux.HandleFunc("GET /sessions/{id}/preview", s.handlePreview)
	mux.HandleFunc("GET /sessions/{id}/previews", s.handleListPreviews)
	mux.HandleFunc("POST /sessions/{id}/export", s.handleExport)
	mux.HandleFunc("POST /sessions/{id}/save", s.handleSaveDocument)

	// Saved documents
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDeleteDocument)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Covers PDF export and slow suggestions
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter and the document store. It is safe to call twice.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		if s.documents != nil {
			s.documents.Close()
		}
	})
}

// withCORS adds CORS headers. With no configured origins every origin is allowed.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.allowedOrigins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.allowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"sessions":    s.store.Len(),
		"persistence": s.documents != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleError maps err to a status code and writes it. Assistant failures carry
// the notice shown to the user.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[SERVER] Internal error: %v", err)
	} else if s.verbose {
		log.Printf("[SERVER] %d: %v", status, err)
	}

	var assistantErr *flow.AssistantUnavailableError
	if errors.As(err, &assistantErr) {
		s.jsonResponse(w, status, map[string]string{
			"error":  err.Error(),
			"notice": flow.AssistantUnavailableNotice,
		})
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decodeRequest decodes a JSON body into dst and validates its struct tags
func (s *Server) decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := s.validator.Struct(dst); err != nil {
		return extractValidationError(err)
	}
	return nil
}

// extractValidationError converts the first validator failure into an ErrValidation
func extractValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
