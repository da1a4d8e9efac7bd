package session

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonathan/cv-builder/internal/flow"
)

// Defaults for Options
const (
	DefaultMaxSessions = 1000
	DefaultTTL         = 2 * time.Hour
)

// EngineFactory builds the engine for a new session
type EngineFactory func() (*flow.Engine, error)

// Options bounds the store
type Options struct {
	MaxSessions int
	TTL         time.Duration
	Verbose     bool
}

// Store keeps live sessions in a bounded LRU. Sessions idle for longer than the TTL,
// or evicted when the store is full, are gone for good.
type Store struct {
	sessions  *expirable.LRU[uuid.UUID, *Session]
	newEngine EngineFactory
}

// NewStore creates a store that builds engines with factory
func NewStore(factory EngineFactory, opts Options) *Store {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	var onEvict expirable.EvictCallback[uuid.UUID, *Session]
	if opts.Verbose {
		onEvict = func(id uuid.UUID, _ *Session) {
			log.Printf("[SESSION] Evicted %s", id)
		}
	}

	return &Store{
		sessions:  expirable.NewLRU[uuid.UUID, *Session](opts.MaxSessions, onEvict, opts.TTL),
		newEngine: factory,
	}
}

// Create starts a new session
func (s *Store) Create() (*Session, error) {
	engine, err := s.newEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to start conversation: %w", err)
	}

	sess := newSession(engine)
	s.sessions.Add(sess.ID, sess)
	return sess, nil
}

// Get returns a live session and renews its TTL
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.sessions.Add(id, sess)
	return sess, nil
}

// Lookup parses id and returns the session
func (s *Store) Lookup(id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return s.Get(parsed)
}

// Delete removes a session; it reports whether the session existed
func (s *Store) Delete(id uuid.UUID) bool {
	return s.sessions.Remove(id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.sessions.Len()
}
