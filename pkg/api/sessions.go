package api

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gomoku3d/pkg/engine"
	"github.com/yourusername/gomoku3d/pkg/resolver"
)

// ErrTooManySessions is returned by Create when the store is full.
var ErrTooManySessions = errors.New("too many sessions")

// Session is one game served over the API.
type Session struct {
	ID       string
	Engine   *engine.Engine
	Resolver resolver.Resolver
	Created  time.Time
}

// SessionStore holds the open game sessions in memory.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	defaults    engine.Options
	maxSessions int
}

// NewSessionStore creates a store whose games default to opts. A
// maxSessions of zero or less means no limit.
func NewSessionStore(defaults engine.Options, maxSessions int) *SessionStore {
	if defaults.BoardSize == 0 {
		defaults.BoardSize = engine.DefaultBoardSize
	}
	if defaults.WinLength == 0 {
		defaults.WinLength = engine.DefaultWinLength
	}
	return &SessionStore{
		sessions:    make(map[string]*Session),
		defaults:    defaults,
		maxSessions: maxSessions,
	}
}

// Defaults returns the options used for games created without overrides.
func (s *SessionStore) Defaults() engine.Options {
	return s.defaults
}

// Create starts a new game. Zero fields of req take the store defaults.
func (s *SessionStore) Create(req CreateGameRequest) (*Session, error) {
	opts := s.defaults
	if req.BoardSize != 0 {
		opts.BoardSize = req.BoardSize
		if req.WinLength == 0 && opts.WinLength > opts.BoardSize+1 {
			opts.WinLength = opts.BoardSize + 1
		}
	}
	if req.WinLength != 0 {
		opts.WinLength = req.WinLength
	}

	e, err := engine.NewEngine(opts)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:       uuid.NewString(),
		Engine:   e,
		Resolver: resolver.New(opts.BoardSize),
		Created:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return nil, ErrTooManySessions
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns the session with the given ID.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete drops a session and cancels its replay, if one is running.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	if sess.Engine.CancelReplay() {
		log.Printf("Session %s deleted during replay", id)
	}
	return true
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
