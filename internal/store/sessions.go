package store

import (
	"errors"
	"sync"

	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/models"
)

// ErrNoSession reports an unknown game id.
var ErrNoSession = errors.New("store: no such game")

// SessionStore holds one GameSession per engine-confirmed game, including
// each game's last-known canonical state. Sessions are created when the
// engine confirms game creation and live for the process lifetime.
type SessionStore struct {
	sessions map[string]*models.GameSession
	mu       sync.RWMutex
}

// NewSessionStore creates a new session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.GameSession),
	}
}

// Get retrieves a session by game id.
func (s *SessionStore) Get(gameID string) (*models.GameSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, exists := s.sessions[gameID]
	return sess, exists
}

// Set stores a session.
func (s *SessionStore) Set(gameID string, sess *models.GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[gameID] = sess
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// State returns a game's canonical state.
func (s *SessionStore) State(gameID string) (engine.GameState, error) {
	sess, ok := s.Get(gameID)
	if !ok {
		return engine.GameState{}, ErrNoSession
	}
	state, ok := sess.State()
	if !ok {
		return engine.GameState{}, ErrNoSession
	}
	return state, nil
}

// ReplaceState swaps a game's canonical state wholesale. State only ever
// arrives from engine responses.
func (s *SessionStore) ReplaceState(gameID string, state engine.GameState) error {
	sess, ok := s.Get(gameID)
	if !ok {
		return ErrNoSession
	}
	sess.ReplaceState(state)
	return nil
}
