package models

import (
	"sync"

	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/ws"
)

// Seat is one stable position in a game: the username and token that
// claimed it. Seat indices are zero-based and never change for the lifetime
// of the game; the live connection occupying a seat may.
type Seat struct {
	Username string
	TokenID  string
}

// GameSession ties a confirmed engine game to its seats, its last-known
// canonical state, and the set of connections that completed the join
// handshake. Sessions live for the lifetime of the process.
type GameSession struct {
	GameID    string
	LobbyCode string
	Seats     []Seat

	mu     sync.RWMutex
	state  *engine.GameState
	joined map[string]ws.Sender // connection id -> connection

	// turnMu serializes read-state, call-engine, replace-state, broadcast
	// for this game. Without it two concurrent ability uses could
	// interleave around their engine calls and clobber each other's state
	// replacement.
	turnMu sync.Mutex
}

// NewGameSession creates a session for an engine-confirmed game.
func NewGameSession(gameID, lobbyCode string, seats []Seat) *GameSession {
	return &GameSession{
		GameID:    gameID,
		LobbyCode: lobbyCode,
		Seats:     seats,
		joined:    make(map[string]ws.Sender),
	}
}

// LockTurn serializes engine exchanges for this game.
func (s *GameSession) LockTurn() { s.turnMu.Lock() }

// UnlockTurn releases the exchange serialization.
func (s *GameSession) UnlockTurn() { s.turnMu.Unlock() }

// Join records a connection as having completed the handshake.
func (s *GameSession) Join(conn ws.Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined[conn.ID()] = conn
}

// DropJoined removes a connection from the joined set, either on disconnect
// or when a reconnect supersedes it.
func (s *GameSession) DropJoined(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.joined, connID)
}

// JoinedCount returns how many connections completed the handshake.
func (s *GameSession) JoinedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.joined)
}

// Joined returns a copy of the joined connection set.
func (s *GameSession) Joined() map[string]ws.Sender {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ws.Sender, len(s.joined))
	for id, c := range s.joined {
		out[id] = c
	}
	return out
}

// Conn returns the joined connection with the given id.
func (s *GameSession) Conn(connID string) (ws.Sender, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.joined[connID]
	return c, ok
}

// State returns the last-known canonical state.
func (s *GameSession) State() (engine.GameState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return engine.GameState{}, false
	}
	return *s.state, true
}

// ReplaceState swaps in a new canonical state from an engine response.
// There are no partial updates; the store never diverges from the engine's
// view.
func (s *GameSession) ReplaceState(state engine.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
}
