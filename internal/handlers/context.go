package handlers

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/cardwire/tableserver/internal/ability"
	"github.com/cardwire/tableserver/internal/broadcast"
	"github.com/cardwire/tableserver/internal/config"
	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/seats"
	"github.com/cardwire/tableserver/internal/store"
	"github.com/cardwire/tableserver/internal/token"
	"github.com/cardwire/tableserver/internal/ws"
)

var debug = os.Getenv("DEBUG") != ""

// EngineCaller is the rules-engine surface the handlers use. The concrete
// engine.Client satisfies it; tests substitute a scripted fake.
type EngineCaller interface {
	CreateGame(req engine.CreateGameRequest) (*engine.CreateGameResponse, error)
	StartGame(gameID string) (*engine.GameState, error)
	UseAbility(gameID string, call engine.AbilityCall) (*engine.AbilityResponse, error)
}

// Context holds shared application dependencies.
type Context struct {
	Config     config.Config
	Conns      *ConnTable
	Lobbies    *store.LobbyStore
	Sessions   *store.SessionStore
	Tokens     *token.Registry
	Directory  *seats.Directory
	Engine     EngineCaller
	Router     *broadcast.Router
	Negotiator *ability.Negotiator
}

// ConnInfo is the per-connection session: what the connection has told us
// about itself so far.
type ConnInfo struct {
	Sender    ws.Sender
	Username  string
	LobbyCode string
}

// ConnTable tracks every live connection.
type ConnTable struct {
	mu    sync.RWMutex
	conns map[string]*ConnInfo
}

// NewConnTable creates an empty connection table.
func NewConnTable() *ConnTable {
	return &ConnTable{conns: make(map[string]*ConnInfo)}
}

// Add registers a new connection.
func (t *ConnTable) Add(s ws.Sender) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[s.ID()] = &ConnInfo{Sender: s}
}

// Remove drops a connection.
func (t *ConnTable) Remove(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, connID)
}

// Get returns a copy of a connection's info.
func (t *ConnTable) Get(connID string) (ConnInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.conns[connID]
	if !ok {
		return ConnInfo{}, false
	}
	return *info, true
}

// Sender returns the outbound half of a connection.
func (t *ConnTable) Sender(connID string) (ws.Sender, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.conns[connID]
	if !ok {
		return nil, false
	}
	return info.Sender, true
}

// SetUsername records the connection's chosen username.
func (t *ConnTable) SetUsername(connID, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if info, ok := t.conns[connID]; ok {
		info.Username = username
	}
}

// SetLobby records which lobby the connection is a member of; empty clears.
func (t *ConnTable) SetLobby(connID, code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if info, ok := t.conns[connID]; ok {
		info.LobbyCode = code
	}
}

// decode unmarshals an event payload, reporting a validation error on the
// given event when the payload is malformed.
func decode[T any](c ws.Sender, data json.RawMessage, errEvent string) (T, bool) {
	var v T
	if len(data) == 0 {
		return v, true
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.Send(errEvent, ws.ErrorPayload{Error: "Malformed payload"})
		return v, false
	}
	return v, true
}
