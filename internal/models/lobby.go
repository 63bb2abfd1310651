package models

import "sync"

// Lobby statuses.
const (
	LobbyWaiting       = "waiting"
	LobbyTransitioning = "transitioning"
)

// LobbyConfig is the host-editable game configuration.
type LobbyConfig struct {
	SmallBlind    int `json:"smallBlind"`
	BigBlind      int `json:"bigBlind"`
	StartingFunds int `json:"startingFunds"`
	MaxPlayers    int `json:"maxPlayers"`
}

// DefaultLobbyConfig returns the configuration applied when the creator
// omits a value.
func DefaultLobbyConfig() LobbyConfig {
	return LobbyConfig{SmallBlind: 5, BigBlind: 10, StartingFunds: 1000, MaxPlayers: 8}
}

// LobbyPlayer is one roster entry. Roster order at start time determines
// seat order for the whole game. The token id stays server-side; tokens are
// delivered privately in the transition event, never in lobby broadcasts.
type LobbyPlayer struct {
	ConnID   string `json:"-"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
	IsReady  bool   `json:"isReady"`
	TokenID  string `json:"-"`
}

// Lobby is a pre-game room. Guard all field access with the embedded lock.
type Lobby struct {
	Code     string
	Name     string
	HostConn string
	Players  []*LobbyPlayer
	Config   LobbyConfig
	Status   string
	GameID   string

	mu sync.RWMutex
}

// Lock acquires the lobby's write lock.
func (l *Lobby) Lock() { l.mu.Lock() }

// Unlock releases the lobby's write lock.
func (l *Lobby) Unlock() { l.mu.Unlock() }

// RLock acquires the lobby's read lock.
func (l *Lobby) RLock() { l.mu.RLock() }

// RUnlock releases the lobby's read lock.
func (l *Lobby) RUnlock() { l.mu.RUnlock() }

// PlayerByConn returns the roster entry for a connection. Caller must hold
// the lock.
func (l *Lobby) PlayerByConn(connID string) *LobbyPlayer {
	for _, p := range l.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// RemovePlayer drops a connection from the roster, promoting the next
// member to host if the host left. Caller must hold the write lock.
// Reports whether the roster changed.
func (l *Lobby) RemovePlayer(connID string) bool {
	for i, p := range l.Players {
		if p.ConnID != connID {
			continue
		}
		l.Players = append(l.Players[:i], l.Players[i+1:]...)
		if l.HostConn == connID && len(l.Players) > 0 {
			l.HostConn = l.Players[0].ConnID
			l.Players[0].IsHost = true
		}
		return true
	}
	return false
}

// LobbySnapshot is the client-visible view of a lobby.
type LobbySnapshot struct {
	Code    string         `json:"code"`
	Name    string         `json:"name"`
	Players []*LobbyPlayer `json:"players"`
	Config  LobbyConfig    `json:"config"`
	Status  string         `json:"status"`
}

// Snapshot copies the lobby into its client-visible view. Caller must hold
// at least the read lock.
func (l *Lobby) Snapshot() LobbySnapshot {
	players := make([]*LobbyPlayer, len(l.Players))
	for i, p := range l.Players {
		cp := *p
		players[i] = &cp
	}
	return LobbySnapshot{
		Code:    l.Code,
		Name:    l.Name,
		Players: players,
		Config:  l.Config,
		Status:  l.Status,
	}
}
