// Package seats maintains the per-game bidirectional map between live
// connections and seats.
package seats

import (
	"errors"
	"sync"
)

// ErrNotFound reports a missing binding. Callers treat it as a validation
// error and fail closed rather than guessing a seat.
var ErrNotFound = errors.New("seats: binding not found")

// Binding ties a live connection to a seat in a game.
type Binding struct {
	ConnID   string
	GameID   string
	Seat     int // zero-based
	Username string
	TokenID  string
}

// Directory is the seat/connection map. At most one live connection is
// bound per seat; a second bind to an occupied seat supersedes the previous
// connection (reconnect semantics).
type Directory struct {
	mu     sync.RWMutex
	byConn map[string]Binding
	bySeat map[string]map[int]string // game id -> seat -> connection id
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		byConn: make(map[string]Binding),
		bySeat: make(map[string]map[int]string),
	}
}

// Bind records a binding. If the seat was already bound the stale
// connection's id is returned so the caller can drop it from the game's
// joined set; no eviction notice is sent to it.
func (d *Directory) Bind(b Binding) (evicted string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	seatsForGame, ok := d.bySeat[b.GameID]
	if !ok {
		seatsForGame = make(map[int]string)
		d.bySeat[b.GameID] = seatsForGame
	}
	if prev, occupied := seatsForGame[b.Seat]; occupied && prev != b.ConnID {
		delete(d.byConn, prev)
		evicted = prev
	}
	seatsForGame[b.Seat] = b.ConnID
	d.byConn[b.ConnID] = b
	return evicted
}

// SeatOf resolves a connection to its seat within a game.
func (d *Directory) SeatOf(gameID, connID string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.byConn[connID]
	if !ok || b.GameID != gameID {
		return 0, ErrNotFound
	}
	return b.Seat, nil
}

// ConnectionOf resolves a seat to the connection currently occupying it.
func (d *Directory) ConnectionOf(gameID string, seat int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	connID, ok := d.bySeat[gameID][seat]
	if !ok {
		return "", ErrNotFound
	}
	return connID, nil
}

// BindingOf returns the full binding for a connection.
func (d *Directory) BindingOf(connID string) (Binding, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.byConn[connID]
	return b, ok
}

// Unbind removes a connection's binding on disconnect. The seat itself
// stays valid and can be reclaimed by a reconnect.
func (d *Directory) Unbind(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.byConn[connID]
	if !ok {
		return
	}
	delete(d.byConn, connID)
	if seatsForGame, ok := d.bySeat[b.GameID]; ok {
		if seatsForGame[b.Seat] == connID {
			delete(seatsForGame, b.Seat)
		}
		if len(seatsForGame) == 0 {
			delete(d.bySeat, b.GameID)
		}
	}
}
