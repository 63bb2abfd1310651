// Package token issues and redeems the single-use capability tokens that
// bind an anonymous connection to a seat. Tokens are opaque, URL-safe and
// cryptographically random; redemption is exactly-once.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/cardwire/tableserver/internal/models"
)

// tokenBytes is the entropy of a token id before encoding.
const tokenBytes = 16

// Redemption failures.
var (
	ErrUnknownToken = errors.New("token: unknown token")
	ErrAlreadyUsed  = errors.New("token: already used")
	ErrGameMismatch = errors.New("token: not valid for this game")
	ErrUnbound      = errors.New("token: not bound to a game")
)

// Registry holds issued tokens. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	tokens map[string]*models.Token
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]*models.Token)}
}

// Issue creates an unused token for a username, bound to no game yet, and
// returns its id.
func (r *Registry) Issue(username string) string {
	id := newTokenID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[id] = &models.Token{
		ID:        id,
		Username:  username,
		SeatIndex: -1,
	}
	return id
}

// BindToGame attaches a token to its game and seat. Called exactly once per
// token when the owning lobby transitions to a game.
func (r *Registry) BindToGame(id, gameID string, seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return ErrUnknownToken
	}
	t.GameID = gameID
	t.SeatIndex = seat
	return nil
}

// Redeem consumes a token. On success the used flag is set atomically with
// returning the claim, so a concurrent second attempt observes
// ErrAlreadyUsed.
func (r *Registry) Redeem(id, claimedGameID string) (models.SeatClaim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[id]
	if !ok {
		return models.SeatClaim{}, ErrUnknownToken
	}
	if t.Used {
		return models.SeatClaim{}, ErrAlreadyUsed
	}
	if t.GameID == "" {
		return models.SeatClaim{}, ErrUnbound
	}
	if t.GameID != claimedGameID {
		return models.SeatClaim{}, ErrGameMismatch
	}

	t.Used = true
	return models.SeatClaim{
		Username:  t.Username,
		GameID:    t.GameID,
		SeatIndex: t.SeatIndex,
		TokenID:   t.ID,
	}, nil
}

func newTokenID() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
