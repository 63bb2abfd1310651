package store

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"sync"

	"github.com/cardwire/tableserver/internal/models"
)

const (
	// LobbyCodeLength is the length of generated lobby codes.
	LobbyCodeLength = 6

	// LobbyCodeChars are the characters used for lobby codes (no I or O).
	LobbyCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// LobbyStore manages lobby storage. Codes of deleted lobbies return to the
// pool and may be reissued.
type LobbyStore struct {
	lobbies map[string]*models.Lobby
	mu      sync.RWMutex
}

// NewLobbyStore creates a new lobby store.
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[string]*models.Lobby),
	}
}

// Get retrieves a lobby by code.
func (s *LobbyStore) Get(code string) (*models.Lobby, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, exists := s.lobbies[code]
	return lobby, exists
}

// Set stores a lobby.
func (s *LobbyStore) Set(code string, lobby *models.Lobby) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[code] = lobby
}

// Delete removes a lobby, freeing its code for reuse.
func (s *LobbyStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, code)
}

// Exists checks if a lobby code is live.
func (s *LobbyStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.lobbies[code]
	return exists
}

// Len returns the number of live lobbies.
func (s *LobbyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lobbies)
}

// NewCode generates a lobby code unique among live lobbies.
func (s *LobbyStore) NewCode() string {
	for {
		code := generateCode()
		if !s.Exists(code) {
			return code
		}
	}
}

func generateCode() string {
	code := make([]byte, LobbyCodeLength)
	for i := 0; i < LobbyCodeLength; i++ {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(LobbyCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = LobbyCodeChars[rand.Intn(len(LobbyCodeChars))]
			continue
		}
		code[i] = LobbyCodeChars[n.Int64()]
	}
	return string(code)
}
