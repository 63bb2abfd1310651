package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/models"
)

func TestGenerateCodeFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := generateCode()
		if len(code) != LobbyCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), LobbyCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(LobbyCodeChars, c) {
				t.Fatalf("code %q contains %q, outside the allowed alphabet", code, c)
			}
		}
	}
}

func TestNewCodeAvoidsLiveLobbies(t *testing.T) {
	s := NewLobbyStore()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code := s.NewCode()
		if seen[code] {
			t.Fatalf("NewCode reissued live code %q", code)
		}
		seen[code] = true
		s.Set(code, &models.Lobby{Code: code})
	}
}

func TestLobbyStoreCRUD(t *testing.T) {
	s := NewLobbyStore()
	lobby := &models.Lobby{Code: "ABCDEF", Name: "Alice's Game"}

	if _, exists := s.Get("ABCDEF"); exists {
		t.Fatal("empty store reported a lobby")
	}
	s.Set("ABCDEF", lobby)
	got, exists := s.Get("ABCDEF")
	if !exists || got != lobby {
		t.Fatal("stored lobby not returned")
	}
	if !s.Exists("ABCDEF") || s.Len() != 1 {
		t.Fatalf("Exists/Len inconsistent: %v %d", s.Exists("ABCDEF"), s.Len())
	}

	// Deleting releases the code for reuse.
	s.Delete("ABCDEF")
	if s.Exists("ABCDEF") || s.Len() != 0 {
		t.Fatal("lobby survived delete")
	}
	s.Set("ABCDEF", &models.Lobby{Code: "ABCDEF", Name: "Fresh Game"})
	if got, _ := s.Get("ABCDEF"); got.Name != "Fresh Game" {
		t.Fatal("code not reusable after delete")
	}
}

func TestSessionStoreState(t *testing.T) {
	s := NewSessionStore()

	if _, err := s.State("g1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("unknown game: got %v, want ErrNoSession", err)
	}
	if err := s.ReplaceState("g1", engine.GameState{}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("replace unknown game: got %v, want ErrNoSession", err)
	}

	sess := models.NewGameSession("g1", "ABCDEF", []models.Seat{{Username: "alice"}, {Username: "bob"}})
	s.Set("g1", sess)

	// A session exists before the first deal; it has no state yet.
	if _, err := s.State("g1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("stateless game: got %v, want ErrNoSession", err)
	}

	if err := s.ReplaceState("g1", engine.GameState{GameID: "g1", Pot: 15}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	state, err := s.State("g1")
	if err != nil || state.Pot != 15 {
		t.Fatalf("State = %+v, %v", state, err)
	}

	// Replacement is wholesale, not a merge.
	if err := s.ReplaceState("g1", engine.GameState{GameID: "g1", Phase: "Flop"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	state, _ = s.State("g1")
	if state.Pot != 0 || state.Phase != "Flop" {
		t.Fatalf("stale fields survived replacement: %+v", state)
	}

	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}
