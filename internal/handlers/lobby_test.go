package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cardwire/tableserver/internal/models"
	"github.com/cardwire/tableserver/internal/ws"
)

func intp(v int) *int { return &v }

func TestSetUsernameValidation(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	c := connect(t, ctx, "c1", "")

	cases := []struct {
		in string
		ok bool
	}{
		{"alice", true},
		{"  bo  ", true}, // trimmed to "bo", still long enough
		{"a", false},
		{"  ", false},
		{"", false},
	}
	for _, tc := range cases {
		c.events = nil
		dispatch(t, ctx, c, ws.EventSetUsername, setUsernamePayload{Username: tc.in})
		if got := c.received(ws.EventUsernameSet); got != tc.ok {
			t.Errorf("set_username(%q): accepted=%v, want %v", tc.in, got, tc.ok)
		}
		if !tc.ok && errorOf(t, c.lastNamed(t, ws.EventUsernameError)) != "Invalid username" {
			t.Errorf("set_username(%q): wrong error", tc.in)
		}
	}
}

func TestCreateLobbyRequiresUsername(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	c := connect(t, ctx, "c1", "")

	dispatch(t, ctx, c, ws.EventCreateLobby, createLobbyPayload{Name: "Game"})
	if errorOf(t, c.lastNamed(t, ws.EventLobbyError)) != "Username required" {
		t.Fatalf("got %v", c.last(t))
	}
	if ctx.Lobbies.Len() != 0 {
		t.Fatal("lobby created without a username")
	}
}

func TestCreateLobbyDefaultsAndOverrides(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	c := connect(t, ctx, "c1", "alice")

	dispatch(t, ctx, c, ws.EventCreateLobby, createLobbyPayload{SmallBlind: intp(25), BigBlind: intp(50)})

	created := c.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload)
	if len(created.LobbyCode) != 6 {
		t.Errorf("lobby code = %q", created.LobbyCode)
	}
	cfg := created.Lobby.Config
	if cfg.SmallBlind != 25 || cfg.BigBlind != 50 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.StartingFunds != 1000 || cfg.MaxPlayers != 8 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if created.Lobby.Name != "New Lobby" {
		t.Errorf("name = %q, want default", created.Lobby.Name)
	}
	if len(created.Lobby.Players) != 1 || !created.Lobby.Players[0].IsHost {
		t.Errorf("roster = %+v", created.Lobby.Players)
	}
}

func TestJoinLobby(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, nil)
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode

	bob := connect(t, ctx, "c2", "bob")
	// Codes are case-insensitive on the way in.
	dispatch(t, ctx, bob, ws.EventJoinLobby, joinLobbyPayload{Code: strings.ToLower(code)})

	joined := bob.lastNamed(t, ws.EventLobbyJoined).data.(lobbyCreatedPayload)
	if joined.LobbyCode != code || len(joined.Lobby.Players) != 2 {
		t.Fatalf("join payload: %+v", joined)
	}
	announced := alice.lastNamed(t, ws.EventPlayerJoined).data.(playerJoinedPayload)
	if announced.Player.Username != "bob" || announced.Player.IsHost {
		t.Fatalf("announcement: %+v", announced)
	}
}

func TestJoinLobbyUnknownCode(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	c := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, c, ws.EventJoinLobby, joinLobbyPayload{Code: "ZZZZZZ"})
	if errorOf(t, c.lastNamed(t, ws.EventLobbyError)) != "Lobby not found" {
		t.Fatalf("got %v", c.last(t))
	}
}

func TestJoinLobbyFull(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, createLobbyPayload{MaxPlayers: intp(2)})
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode

	bob := connect(t, ctx, "c2", "bob")
	dispatch(t, ctx, bob, ws.EventJoinLobby, joinLobbyPayload{Code: code})
	if !bob.received(ws.EventLobbyJoined) {
		t.Fatal("second player rejected below capacity")
	}

	carol := connect(t, ctx, "c3", "carol")
	dispatch(t, ctx, carol, ws.EventJoinLobby, joinLobbyPayload{Code: code})
	if errorOf(t, carol.lastNamed(t, ws.EventLobbyError)) != "Lobby full" {
		t.Fatalf("got %v", carol.last(t))
	}
}

func TestUpdateLobbyConfigHostOnly(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, nil)
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode
	bob := connect(t, ctx, "c2", "bob")
	dispatch(t, ctx, bob, ws.EventJoinLobby, joinLobbyPayload{Code: code})

	dispatch(t, ctx, bob, ws.EventUpdateLobbyConfig, updateConfigPayload{SmallBlind: intp(50)})
	if errorOf(t, bob.lastNamed(t, ws.EventLobbyError)) != "Only host can update settings" {
		t.Fatalf("got %v", bob.last(t))
	}

	dispatch(t, ctx, alice, ws.EventUpdateLobbyConfig, updateConfigPayload{SmallBlind: intp(50), BigBlind: intp(100)})
	update := bob.lastNamed(t, ws.EventLobbyConfigUpdated).data.(lobbyUpdatePayload)
	if update.Lobby.Config.SmallBlind != 50 || update.Lobby.Config.BigBlind != 100 {
		t.Fatalf("config not broadcast: %+v", update.Lobby.Config)
	}
}

func TestStartGameValidation(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, nil)
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode
	bob := connect(t, ctx, "c2", "bob")
	dispatch(t, ctx, bob, ws.EventJoinLobby, joinLobbyPayload{Code: code})

	dispatch(t, ctx, bob, ws.EventStartGame, nil)
	if errorOf(t, bob.lastNamed(t, ws.EventGameError)) != "Only host can start game" {
		t.Fatalf("got %v", bob.last(t))
	}

	dispatch(t, ctx, alice, ws.EventStartGame, nil)
	if errorOf(t, alice.lastNamed(t, ws.EventGameError)) != "All players must be ready" {
		t.Fatalf("got %v", alice.last(t))
	}

	dispatch(t, ctx, alice, ws.EventToggleReady, nil)
	dispatch(t, ctx, bob, ws.EventToggleReady, nil)
	dispatch(t, ctx, bob, ws.EventLeaveLobby, nil)
	dispatch(t, ctx, alice, ws.EventStartGame, nil)
	if errorOf(t, alice.lastNamed(t, ws.EventGameError)) != "Need at least 2 players" {
		t.Fatalf("got %v", alice.last(t))
	}
}

func TestStartGameTransitions(t *testing.T) {
	eng := &fakeEngine{}
	ctx := newTestContext(eng)
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, createLobbyPayload{SmallBlind: intp(10), BigBlind: intp(20), StartingFunds: intp(500)})
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode
	bob := connect(t, ctx, "c2", "bob")
	dispatch(t, ctx, bob, ws.EventJoinLobby, joinLobbyPayload{Code: code})
	dispatch(t, ctx, alice, ws.EventToggleReady, nil)
	dispatch(t, ctx, bob, ws.EventToggleReady, nil)

	dispatch(t, ctx, alice, ws.EventStartGame, nil)

	if len(eng.createReqs) != 1 {
		t.Fatalf("create calls = %d, want 1", len(eng.createReqs))
	}
	req := eng.createReqs[0]
	if req.SmallBlind != 10 || req.BigBlind != 20 {
		t.Errorf("blinds not forwarded: %+v", req)
	}
	if len(req.Players) != 2 || req.Players[0].ID != 1 || req.Players[1].ID != 2 ||
		req.Players[0].Name != "alice" || req.Players[0].StartingFunds != 500 {
		t.Errorf("roster not forwarded: %+v", req.Players)
	}

	aliceTransition := alice.lastNamed(t, ws.EventTransitionToGame).data.(transitionPayload)
	bobTransition := bob.lastNamed(t, ws.EventTransitionToGame).data.(transitionPayload)
	if aliceTransition.GameID != "g-1" || bobTransition.GameID != "g-1" {
		t.Errorf("game ids: %q %q", aliceTransition.GameID, bobTransition.GameID)
	}
	if aliceTransition.PlayerToken == "" || aliceTransition.PlayerToken == bobTransition.PlayerToken {
		t.Error("players did not receive distinct tokens")
	}

	sess, exists := ctx.Sessions.Get("g-1")
	if !exists || len(sess.Seats) != 2 || sess.Seats[0].Username != "alice" {
		t.Fatalf("session not created: %+v", sess)
	}
	lobby, _ := ctx.Lobbies.Get(code)
	if lobby.Status != models.LobbyTransitioning || lobby.GameID != "g-1" {
		t.Fatalf("lobby not transitioning: %+v", lobby)
	}
}

// Tokens travel only in each member's own transition event.
func TestTokensAbsentFromLobbyBroadcasts(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, nil)
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode
	bob := connect(t, ctx, "c2", "bob")
	dispatch(t, ctx, bob, ws.EventJoinLobby, joinLobbyPayload{Code: code})
	dispatch(t, ctx, alice, ws.EventToggleReady, nil)
	dispatch(t, ctx, bob, ws.EventToggleReady, nil)
	dispatch(t, ctx, alice, ws.EventStartGame, nil)

	aliceToken := alice.lastNamed(t, ws.EventTransitionToGame).data.(transitionPayload).PlayerToken
	bobToken := bob.lastNamed(t, ws.EventTransitionToGame).data.(transitionPayload).PlayerToken

	for _, conn := range []*fakeConn{alice, bob} {
		for _, ev := range conn.events {
			if ev.event == ws.EventTransitionToGame {
				continue
			}
			raw, err := json.Marshal(ev.data)
			if err != nil {
				t.Fatalf("marshal %s payload: %v", ev.event, err)
			}
			if strings.Contains(string(raw), aliceToken) || strings.Contains(string(raw), bobToken) {
				t.Errorf("token leaked in %s to %s: %s", ev.event, conn.id, raw)
			}
		}
	}
	if aliceToken == "" || bobToken == "" {
		t.Fatal("transition events missing tokens")
	}
}

// An emptied lobby releases its code for reuse.
func TestLobbyEmptiesOnDisconnect(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, nil)
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode

	ctx.Disconnect(alice)

	if ctx.Lobbies.Exists(code) {
		t.Fatal("empty lobby not deleted")
	}
	if _, ok := ctx.Conns.Get(alice.id); ok {
		t.Fatal("connection survived disconnect")
	}
}

func TestHostDisconnectPromotesNextMember(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	alice := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, alice, ws.EventCreateLobby, nil)
	code := alice.lastNamed(t, ws.EventLobbyCreated).data.(lobbyCreatedPayload).LobbyCode
	bob := connect(t, ctx, "c2", "bob")
	dispatch(t, ctx, bob, ws.EventJoinLobby, joinLobbyPayload{Code: code})

	ctx.Disconnect(alice)

	lobby, exists := ctx.Lobbies.Get(code)
	if !exists {
		t.Fatal("lobby deleted while a member remained")
	}
	lobby.RLock()
	defer lobby.RUnlock()
	if lobby.HostConn != bob.id || len(lobby.Players) != 1 || !lobby.Players[0].IsHost {
		t.Fatalf("host not promoted: %+v", lobby.Players)
	}
	update := bob.lastNamed(t, ws.EventPlayerLeft).data.(lobbyUpdatePayload)
	if len(update.Lobby.Players) != 1 || update.Lobby.Players[0].Username != "bob" {
		t.Fatalf("departure broadcast: %+v", update.Lobby.Players)
	}
}

func TestLeaveLobbyNotInLobby(t *testing.T) {
	ctx := newTestContext(&fakeEngine{})
	c := connect(t, ctx, "c1", "alice")
	dispatch(t, ctx, c, ws.EventLeaveLobby, nil)
	if errorOf(t, c.lastNamed(t, ws.EventLobbyError)) != "Not in lobby" {
		t.Fatalf("got %v", c.last(t))
	}
}
