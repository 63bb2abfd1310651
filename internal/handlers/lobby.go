package handlers

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/models"
	"github.com/cardwire/tableserver/internal/ws"
)

const minUsernameLen = 2

type setUsernamePayload struct {
	Username string `json:"username"`
}

type createLobbyPayload struct {
	Name          string `json:"name"`
	SmallBlind    *int   `json:"smallBlind"`
	BigBlind      *int   `json:"bigBlind"`
	StartingFunds *int   `json:"startingFunds"`
	MaxPlayers    *int   `json:"maxPlayers"`
}

type joinLobbyPayload struct {
	Code string `json:"code"`
}

type updateConfigPayload struct {
	SmallBlind    *int `json:"smallBlind"`
	BigBlind      *int `json:"bigBlind"`
	StartingFunds *int `json:"startingFunds"`
}

type lobbyCreatedPayload struct {
	LobbyCode string               `json:"lobbyCode"`
	Lobby     models.LobbySnapshot `json:"lobby"`
}

type playerJoinedPayload struct {
	Player models.LobbyPlayer   `json:"player"`
	Lobby  models.LobbySnapshot `json:"lobby"`
}

type lobbyUpdatePayload struct {
	Lobby models.LobbySnapshot `json:"lobby"`
}

type transitionPayload struct {
	GameID      string `json:"gameId"`
	PlayerToken string `json:"playerToken"`
	Message     string `json:"message"`
}

func (ctx *Context) handleSetUsername(c ws.Sender, data json.RawMessage) {
	p, ok := decode[setUsernamePayload](c, data, ws.EventUsernameError)
	if !ok {
		return
	}
	username := strings.TrimSpace(p.Username)
	if len(username) < minUsernameLen {
		c.Send(ws.EventUsernameError, ws.ErrorPayload{Error: "Invalid username"})
		return
	}
	ctx.Conns.SetUsername(c.ID(), username)
	c.Send(ws.EventUsernameSet, struct {
		Username string `json:"username"`
		Message  string `json:"message"`
	}{username, "Username set"})
}

func (ctx *Context) handleCreateLobby(c ws.Sender, data json.RawMessage) {
	p, ok := decode[createLobbyPayload](c, data, ws.EventLobbyError)
	if !ok {
		return
	}
	info, ok := ctx.Conns.Get(c.ID())
	if !ok || info.Username == "" {
		c.Send(ws.EventLobbyError, ws.ErrorPayload{Error: "Username required"})
		return
	}

	cfg := models.DefaultLobbyConfig()
	if p.SmallBlind != nil {
		cfg.SmallBlind = *p.SmallBlind
	}
	if p.BigBlind != nil {
		cfg.BigBlind = *p.BigBlind
	}
	if p.StartingFunds != nil {
		cfg.StartingFunds = *p.StartingFunds
	}
	if p.MaxPlayers != nil {
		cfg.MaxPlayers = *p.MaxPlayers
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "New Lobby"
	}

	// Capability token issued up front, bound to a game only when the
	// lobby transitions.
	tokenID := ctx.Tokens.Issue(info.Username)
	code := ctx.Lobbies.NewCode()

	lobby := &models.Lobby{
		Code:     code,
		Name:     name,
		HostConn: c.ID(),
		Config:   cfg,
		Status:   models.LobbyWaiting,
		Players: []*models.LobbyPlayer{{
			ConnID:   c.ID(),
			Username: info.Username,
			IsHost:   true,
			TokenID:  tokenID,
		}},
	}
	ctx.Lobbies.Set(code, lobby)
	ctx.Conns.SetLobby(c.ID(), code)

	log.Printf("lobby: created %s host=%s", code, info.Username)

	lobby.RLock()
	snapshot := lobby.Snapshot()
	lobby.RUnlock()
	c.Send(ws.EventLobbyCreated, lobbyCreatedPayload{LobbyCode: code, Lobby: snapshot})
}

func (ctx *Context) handleJoinLobby(c ws.Sender, data json.RawMessage) {
	p, ok := decode[joinLobbyPayload](c, data, ws.EventLobbyError)
	if !ok {
		return
	}
	info, ok := ctx.Conns.Get(c.ID())
	if !ok || info.Username == "" {
		c.Send(ws.EventLobbyError, ws.ErrorPayload{Error: "Username required"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(p.Code))
	lobby, exists := ctx.Lobbies.Get(code)
	if !exists {
		c.Send(ws.EventLobbyError, ws.ErrorPayload{Error: "Lobby not found"})
		return
	}

	tokenID := ctx.Tokens.Issue(info.Username)

	lobby.Lock()
	if len(lobby.Players) >= lobby.Config.MaxPlayers {
		lobby.Unlock()
		c.Send(ws.EventLobbyError, ws.ErrorPayload{Error: "Lobby full"})
		return
	}
	player := &models.LobbyPlayer{
		ConnID:   c.ID(),
		Username: info.Username,
		TokenID:  tokenID,
	}
	lobby.Players = append(lobby.Players, player)
	snapshot := lobby.Snapshot()
	lobby.Unlock()

	ctx.Conns.SetLobby(c.ID(), code)
	log.Printf("lobby: %s joined %s", info.Username, code)

	c.Send(ws.EventLobbyJoined, lobbyCreatedPayload{LobbyCode: code, Lobby: snapshot})
	ctx.broadcastLobby(lobby, ws.EventPlayerJoined, playerJoinedPayload{Player: *player, Lobby: snapshot})
}

func (ctx *Context) handleLeaveLobby(c ws.Sender) {
	lobby, ok := ctx.lobbyOf(c)
	if !ok {
		c.Send(ws.EventLobbyError, ws.ErrorPayload{Error: "Not in lobby"})
		return
	}
	ctx.Conns.SetLobby(c.ID(), "")
	c.Send(ws.EventLobbyLeft, ws.MessagePayload{Message: "Left lobby"})
	ctx.removeFromLobby(c.ID(), lobby.Code)
}

func (ctx *Context) handleToggleReady(c ws.Sender) {
	lobby, ok := ctx.lobbyOf(c)
	if !ok {
		return
	}
	lobby.Lock()
	player := lobby.PlayerByConn(c.ID())
	if player == nil {
		lobby.Unlock()
		return
	}
	player.IsReady = !player.IsReady
	snapshot := lobby.Snapshot()
	lobby.Unlock()

	ctx.broadcastLobby(lobby, ws.EventPlayerReadyChanged, lobbyUpdatePayload{Lobby: snapshot})
}

func (ctx *Context) handleUpdateLobbyConfig(c ws.Sender, data json.RawMessage) {
	p, ok := decode[updateConfigPayload](c, data, ws.EventLobbyError)
	if !ok {
		return
	}
	lobby, found := ctx.lobbyOf(c)
	if !found {
		return
	}

	lobby.Lock()
	if lobby.HostConn != c.ID() {
		lobby.Unlock()
		c.Send(ws.EventLobbyError, ws.ErrorPayload{Error: "Only host can update settings"})
		return
	}
	if p.SmallBlind != nil {
		lobby.Config.SmallBlind = *p.SmallBlind
	}
	if p.BigBlind != nil {
		lobby.Config.BigBlind = *p.BigBlind
	}
	if p.StartingFunds != nil {
		lobby.Config.StartingFunds = *p.StartingFunds
	}
	snapshot := lobby.Snapshot()
	lobby.Unlock()

	ctx.broadcastLobby(lobby, ws.EventLobbyConfigUpdated, lobbyUpdatePayload{Lobby: snapshot})
}

func (ctx *Context) handleStartGame(c ws.Sender) {
	lobby, ok := ctx.lobbyOf(c)
	if !ok {
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Not in a valid lobby"})
		return
	}

	lobby.Lock()
	if lobby.HostConn != c.ID() {
		lobby.Unlock()
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Only host can start game"})
		return
	}
	for _, p := range lobby.Players {
		if !p.IsReady {
			lobby.Unlock()
			c.Send(ws.EventGameError, ws.ErrorPayload{Error: "All players must be ready"})
			return
		}
	}
	if len(lobby.Players) < 2 {
		lobby.Unlock()
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Need at least 2 players"})
		return
	}

	// Roster order becomes seat order; one-based ids at the engine
	// boundary.
	req := engine.CreateGameRequest{
		SmallBlind: lobby.Config.SmallBlind,
		BigBlind:   lobby.Config.BigBlind,
	}
	for i, p := range lobby.Players {
		req.Players = append(req.Players, engine.SeatedPlayer{
			ID:            i + 1,
			Name:          p.Username,
			StartingFunds: lobby.Config.StartingFunds,
		})
	}
	roster := make([]*models.LobbyPlayer, len(lobby.Players))
	copy(roster, lobby.Players)
	code := lobby.Code
	lobby.Unlock()

	resp, err := ctx.Engine.CreateGame(req)
	if err != nil {
		log.Printf("lobby: create game failed for %s: %v", code, err)
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Failed to create game"})
		return
	}
	gameID := resp.GameID

	seats := make([]models.Seat, len(roster))
	for i, p := range roster {
		if err := ctx.Tokens.BindToGame(p.TokenID, gameID, i); err != nil {
			log.Printf("lobby: bind token for %s failed: %v", p.Username, err)
		}
		seats[i] = models.Seat{Username: p.Username, TokenID: p.TokenID}
	}

	sess := models.NewGameSession(gameID, code, seats)
	if resp.GameState != nil {
		sess.ReplaceState(*resp.GameState)
	}
	ctx.Sessions.Set(gameID, sess)

	lobby.Lock()
	lobby.Status = models.LobbyTransitioning
	lobby.GameID = gameID
	lobby.Unlock()

	log.Printf("lobby: %s transitioning to game %s", code, gameID)

	// Each member receives its own capability token, never anyone else's.
	for _, p := range roster {
		if sender, ok := ctx.Conns.Sender(p.ConnID); ok {
			sender.Send(ws.EventTransitionToGame, transitionPayload{
				GameID:      gameID,
				PlayerToken: p.TokenID,
				Message:     "Game created! Joining game room...",
			})
		}
	}
}

// lobbyOf resolves the lobby the connection is a member of.
func (ctx *Context) lobbyOf(c ws.Sender) (*models.Lobby, bool) {
	info, ok := ctx.Conns.Get(c.ID())
	if !ok || info.LobbyCode == "" {
		return nil, false
	}
	return ctx.Lobbies.Get(info.LobbyCode)
}

// removeFromLobby drops a connection from a lobby roster, announces the
// departure, and deletes the lobby (freeing its code) when it empties.
func (ctx *Context) removeFromLobby(connID, code string) {
	lobby, exists := ctx.Lobbies.Get(code)
	if !exists {
		return
	}
	lobby.Lock()
	removed := lobby.RemovePlayer(connID)
	empty := len(lobby.Players) == 0
	snapshot := lobby.Snapshot()
	lobby.Unlock()

	if !removed {
		return
	}
	if empty {
		ctx.Lobbies.Delete(code)
		log.Printf("lobby: %s empty, code released", code)
		return
	}
	ctx.broadcastLobby(lobby, ws.EventPlayerLeft, lobbyUpdatePayload{Lobby: snapshot})
}

// broadcastLobby sends an event to every lobby member with a live
// connection.
func (ctx *Context) broadcastLobby(lobby *models.Lobby, event string, payload any) {
	lobby.RLock()
	connIDs := make([]string, 0, len(lobby.Players))
	for _, p := range lobby.Players {
		connIDs = append(connIDs, p.ConnID)
	}
	lobby.RUnlock()

	for _, connID := range connIDs {
		if sender, ok := ctx.Conns.Sender(connID); ok {
			sender.Send(event, payload)
		}
	}
}
