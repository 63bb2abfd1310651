package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/cardwire/tableserver/internal/broadcast"
	"github.com/cardwire/tableserver/internal/filter"
	"github.com/cardwire/tableserver/internal/models"
	"github.com/cardwire/tableserver/internal/seats"
	"github.com/cardwire/tableserver/internal/token"
	"github.com/cardwire/tableserver/internal/ws"
)

type joinGamePayload struct {
	GameID      string `json:"gameId"`
	PlayerToken string `json:"playerToken"`
}

type gameIDPayload struct {
	GameID string `json:"gameId"`
}

type roomJoinedPayload struct {
	GameID        string `json:"gameId"`
	PlayersJoined int    `json:"playersJoined"`
	TotalPlayers  int    `json:"totalPlayers"`
	Message       string `json:"message"`
}

type waitingPayload struct {
	PlayersJoined int    `json:"playersJoined"`
	TotalPlayers  int    `json:"totalPlayers"`
	Message       string `json:"message"`
}

// handleJoinGame is the secure handshake: the capability token, not any
// client-declared identity, decides which seat the connection gets.
func (ctx *Context) handleJoinGame(c ws.Sender, data json.RawMessage) {
	p, ok := decode[joinGamePayload](c, data, ws.EventGameError)
	if !ok {
		return
	}
	if p.GameID == "" || p.PlayerToken == "" {
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Invalid authentication token"})
		return
	}

	claim, err := ctx.Tokens.Redeem(p.PlayerToken, p.GameID)
	if err != nil {
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: redemptionError(err)})
		return
	}

	sess, exists := ctx.Sessions.Get(p.GameID)
	if !exists {
		// Token was bound to a game the store has no session for; fail
		// closed rather than inventing one.
		log.Printf("game: token %s bound to unknown game %s", claim.TokenID, p.GameID)
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Game not found"})
		return
	}
	if claim.SeatIndex < 0 || claim.SeatIndex >= len(sess.Seats) {
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Invalid player index"})
		return
	}

	evicted := ctx.Directory.Bind(seats.Binding{
		ConnID:   c.ID(),
		GameID:   p.GameID,
		Seat:     claim.SeatIndex,
		Username: claim.Username,
		TokenID:  claim.TokenID,
	})
	if evicted != "" {
		// Reconnect superseded a stale connection; stop routing game
		// traffic to it.
		sess.DropJoined(evicted)
	}
	sess.Join(c)

	joined := sess.JoinedCount()
	total := len(sess.Seats)
	log.Printf("game: %s joined %s as seat %d (%d/%d)", claim.Username, p.GameID, claim.SeatIndex, joined, total)

	c.Send(ws.EventGameRoomJoined, roomJoinedPayload{
		GameID:        p.GameID,
		PlayersJoined: joined,
		TotalPlayers:  total,
		Message:       "Joined game room",
	})

	if joined == total {
		ctx.startGame(sess)
		return
	}
	ctx.Router.Announce(sess, ws.EventWaitingForPlayers, waitingPayload{
		PlayersJoined: joined,
		TotalPlayers:  total,
		Message:       fmt.Sprintf("Waiting for players... (%d/%d)", joined, total),
	})
}

// startGame asks the engine to deal the first hand once every seat has
// joined, then sends each seat its redacted view. A reconnect that refills
// the table must not re-deal, so a session with state is only refreshed.
func (ctx *Context) startGame(sess *models.GameSession) {
	sess.LockTurn()
	defer sess.UnlockTurn()

	if _, started := sess.State(); started {
		ctx.Router.BroadcastState(sess, ws.EventGameStateUpdate, "Player reconnected")
		return
	}

	state, err := ctx.Engine.StartGame(sess.GameID)
	if err != nil {
		log.Printf("game: start failed for %s: %v", sess.GameID, err)
		ctx.Router.Announce(sess, ws.EventGameError, ws.ErrorPayload{Error: "Failed to start game"})
		return
	}
	sess.ReplaceState(*state)
	log.Printf("game: %s started with %d seats", sess.GameID, len(sess.Seats))
	ctx.Router.BroadcastState(sess, ws.EventGameStarted, "All players joined! Game started!")
}

func (ctx *Context) handleGetGameState(c ws.Sender, data json.RawMessage) {
	p, ok := decode[gameIDPayload](c, data, ws.EventGameError)
	if !ok {
		return
	}
	sess, exists := ctx.Sessions.Get(p.GameID)
	if !exists {
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Game not found"})
		return
	}
	seat, err := ctx.Directory.SeatOf(p.GameID, c.ID())
	if err != nil {
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Player not found in game"})
		return
	}
	state, hasState := sess.State()
	if !hasState {
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Game not started"})
		return
	}
	c.Send(ws.EventGameStateUpdate, broadcast.StatePayload{
		GameID:    p.GameID,
		GameState: filter.Redact(state, seat),
	})
}

func redemptionError(err error) string {
	switch {
	case errors.Is(err, token.ErrAlreadyUsed):
		return "Authentication token already used"
	case errors.Is(err, token.ErrGameMismatch):
		return "Token not valid for this game"
	default:
		return "Invalid authentication token"
	}
}
