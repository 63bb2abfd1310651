package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cardwire/tableserver/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients connect from the game page's origin; the join handshake is
	// authenticated by capability token, not by origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the connection and runs its read loop. Each inbound
// event is handled to completion before the next is read; engine calls are
// the only blocking point, and those are serialized per game by the
// session's turn lock.
func (ctx *Context) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(conn)
	ctx.Conns.Add(client)
	log.Printf("ws: connected %s", client.ID())
	client.Send(ws.EventConnected, ws.MessagePayload{Message: "Connected"})

	defer func() {
		client.Close()
		ctx.Disconnect(client)
	}()

	for {
		raw, err := client.ReadRaw()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read error on %s: %v", client.ID(), err)
			}
			return
		}
		var env ws.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			client.Send(ws.EventGameError, ws.ErrorPayload{Error: "Malformed message"})
			continue
		}
		ctx.Dispatch(client, env)
	}
}

// Dispatch routes one inbound event to its handler.
func (ctx *Context) Dispatch(c ws.Sender, env ws.Envelope) {
	if debug {
		log.Printf("ws: event=%s conn=%s", env.Event, c.ID())
	}
	switch env.Event {
	case ws.EventSetUsername:
		ctx.handleSetUsername(c, env.Data)
	case ws.EventCreateLobby:
		ctx.handleCreateLobby(c, env.Data)
	case ws.EventJoinLobby:
		ctx.handleJoinLobby(c, env.Data)
	case ws.EventLeaveLobby:
		ctx.handleLeaveLobby(c)
	case ws.EventToggleReady:
		ctx.handleToggleReady(c)
	case ws.EventUpdateLobbyConfig:
		ctx.handleUpdateLobbyConfig(c, env.Data)
	case ws.EventStartGame:
		ctx.handleStartGame(c)
	case ws.EventJoinGame:
		ctx.handleJoinGame(c, env.Data)
	case ws.EventGetGameState:
		ctx.handleGetGameState(c, env.Data)
	case ws.EventUseAbility:
		ctx.handleUseAbility(c, env.Data)
	case ws.EventCancelAbility:
		ctx.handleCancelAbility(c, env.Data)
	default:
		c.Send(ws.EventGameError, ws.ErrorPayload{Error: "Unknown event: " + env.Event})
	}
}

// Disconnect cleans up after a dropped connection: lobby roster, seat
// binding, joined set, connection table.
func (ctx *Context) Disconnect(c ws.Sender) {
	connID := c.ID()
	log.Printf("ws: disconnected %s", connID)

	if info, ok := ctx.Conns.Get(connID); ok && info.LobbyCode != "" {
		ctx.removeFromLobby(connID, info.LobbyCode)
	}

	if b, ok := ctx.Directory.BindingOf(connID); ok {
		ctx.Directory.Unbind(connID)
		if sess, ok := ctx.Sessions.Get(b.GameID); ok {
			sess.DropJoined(connID)
		}
	}

	ctx.Conns.Remove(connID)
}
