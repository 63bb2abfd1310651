// Package broadcast delivers ability outcomes and state refreshes to the
// connections of a game according to a disclosure policy.
package broadcast

import (
	"encoding/json"
	"log"

	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/filter"
	"github.com/cardwire/tableserver/internal/models"
	"github.com/cardwire/tableserver/internal/seats"
	"github.com/cardwire/tableserver/internal/ws"
)

// Disclosure selects which connections receive an outcome's detail.
type Disclosure int

const (
	// DiscloseActorDetail sends the acting connection the full detail and a
	// private message; every other joined connection gets a templated
	// announcement with the detail cleared.
	DiscloseActorDetail Disclosure = iota

	// DiscloseActorDistinct is DiscloseActorDetail with an announcement
	// derived from the result (peek: names the target and card number but
	// not the card value).
	DiscloseActorDistinct

	// DisclosePublic sends one identical payload to every joined
	// connection, including the detail.
	DisclosePublic
)

// Outcome is a completed ability invocation ready for dispatch. It exists
// only for the broadcast it triggers.
type Outcome struct {
	GameID         string
	ActorSeat      int // zero-based
	PlayerName     string
	Ability        string // wire name, e.g. "peek"
	Success        bool
	Disclosure     Disclosure
	PrivateMessage string
	PublicMessage  string
	Detail         json.RawMessage    // engine result; withheld from non-actors unless public
	State          *engine.GameState  // updated canonical state, if the engine returned one
}

// ResultPayload is the ability_result event payload.
type ResultPayload struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	AbilityUsed string          `json:"abilityUsed"`
	PlayerName  string          `json:"playerName"`
	Result      json.RawMessage `json:"result"`
	Summary     string          `json:"summary"`
	IsPrivate   bool            `json:"isPrivate"`
}

// StatePayload is the payload for game_started and game_state_update.
type StatePayload struct {
	GameID    string           `json:"gameId"`
	GameState engine.GameState `json:"gameState"`
	Message   string           `json:"message,omitempty"`
}

var emptyDetail = json.RawMessage(`{}`)

// Router fans outcomes out to a game's joined connections.
type Router struct {
	directory *seats.Directory
}

// NewRouter creates a router resolving actors through the directory.
func NewRouter(directory *seats.Directory) *Router {
	return &Router{directory: directory}
}

// Dispatch delivers an outcome per its disclosure policy. If the outcome
// carries updated canonical state it then replaces the session state and
// sends every connection its redacted refresh.
func (r *Router) Dispatch(sess *models.GameSession, o Outcome) {
	detail := o.Detail
	if detail == nil {
		detail = emptyDetail
	}

	switch o.Disclosure {
	case DisclosePublic:
		payload := ResultPayload{
			Success:     o.Success,
			Message:     o.PublicMessage,
			AbilityUsed: o.Ability,
			PlayerName:  o.PlayerName,
			Result:      detail,
			Summary:     o.PublicMessage,
		}
		for _, conn := range sess.Joined() {
			if err := conn.Send(ws.EventAbilityResult, payload); err != nil {
				log.Printf("broadcast: send to %s failed: %v", conn.ID(), err)
			}
		}

	default:
		actorConn, err := r.directory.ConnectionOf(o.GameID, o.ActorSeat)
		if err != nil {
			// Actor unbound mid-negotiation; nothing to leak, announce only.
			actorConn = ""
		}
		private := ResultPayload{
			Success:     o.Success,
			Message:     o.PrivateMessage,
			AbilityUsed: o.Ability,
			PlayerName:  o.PlayerName,
			Result:      detail,
			Summary:     o.PrivateMessage,
			IsPrivate:   true,
		}
		announcement := ResultPayload{
			Success:     o.Success,
			Message:     o.PublicMessage,
			AbilityUsed: o.Ability,
			PlayerName:  o.PlayerName,
			Result:      emptyDetail,
			Summary:     o.PublicMessage,
		}
		for connID, conn := range sess.Joined() {
			payload := announcement
			if connID == actorConn {
				payload = private
			}
			if err := conn.Send(ws.EventAbilityResult, payload); err != nil {
				log.Printf("broadcast: send to %s failed: %v", conn.ID(), err)
			}
		}
	}

	if o.State != nil {
		sess.ReplaceState(*o.State)
		r.BroadcastState(sess, ws.EventGameStateUpdate, "Game updated after "+o.Ability+" ability")
	}
}

// BroadcastState sends every joined connection its own redacted view of the
// session's canonical state. Connections without a seat binding are skipped
// rather than guessed at.
func (r *Router) BroadcastState(sess *models.GameSession, event, message string) {
	state, ok := sess.State()
	if !ok {
		return
	}
	for connID, conn := range sess.Joined() {
		seat, err := r.directory.SeatOf(sess.GameID, connID)
		if err != nil {
			log.Printf("broadcast: connection %s joined game %s but has no seat binding", connID, sess.GameID)
			continue
		}
		payload := StatePayload{
			GameID:    sess.GameID,
			GameState: filter.Redact(state, seat),
			Message:   message,
		}
		if err := conn.Send(event, payload); err != nil {
			log.Printf("broadcast: send to %s failed: %v", conn.ID(), err)
		}
	}
}

// Announce sends one identical payload to every joined connection.
func (r *Router) Announce(sess *models.GameSession, event string, payload any) {
	for _, conn := range sess.Joined() {
		if err := conn.Send(event, payload); err != nil {
			log.Printf("broadcast: send to %s failed: %v", conn.ID(), err)
		}
	}
}
