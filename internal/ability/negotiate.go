package ability

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/cardwire/tableserver/internal/broadcast"
	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/models"
	"github.com/cardwire/tableserver/internal/ws"
)

// Engine is the slice of the rules-engine client the negotiator needs.
type Engine interface {
	UseAbility(gameID string, call engine.AbilityCall) (*engine.AbilityResponse, error)
}

// Negotiator runs ability negotiations. Each Handle call is one round: it
// either elicits missing input from the actor, or calls the engine and
// resolves the outcome. Negotiation state lives with the engine and the
// client; the server itself keeps none between rounds.
type Negotiator struct {
	engine Engine
	router *broadcast.Router
}

// NewNegotiator wires a negotiator to the engine and the broadcast router.
func NewNegotiator(e Engine, r *broadcast.Router) *Negotiator {
	return &Negotiator{engine: e, router: r}
}

// Handle processes one use_ability round for the acting seat (zero-based).
// Validation failures and engine errors go to the actor only; broadcasts
// happen solely on engine-confirmed success, per the ability's disclosure
// policy. The session's turn lock serializes the whole exchange so two
// concurrent ability uses on one game cannot interleave around their engine
// calls.
func (n *Negotiator) Handle(sess *models.GameSession, seat int, actor ws.Sender, ab Ability, p Params) {
	sess.LockTurn()
	defer sess.UnlockTurn()

	call, proceed := n.prepareCall(sess, seat, actor, ab, p)
	if !proceed {
		return
	}

	resp, err := n.engine.UseAbility(sess.GameID, call)
	if err != nil {
		log.Printf("ability: engine call failed for %s in game %s: %v", ab, sess.GameID, err)
		sendError(actor, "Failed to process ability")
		return
	}

	switch {
	case resp.ChoiceRequired:
		sendChoice(actor, engineChoice(ab, resp))
	case resp.Success:
		n.router.Dispatch(sess, n.outcome(sess, seat, ab, resp))
	default:
		msg := resp.Error
		if msg == "" {
			msg = ab.Title() + " failed"
		}
		sendError(actor, msg)
	}
}

// prepareCall assembles the engine call for this round. When round-one
// required fields are missing it sends the actor a choice request (or a
// no-eligible-target error) and reports false; the engine is never
// contacted for an incomplete round.
func (n *Negotiator) prepareCall(sess *models.GameSession, seat int, actor ws.Sender, ab Ability, p Params) (engine.AbilityCall, bool) {
	call := engine.AbilityCall{
		// one-based at the engine boundary
		PlayerID:    seat + 1,
		AbilityType: ab.String(),
	}

	if c := contracts[ab]; c.needsLocalChoice != nil && c.needsLocalChoice(p) {
		state, ok := sess.State()
		if !ok {
			sendError(actor, "Game not started")
			return call, false
		}
		switch ab {
		case Peek:
			choice, ok := peekChoice(state, seat)
			if !ok {
				sendError(actor, "No valid players to peek at")
				return call, false
			}
			sendChoice(actor, choice)
		case Burn:
			sendChoice(actor, burnChoice())
		case Yoink:
			choice, err := yoinkChoice(state, seat)
			if err != nil {
				sendError(actor, err.Error())
				return call, false
			}
			sendChoice(actor, choice)
		}
		return call, false
	}

	switch ab {
	case Peek:
		call.TargetPlayerID = p.TargetPlayerID
		call.CardIndex = p.CardIndex
	case Burn:
		call.RevealSuit = p.RevealSuit
	case Manifest:
		// Engine is called immediately; the discard choice, once elicited,
		// rides along on the second round.
		call.DiscardIndex = p.DiscardIndex
		call.DrawnCard = p.DrawnCard
		call.DrawnCardSuit = p.DrawnCardSuit
	case Trashman:
		call.BurntCardIndex = p.BurntCardIndex
		call.HoleCardIndex = p.HoleCardIndex
	case Yoink:
		call.CardIndex = p.CardIndex
		call.TargetPlayerID = p.TargetPlayerID
	}
	return call, true
}

// outcome turns an engine success into a dispatchable outcome with the
// ability's disclosure policy and user-facing messages.
func (n *Negotiator) outcome(sess *models.GameSession, seat int, ab Ability, resp *engine.AbilityResponse) broadcast.Outcome {
	o := broadcast.Outcome{
		GameID:     sess.GameID,
		ActorSeat:  seat,
		PlayerName: resp.PlayerName,
		Ability:    ab.String(),
		Success:    resp.Success,
		Disclosure: ab.Disclosure(),
		Detail:     resp.Result,
		State:      resp.GameState,
	}

	switch ab {
	case Peek:
		var result engine.PeekResult
		if len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, &result); err != nil {
				log.Printf("ability: malformed peek result: %v", err)
			}
		}
		targetName := n.playerName(sess, resp, result.TargetPlayerID)
		peeked := result.PeekedCard
		if peeked == "" {
			peeked = "Unknown Card"
		}
		// card numbering is one-based for display
		cardNumber := result.CardIndex + 1
		o.PublicMessage = fmt.Sprintf("%s peeked at %s's card #%d", resp.PlayerName, targetName, cardNumber)
		o.PrivateMessage = fmt.Sprintf("%s: %s", o.PublicMessage, peeked)

	case Chaos:
		o.PublicMessage = fmt.Sprintf("%s used Chaos ability - all active players' cards have been shuffled!", resp.PlayerName)
		o.Detail = nil // no private detail exists for anyone

	case Yoink:
		var result engine.YoinkResult
		if len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, &result); err != nil {
				log.Printf("ability: malformed yoink result: %v", err)
			}
		}
		hole := orUnknown(result.HoleCardSwapped)
		board := orUnknown(result.BoardCardSwapped)
		o.PublicMessage = fmt.Sprintf("%s used Yoink - swapped %s from hand with %s from board", resp.PlayerName, hole, board)

	default: // burn, manifest, trashman, deadman
		o.PrivateMessage = resp.Message
		o.PublicMessage = fmt.Sprintf("%s used %s ability", resp.PlayerName, ab.Title())
	}
	return o
}

// playerName resolves a one-based player id against the freshest state
// available: the response's updated state when present, else the session's.
func (n *Negotiator) playerName(sess *models.GameSession, resp *engine.AbilityResponse, playerID int) string {
	state := resp.GameState
	if state == nil {
		if s, ok := sess.State(); ok {
			state = &s
		}
	}
	if state != nil {
		for _, p := range state.Players {
			if p.ID == playerID {
				return p.Name
			}
		}
	}
	return fmt.Sprintf("Player %d", playerID)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func sendChoice(actor ws.Sender, payload ChoicePayload) {
	if err := actor.Send(ws.EventChoiceRequired, payload); err != nil {
		log.Printf("ability: choice send failed: %v", err)
	}
}

func sendError(actor ws.Sender, msg string) {
	if err := actor.Send(ws.EventAbilityError, ws.ErrorPayload{Error: msg}); err != nil {
		log.Printf("ability: error send failed: %v", err)
	}
}
