package handlers

import (
	"encoding/json"

	"github.com/cardwire/tableserver/internal/ability"
	"github.com/cardwire/tableserver/internal/ws"
)

type useAbilityPayload struct {
	GameID  string `json:"gameId"`
	Ability string `json:"ability"`
	ability.Params
}

func (ctx *Context) handleUseAbility(c ws.Sender, data json.RawMessage) {
	p, ok := decode[useAbilityPayload](c, data, ws.EventAbilityError)
	if !ok {
		return
	}

	sess, exists := ctx.Sessions.Get(p.GameID)
	if !exists {
		c.Send(ws.EventAbilityError, ws.ErrorPayload{Error: "Game not found"})
		return
	}
	seat, err := ctx.Directory.SeatOf(p.GameID, c.ID())
	if err != nil {
		c.Send(ws.EventAbilityError, ws.ErrorPayload{Error: "Player not found in game"})
		return
	}
	ab, known := ability.Parse(p.Ability)
	if !known {
		c.Send(ws.EventAbilityError, ws.ErrorPayload{Error: "Unknown ability: " + p.Ability})
		return
	}

	ctx.Negotiator.Handle(sess, seat, c, ab, p.Params)
}

// handleCancelAbility acknowledges the cancellation but deliberately does
// not reach the engine or touch negotiation state: cancellation semantics
// are unsupported, not approximated.
func (ctx *Context) handleCancelAbility(c ws.Sender, data json.RawMessage) {
	if _, ok := decode[gameIDPayload](c, data, ws.EventAbilityError); !ok {
		return
	}
	c.Send(ws.EventAbilityCancelled, ws.MessagePayload{Message: "Ability cancelled"})
}
