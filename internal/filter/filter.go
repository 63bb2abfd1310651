// Package filter projects the canonical game state into per-viewer views.
// Redact is the single redaction point in the process: ability broadcasts
// and generic state refreshes both go through it, so they can never
// disagree about what a seat may see.
package filter

import "github.com/cardwire/tableserver/internal/engine"

// Redact returns the canonical state as seen by the viewer seat
// (zero-based). Every other seat loses its hole cards, ability list and
// count, valid actions, and action context; public fields (balances, bets,
// fold flags, pot, board, turn indicator) pass through unchanged.
//
// Redact is a pure projection: it never mutates the canonical document, so
// it is safe to run once per viewer per broadcast. A viewer seat outside
// the seat range (e.g. an observer) yields a fully redacted view.
func Redact(state engine.GameState, viewer int) engine.GameState {
	out := state
	out.Players = make([]engine.PlayerState, len(state.Players))
	for i, p := range state.Players {
		if i == viewer {
			out.Players[i] = p
			continue
		}
		p.HoleCards = []string{}
		p.Abilities = []string{}
		p.AbilityCount = 0
		p.ValidActions = []string{}
		p.ActionContext = nil
		out.Players[i] = p
	}
	return out
}
