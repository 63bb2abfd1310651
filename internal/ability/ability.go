// Package ability drives the multi-round negotiation protocol that collects
// missing parameters from the acting seat before invoking the rules engine,
// and assigns each outcome its disclosure policy.
package ability

import (
	"strings"

	"github.com/cardwire/tableserver/internal/broadcast"
)

// Ability is the closed set of special actions. Dispatch is table-driven
// off this enum; an unrecognized wire name is rejected at the boundary.
type Ability int

const (
	Peek Ability = iota
	Burn
	Manifest
	Trashman
	Deadman
	Chaos
	Yoink
)

var wireNames = [...]string{
	Peek:     "peek",
	Burn:     "burn",
	Manifest: "manifest",
	Trashman: "trashman",
	Deadman:  "deadman",
	Chaos:    "chaos",
	Yoink:    "yoink",
}

var titles = [...]string{
	Peek:     "Peek",
	Burn:     "Burn",
	Manifest: "Manifest",
	Trashman: "Trashman",
	Deadman:  "Deadman",
	Chaos:    "Chaos",
	Yoink:    "Yoink",
}

// String returns the wire name.
func (a Ability) String() string { return wireNames[a] }

// Title returns the display name used in announcements.
func (a Ability) Title() string { return titles[a] }

// Parse maps a wire name to its ability, case-insensitively.
func Parse(s string) (Ability, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range wireNames {
		if name == s {
			return Ability(a), true
		}
	}
	return 0, false
}

// contract is the per-ability negotiation contract: which fields round one
// requires before the engine may be called, how many further choice rounds
// the engine itself drives, and the disclosure policy of the outcome.
type contract struct {
	// needsLocalChoice reports whether round-one required fields are still
	// missing from the supplied params.
	needsLocalChoice func(Params) bool
	engineRounds     int
	disclosure       broadcast.Disclosure
}

var contracts = map[Ability]contract{
	Peek: {
		needsLocalChoice: func(p Params) bool { return p.TargetPlayerID == nil || p.CardIndex == nil },
		disclosure:       broadcast.DiscloseActorDistinct,
	},
	Burn: {
		needsLocalChoice: func(p Params) bool { return p.RevealSuit == nil },
		disclosure:       broadcast.DiscloseActorDetail,
	},
	Manifest: {
		engineRounds: 1,
		disclosure:   broadcast.DiscloseActorDetail,
	},
	Trashman: {
		engineRounds: 2,
		disclosure:   broadcast.DiscloseActorDetail,
	},
	Deadman: {
		disclosure: broadcast.DiscloseActorDetail,
	},
	Chaos: {
		disclosure: broadcast.DisclosePublic,
	},
	Yoink: {
		needsLocalChoice: func(p Params) bool { return p.CardIndex == nil || p.TargetPlayerID == nil },
		disclosure:       broadcast.DisclosePublic,
	},
}

// EngineRounds returns how many engine-driven choice rounds the ability
// takes before resolving.
func (a Ability) EngineRounds() int { return contracts[a].engineRounds }

// Disclosure returns the outcome disclosure policy for the ability.
func (a Ability) Disclosure() broadcast.Disclosure { return contracts[a].disclosure }

// Params are the ability-specific fields a client may supply across
// negotiation rounds. Pointers distinguish "absent" from zero values; an
// absent required field triggers a choice round instead of an engine call.
//
// Two field names are overloaded by the engine contract for yoink:
// cardIndex is the actor's hole card and targetPlayerId is the board card
// index.
type Params struct {
	TargetPlayerID *int   `json:"targetPlayerId,omitempty"`
	CardIndex      *int   `json:"cardIndex,omitempty"`
	RevealSuit     *bool  `json:"revealSuit,omitempty"`
	DiscardIndex   *int   `json:"discardIndex,omitempty"`
	DrawnCard      string `json:"drawnCard,omitempty"`
	DrawnCardSuit  string `json:"drawnCardSuit,omitempty"`
	BurntCardIndex *int   `json:"burntCardIndex,omitempty"`
	HoleCardIndex  *int   `json:"holeCardIndex,omitempty"`
}
