package ability

import (
	"fmt"
	"strings"

	"github.com/cardwire/tableserver/internal/engine"
)

// ChoicePayload is the ability_choice_required event payload. Only the
// option lists relevant to the pending choice are populated.
type ChoicePayload struct {
	AbilityUsed    string `json:"abilityUsed"`
	ChoiceRequired bool   `json:"choiceRequired"`
	Step           int    `json:"step"`
	Instructions   string `json:"instructions"`
	Message        string `json:"message"`

	AvailablePlayers    []PlayerOption `json:"availablePlayers,omitempty"`
	CardOptions         []IndexOption  `json:"cardOptions,omitempty"`
	RevealOptions       []RevealOption `json:"revealOptions,omitempty"`
	DrawnCard           *CardChoice    `json:"drawnCard,omitempty"`
	AvailableCards      []CardChoice   `json:"availableCards,omitempty"`
	AvailableBurntCards []CardChoice   `json:"availableBurntCards,omitempty"`
	CurrentHoleCards    []string       `json:"currentHoleCards,omitempty"`
	ChosenBurntCard     *CardChoice    `json:"chosenBurntCard,omitempty"`
	AvailableHoleCards  []CardChoice   `json:"availableHoleCards,omitempty"`
	AvailableBoardCards []CardChoice   `json:"availableBoardCards,omitempty"`
}

// PlayerOption is a selectable target seat, identified by its one-based
// display id.
type PlayerOption struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Balance int    `json:"balance"`
}

// IndexOption is a selectable position with a display name.
type IndexOption struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// RevealOption is a burn reveal mode.
type RevealOption struct {
	Value bool   `json:"value"`
	Name  string `json:"name"`
}

// CardChoice is a selectable card as shown to the client.
type CardChoice struct {
	Index       int    `json:"index"`
	Card        string `json:"card"`
	Rank        string `json:"rank"`
	Suit        string `json:"suit"`
	IsDrawnCard bool   `json:"isDrawnCard,omitempty"`
	CardType    string `json:"cardType,omitempty"`
}

// peekChoice lists the eligible peek targets: every seat that is neither
// folded nor the actor. Returns false when no eligible target exists.
func peekChoice(state engine.GameState, actorSeat int) (ChoicePayload, bool) {
	var players []PlayerOption
	for i, p := range state.Players {
		if i == actorSeat || p.IsFolded {
			continue
		}
		id := p.ID
		if id == 0 {
			id = i + 1
		}
		players = append(players, PlayerOption{ID: id, Name: p.Name, Balance: p.Balance})
	}
	if len(players) == 0 {
		return ChoicePayload{}, false
	}
	return ChoicePayload{
		AbilityUsed:      Peek.String(),
		ChoiceRequired:   true,
		Step:             1,
		AvailablePlayers: players,
		CardOptions: []IndexOption{
			{Index: 0, Name: "First Card"},
			{Index: 1, Name: "Second Card"},
		},
		Instructions: "Choose a player and which card to peek at",
		Message:      "Select target player and card for Peek ability",
	}, true
}

// burnChoice asks whether to reveal the burnt card's suit or rank.
func burnChoice() ChoicePayload {
	return ChoicePayload{
		AbilityUsed:    Burn.String(),
		ChoiceRequired: true,
		Step:           1,
		RevealOptions: []RevealOption{
			{Value: true, Name: "Reveal Suit"},
			{Value: false, Name: "Reveal Rank"},
		},
		Instructions: "Choose what to reveal when burning a card",
		Message:      "Burn: Choose suit or rank to reveal",
	}
}

// yoinkChoice lists the actor's hole cards and the board cards to swap.
// The error is user-facing and reported without contacting the engine.
func yoinkChoice(state engine.GameState, actorSeat int) (ChoicePayload, error) {
	if actorSeat < 0 || actorSeat >= len(state.Players) {
		return ChoicePayload{}, fmt.Errorf("Player not found")
	}
	holeCards := state.Players[actorSeat].HoleCards
	if len(holeCards) == 0 {
		return ChoicePayload{}, fmt.Errorf("No hole cards available")
	}
	if len(state.Board) == 0 {
		return ChoicePayload{}, fmt.Errorf("No board cards available to yoink")
	}
	return ChoicePayload{
		AbilityUsed:         Yoink.String(),
		ChoiceRequired:      true,
		Step:                1,
		AvailableHoleCards:  cardChoices(holeCards),
		AvailableBoardCards: cardChoices(state.Board),
		Instructions:        "Choose one hole card and one board card to swap",
		Message:             "Select cards to swap with Yoink ability",
	}, nil
}

// engineChoice forwards an engine-driven decision point (manifest discard,
// trashman steps) to the actor with the option lists the engine supplied.
func engineChoice(ab Ability, resp *engine.AbilityResponse) ChoicePayload {
	payload := ChoicePayload{
		AbilityUsed:    ab.String(),
		ChoiceRequired: true,
		Step:           resp.Step,
		Instructions:   resp.Instructions,
	}
	if payload.Step == 0 {
		payload.Step = 1
	}

	switch ab {
	case Manifest:
		payload.AvailableCards = convertCards(resp.AvailableCards)
		payload.DrawnCard = convertCard(resp.DrawnCard)
		if payload.Instructions == "" {
			payload.Instructions = "Select one card to discard"
		}
		payload.Message = "Manifest: Choose which card to discard"

	case Trashman:
		if payload.Step <= 1 {
			payload.AvailableBurntCards = convertCards(resp.AvailableBurntCards)
			payload.CurrentHoleCards = resp.CurrentHoleCards
			if payload.Instructions == "" {
				payload.Instructions = "Select which burnt card to retrieve"
			}
			payload.Message = "Trashman Step 1: Choose burnt card to retrieve"
		} else {
			payload.ChosenBurntCard = convertCard(resp.ChosenBurntCard)
			payload.AvailableHoleCards = convertCards(resp.AvailableHoleCards)
			if payload.Instructions == "" {
				payload.Instructions = "Select which hole card to discard"
			}
			retrieving := "card"
			if payload.ChosenBurntCard != nil && payload.ChosenBurntCard.Card != "" {
				retrieving = payload.ChosenBurntCard.Card
			}
			payload.Message = fmt.Sprintf("Trashman Step 2: Choose hole card to discard (retrieving %s)", retrieving)
		}

	default:
		payload.Message = ab.Title() + ": choice required"
	}
	return payload
}

func convertCards(cards []engine.CardOption) []CardChoice {
	out := make([]CardChoice, len(cards))
	for i, c := range cards {
		out[i] = CardChoice{
			Index:       c.Index,
			Card:        c.Card,
			Rank:        c.Rank,
			Suit:        c.Suit,
			IsDrawnCard: c.IsDrawnCard,
			CardType:    c.CardType,
		}
	}
	return out
}

func convertCard(c *engine.CardOption) *CardChoice {
	if c == nil {
		return nil
	}
	return &CardChoice{
		Index:       c.Index,
		Card:        c.Card,
		Rank:        c.Rank,
		Suit:        c.Suit,
		IsDrawnCard: c.IsDrawnCard,
		CardType:    c.CardType,
	}
}

// cardChoices expands "Rank of Suit" card strings into client options.
func cardChoices(cards []string) []CardChoice {
	out := make([]CardChoice, len(cards))
	for i, card := range cards {
		rank, suit := splitCard(card)
		out[i] = CardChoice{Index: i, Card: card, Rank: rank, Suit: suit}
	}
	return out
}

func splitCard(card string) (rank, suit string) {
	rank, suit, ok := strings.Cut(card, " of ")
	if !ok {
		return card, ""
	}
	return rank, suit
}
