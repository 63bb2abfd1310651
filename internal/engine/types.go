package engine

import "encoding/json"

// The rules engine is the sole authority over game state. Every type here
// mirrors its request/response contract; the engine serializes fields in
// PascalCase, ability calls are submitted in camelCase. Player and seat ids
// are one-based on this boundary and zero-based everywhere else in the
// process.

// SeatedPlayer describes one seat in a create-game request.
type SeatedPlayer struct {
	ID            int    `json:"Id"`
	Name          string `json:"Name"`
	StartingFunds int    `json:"StartingFunds"`
}

// CreateGameRequest is the payload for POST /api/game/create.
type CreateGameRequest struct {
	Players    []SeatedPlayer `json:"Players"`
	SmallBlind int            `json:"SmallBlind"`
	BigBlind   int            `json:"BigBlind"`
}

// CreateGameResponse is the engine's answer to game creation.
type CreateGameResponse struct {
	GameID    string     `json:"GameId"`
	GameState *GameState `json:"GameState,omitempty"`
}

// GameState is the canonical game document as last returned by the engine.
// It is replaced wholesale on every engine response and never computed
// locally.
type GameState struct {
	GameID          string        `json:"GameId,omitempty"`
	Players         []PlayerState `json:"Players"`
	Board           []string      `json:"Board"`
	Pot             int           `json:"Pot"`
	CurrentPlayerID int           `json:"CurrentPlayerId"`
	Phase           string        `json:"Phase,omitempty"`
	SmallBlind      int           `json:"SmallBlind,omitempty"`
	BigBlind        int           `json:"BigBlind,omitempty"`
}

// PlayerState is one seat inside the canonical document. HoleCards,
// Abilities, AbilityCount, ValidActions and ActionContext are private to
// the seat and stripped for every other viewer by the disclosure filter.
type PlayerState struct {
	ID            int            `json:"Id"`
	Name          string         `json:"Name"`
	Balance       int            `json:"Balance"`
	CurrentBet    int            `json:"CurrentBet"`
	IsFolded      bool           `json:"IsFolded"`
	HoleCards     []string       `json:"HoleCards"`
	Abilities     []string       `json:"Abilities"`
	AbilityCount  int            `json:"AbilityCount"`
	ValidActions  []string       `json:"ValidActions"`
	ActionContext *ActionContext `json:"ActionContext"`
}

// ActionContext is the per-seat betting context for the seat's next action.
type ActionContext struct {
	CallAmount int `json:"CallAmount"`
	MinRaise   int `json:"MinRaise"`
	MaxRaise   int `json:"MaxRaise"`
}

// AbilityCall is the payload for POST /api/game/{id}/abilities/use.
// Pointer fields are omitted until the negotiation has elicited them.
// Note the yoink quirk inherited from the engine contract: CardIndex names
// the actor's hole card and TargetPlayerID names the board card index.
type AbilityCall struct {
	PlayerID       int    `json:"playerId"`
	AbilityType    string `json:"abilityType"`
	TargetPlayerID *int   `json:"targetPlayerId,omitempty"`
	CardIndex      *int   `json:"cardIndex,omitempty"`
	RevealSuit     *bool  `json:"revealSuit,omitempty"`
	DiscardIndex   *int   `json:"discardIndex,omitempty"`
	DrawnCard      string `json:"drawnCard,omitempty"`
	DrawnCardSuit  string `json:"drawnCardSuit,omitempty"`
	BurntCardIndex *int   `json:"burntCardIndex,omitempty"`
	HoleCardIndex  *int   `json:"holeCardIndex,omitempty"`
}

// CardOption is one selectable card in an engine-driven choice.
type CardOption struct {
	Index       int    `json:"Index"`
	Card        string `json:"Card"`
	Rank        string `json:"Rank"`
	Suit        string `json:"Suit"`
	IsDrawnCard bool   `json:"IsDrawnCard,omitempty"`
	CardType    string `json:"CardType,omitempty"`
}

// AbilityResponse is the engine's answer to an ability call: exactly one of
// a success document, a choice-required document, or a failure.
type AbilityResponse struct {
	Success        bool   `json:"Success"`
	ChoiceRequired bool   `json:"ChoiceRequired"`
	Step           int    `json:"Step"`
	PlayerID       int    `json:"PlayerId"`
	PlayerName     string `json:"PlayerName"`
	AbilityUsed    string `json:"AbilityUsed"`
	Message        string `json:"Message"`
	Error          string `json:"Error,omitempty"`
	Instructions   string `json:"Instructions,omitempty"`

	// Result carries ability-specific detail. It is kept raw so the
	// disclosure policy decides who receives it; typed views below decode
	// the abilities whose detail the server itself reads.
	Result json.RawMessage `json:"Result,omitempty"`

	GameState *GameState `json:"GameState,omitempty"`

	// Choice option lists, populated on ChoiceRequired responses.
	DrawnCard           *CardOption  `json:"DrawnCard,omitempty"`
	AvailableCards      []CardOption `json:"AvailableCards,omitempty"`
	AvailableBurntCards []CardOption `json:"AvailableBurntCards,omitempty"`
	CurrentHoleCards    []string     `json:"CurrentHoleCards,omitempty"`
	ChosenBurntCard     *CardOption  `json:"ChosenBurntCard,omitempty"`
	AvailableHoleCards  []CardOption `json:"AvailableHoleCards,omitempty"`
}

// PeekResult is the typed view of a peek success Result.
type PeekResult struct {
	PeekedCard     string `json:"PeekedCard"`
	TargetPlayerID int    `json:"TargetPlayerId"`
	CardIndex      int    `json:"CardIndex"`
}

// YoinkResult is the typed view of a yoink success Result.
type YoinkResult struct {
	HoleCardSwapped  string `json:"HoleCardSwapped"`
	BoardCardSwapped string `json:"BoardCardSwapped"`
}
