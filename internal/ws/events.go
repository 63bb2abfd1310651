package ws

// Inbound event names (client -> server).
const (
	EventSetUsername       = "set_username"
	EventCreateLobby       = "create_lobby"
	EventJoinLobby         = "join_lobby"
	EventLeaveLobby        = "leave_lobby"
	EventToggleReady       = "toggle_ready"
	EventUpdateLobbyConfig = "update_lobby_config"
	EventStartGame         = "start_game"
	EventJoinGame          = "join_game"
	EventUseAbility        = "use_ability"
	EventCancelAbility     = "cancel_ability"
	EventGetGameState      = "get_game_state"
)

// Outbound event names (server -> client).
const (
	EventConnected          = "connected"
	EventUsernameSet        = "username_set"
	EventUsernameError      = "username_error"
	EventLobbyCreated       = "lobby_created"
	EventLobbyJoined        = "lobby_joined"
	EventLobbyLeft          = "lobby_left"
	EventLobbyError         = "lobby_error"
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventPlayerReadyChanged = "player_ready_changed"
	EventLobbyConfigUpdated = "lobby_config_updated"
	EventTransitionToGame   = "transition_to_game"
	EventGameRoomJoined     = "game_room_joined"
	EventWaitingForPlayers  = "waiting_for_players"
	EventGameStarted        = "game_started"
	EventGameError          = "game_error"
	EventGameStateUpdate    = "game_state_update"
	EventChoiceRequired     = "ability_choice_required"
	EventAbilityResult      = "ability_result"
	EventAbilityError       = "ability_error"
	EventAbilityCancelled   = "ability_cancelled"
)

// ErrorPayload carries a seat-scoped error message. Errors are never
// broadcast; they go only to the offending connection.
type ErrorPayload struct {
	Error string `json:"error"`
}

// MessagePayload carries a plain informational message.
type MessagePayload struct {
	Message string `json:"message"`
}
