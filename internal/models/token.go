package models

// Token is a single-use bearer capability binding a username to a future
// (game, seat) pair. It is issued when a lobby member registers, bound to a
// game when the lobby transitions, and redeemed exactly once at join. After
// redemption only the Used flag has changed, and it never changes back.
type Token struct {
	ID        string
	Username  string
	GameID    string // empty until bound at game creation
	SeatIndex int    // -1 until bound; zero-based thereafter
	Used      bool
}

// SeatClaim is the result of a successful token redemption: the identity
// and seat the connection is now entitled to occupy.
type SeatClaim struct {
	Username  string
	GameID    string
	SeatIndex int
	TokenID   string
}
