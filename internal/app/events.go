package app

// EventKind identifies emitted domain events for match dispatch.
type EventKind string

const (
	EventPlayerJoined  EventKind = "player_joined"
	EventSessionReady  EventKind = "session_ready"
	EventDealStarted   EventKind = "deal_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventBetRaised     EventKind = "bet_raised"
	EventBetPassed     EventKind = "bet_passed"
	EventBankCollected EventKind = "bank_collected"
	EventGameStarted   EventKind = "game_started"
	EventPlusTaken     EventKind = "plus_taken"
	EventCardPlayed    EventKind = "card_played"
	EventDealEnded     EventKind = "deal_ended"
	EventMatchFinished EventKind = "match_finished"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

type DealStartedPayload struct {
	DealerUserID string `json:"dealer_user_id"`
}

type HandDealtPayload struct {
	UserID string   `json:"user_id"`
	Hand   []string `json:"hand"`
}

type BetRaisedPayload struct {
	UserID         string `json:"user_id"`
	Bid            int    `json:"bid"`
	NextTurnUserID string `json:"next_turn_user_id"`
}

type BetPassedPayload struct {
	UserID         string `json:"user_id"`
	NextTurnUserID string `json:"next_turn_user_id"`
}

type BankCollectedPayload struct {
	UserID string `json:"user_id"`
}

type GameStartedPayload struct {
	UserID string `json:"user_id"`
	Bid    int    `json:"bid"`
	Blind  bool   `json:"blind"`
}

type PlusTakenPayload struct {
	UserID string `json:"user_id"`
}

type CardPlayedPayload struct {
	UserID         string `json:"user_id"`
	Card           string `json:"card"`
	NextTurnUserID string `json:"next_turn_user_id"`
}

type DealEndedPayload struct {
	Info   string `json:"info"`
	Scores []int  `json:"scores"`
}

type MatchFinishedPayload struct {
	WinnerUserID string `json:"winner_user_id"`
	Scores       []int  `json:"scores"`
}
