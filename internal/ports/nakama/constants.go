package nakama

const (
	// RpcHostSession creates a private match and returns an invite token.
	RpcHostSession = "host_session"
	// RpcJoinByInvite resolves an invite token to a match ID.
	RpcJoinByInvite = "join_by_invite"
	// RpcQuickMatch finds or creates a match with open seats.
	RpcQuickMatch = "quick_match"
	// RpcSessionHistory returns the per-deal score snapshots of a session.
	RpcSessionHistory = "session_history"

	// MatchNameThousand is the authoritative match handler name registered with Nakama.
	MatchNameThousand = "thousand_match"

	// MatchLabelKey_OpenSeats is the label key advertising open seats.
	MatchLabelKey_OpenSeats = "open"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpDeal         int64 = 1
	OpGoBlind      int64 = 2
	OpGoOpen       int64 = 3
	OpRaiseBet     int64 = 4
	OpPass         int64 = 5
	OpCollectBank  int64 = 6
	OpDiscardCard  int64 = 7
	OpRetrieveCard int64 = 8
	OpStartGame    int64 = 9
	OpTakePlus     int64 = 10
	OpPlayCard     int64 = 11
	OpRequestView  int64 = 12

	// Server -> Client events
	OpPlayerJoined  int64 = 101
	OpSessionReady  int64 = 102
	OpDealStarted   int64 = 103
	OpHandDealt     int64 = 104 // send privately
	OpBetRaised     int64 = 105
	OpBetPassed     int64 = 106
	OpBankCollected int64 = 107
	OpGameStarted   int64 = 108
	OpPlusTaken     int64 = 109
	OpCardPlayed    int64 = 110
	OpDealEnded     int64 = 111
	OpMatchFinished int64 = 112
	OpViewUpdate    int64 = 113 // send privately
	OpGameError     int64 = 120
)
