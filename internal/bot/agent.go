package bot

import (
	"github.com/Vycas/1000-online/internal/domain"
)

// ActionKind identifies one bot decision.
type ActionKind string

const (
	ActionDeal    ActionKind = "deal"
	ActionOpen    ActionKind = "open"
	ActionRaise   ActionKind = "raise"
	ActionPass    ActionKind = "pass"
	ActionCollect ActionKind = "collect"
	ActionDiscard ActionKind = "discard"
	ActionStart   ActionKind = "start"
	ActionPlay    ActionKind = "play"
)

// Action is one decided move. Card and Amount are filled depending on Kind.
type Action struct {
	Kind   ActionKind
	Card   string
	Amount int
}

// Agent is an autonomous seat filler. It plays a plain legal-move policy:
// always open, bid the minimum when forced to open the bidding, otherwise
// pass, keep the envelope bid and play the first legal card.
type Agent struct {
	UserID string
}

func NewAgent(userID string) *Agent {
	return &Agent{UserID: userID}
}

// Act inspects a session snapshot and returns the agent's next action.
// The second return is false when it is not the agent's turn to do anything.
func (a *Agent) Act(s *domain.Session) (Action, bool) {
	seat, err := s.SeatOf(a.UserID)
	if err != nil {
		return Action{}, false
	}
	player := s.PlayerAt(seat)

	switch s.State {
	case domain.StateReady, domain.StateEndGame:
		if s.Dealer == seat {
			return Action{Kind: ActionDeal}, true
		}

	case domain.StateBettings:
		if player.Blind == nil {
			return Action{Kind: ActionOpen}, true
		}
		if s.Turn != seat || player.Passed {
			return Action{}, false
		}
		if s.IsFirstMove() {
			return Action{Kind: ActionRaise, Amount: s.Rules.MinBid}, true
		}
		return Action{Kind: ActionPass}, true

	case domain.StateCollect:
		if s.BetsWinner() == seat {
			return Action{Kind: ActionCollect}, true
		}

	case domain.StateFinalBet:
		if s.Turn != seat {
			return Action{}, false
		}
		if len(s.Bank) < s.Rules.BankSize {
			return Action{Kind: ActionDiscard, Card: player.Hand[0].String()}, true
		}
		return Action{Kind: ActionStart, Amount: s.Bid}, true

	case domain.StateInGame:
		if s.Turn != seat {
			return Action{}, false
		}
		card := player.Hand[0]
		if len(s.Bank) > 0 {
			led := s.Bank[0].Suit
			for _, c := range player.Hand {
				if c.Suit == led {
					card = c
					break
				}
			}
		}
		return Action{Kind: ActionPlay, Card: card.String()}, true
	}
	return Action{}, false
}
