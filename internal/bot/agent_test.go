package bot

import (
	"testing"

	"github.com/Vycas/1000-online/internal/domain"
)

func readySession(t *testing.T) *domain.Session {
	t.Helper()
	s := domain.NewSession(domain.DefaultRules(), "alice")
	for _, userID := range []string{"bot-1", "bot-2"} {
		if _, err := s.Join(userID); err != nil {
			t.Fatalf("join error: %v", err)
		}
	}
	return s
}

func TestAgentDealsAsDealer(t *testing.T) {
	s := readySession(t)

	agent := NewAgent("alice")
	action, ok := agent.Act(s)
	if !ok || action.Kind != ActionDeal {
		t.Fatalf("action = %v %v, want deal", action, ok)
	}

	// Non-dealers wait.
	if _, ok := NewAgent("bot-1").Act(s); ok {
		t.Fatal("non-dealer should have nothing to do")
	}
}

func TestAgentOpensThenBids(t *testing.T) {
	s := readySession(t)
	if err := s.Deal(domain.SeatA, domain.NewDeck()); err != nil {
		t.Fatalf("deal error: %v", err)
	}

	// The new dealer is bot-1 and opens the bidding.
	agent := NewAgent("bot-1")
	action, ok := agent.Act(s)
	if !ok || action.Kind != ActionOpen {
		t.Fatalf("action = %v %v, want open first", action, ok)
	}
	s.PlayerAt(domain.SeatB).GoOpen()

	action, ok = agent.Act(s)
	if !ok || action.Kind != ActionRaise || action.Amount != 100 {
		t.Fatalf("action = %v %v, want raise 100", action, ok)
	}
	if err := s.RaiseBet(domain.SeatB, action.Amount); err != nil {
		t.Fatalf("raise error: %v", err)
	}

	// Later seats pass once declared.
	other := NewAgent("bot-2")
	if _, ok := other.Act(s); !ok {
		t.Fatal("expected an open action")
	}
	s.PlayerAt(domain.SeatC).GoOpen()
	action, ok = other.Act(s)
	if !ok || action.Kind != ActionPass {
		t.Fatalf("action = %v %v, want pass", action, ok)
	}
}

func TestAgentPlaysOutDeal(t *testing.T) {
	s := readySession(t)
	agents := map[string]*Agent{
		"alice": NewAgent("alice"),
		"bot-1": NewAgent("bot-1"),
		"bot-2": NewAgent("bot-2"),
	}
	if err := s.Deal(domain.SeatA, domain.NewDeck()); err != nil {
		t.Fatalf("deal error: %v", err)
	}

	// Let the agents drive the deal to its end.
	for steps := 0; s.State != domain.StateEndGame && s.State != domain.StateFinish; steps++ {
		if steps > 100 {
			t.Fatalf("agents stalled in state %s", s.State)
		}
		acted := false
		for i := 0; i < domain.NumSeats; i++ {
			seat := domain.Seat(i)
			agent := agents[s.PlayerAt(seat).UserID]
			action, ok := agent.Act(s)
			if !ok {
				continue
			}
			acted = true
			var err error
			switch action.Kind {
			case ActionOpen:
				s.PlayerAt(seat).GoOpen()
			case ActionRaise:
				err = s.RaiseBet(seat, action.Amount)
			case ActionPass:
				err = s.MakePass(seat)
			case ActionCollect:
				err = s.CollectBank(seat)
			case ActionDiscard:
				card, perr := domain.ParseCard(action.Card)
				if perr != nil {
					t.Fatalf("parse error: %v", perr)
				}
				err = s.DiscardCard(seat, card)
			case ActionStart:
				err = s.Start(seat, action.Amount)
			case ActionPlay:
				card, perr := domain.ParseCard(action.Card)
				if perr != nil {
					t.Fatalf("parse error: %v", perr)
				}
				err = s.PutCard(seat, card)
			default:
				t.Fatalf("unexpected action %v in state %s", action, s.State)
			}
			if err != nil {
				t.Fatalf("%s action %v error: %v", s.PlayerAt(seat).UserID, action, err)
			}
			break
		}
		if !acted {
			t.Fatalf("no agent acted in state %s", s.State)
		}
	}
}
