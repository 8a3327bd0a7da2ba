package app

import (
	"fmt"

	"github.com/Vycas/1000-online/internal/domain"
)

// CardBack is the placeholder rendered for any card the viewer may not see.
const CardBack = "BACK"

// SeatView is the per-seat block of a view: the viewer first, then the two
// opponents in play order.
type SeatView struct {
	Username string `json:"username"`
	Points   string `json:"points"`
	Plus     bool   `json:"plus"`
	Barrel   int    `json:"barrel"`
	Turn     bool   `json:"turn"`
	Info     string `json:"info"`
}

// View is the read model sent to one player. Hidden information never leaves
// the server: opponents' hands, a blind declarer's own cards and the bank of
// a blind deal are rendered as card backs.
type View struct {
	State      string      `json:"state"`
	InfoHeader string      `json:"info_header"`
	Seats      [3]SeatView `json:"seats"`
	Cards      []string    `json:"cards"`
	Bank       []string    `json:"bank,omitempty"`
	Memo       []string    `json:"memo,omitempty"`
	Bettings   []int       `json:"bettings,omitempty"`
	Passed     bool        `json:"passed,omitempty"`
	First      bool        `json:"first,omitempty"`
	Taken      string      `json:"taken,omitempty"`
	Trump      string      `json:"trump,omitempty"`
}

// BuildView projects the session into what the given seat may see.
func BuildView(s *domain.Session, viewer domain.Seat) *View {
	v := &View{}
	seats := [3]domain.Seat{viewer, viewer.Next(), viewer.Next().Next()}
	for i, seat := range seats {
		p := s.PlayerAt(seat)
		if p.UserID == "" {
			v.Seats[i].Username = "[Not connected]"
			continue
		}
		v.Seats[i] = SeatView{
			Username: p.UserID,
			Points:   fmt.Sprintf("%d points", p.Score),
			Plus:     p.Plus,
			Barrel:   p.Barrel,
		}
	}

	if !s.IsFull() {
		v.State = "hosted"
		v.InfoHeader = "Waiting for players"
		return v
	}

	player := s.PlayerAt(viewer)
	turn := s.Turn

	// Before the session state refines it, the view state reflects the
	// viewer's blind choice for the current deal.
	switch {
	case player.IsBlind():
		v.State = "go_blind"
		v.Cards = cardBacks(len(player.Hand))
	case player.Blind != nil:
		v.State = "go_open"
		v.Cards = sortedCodes(player.Hand)
	default:
		v.State = "open_or_blind"
		v.Cards = cardBacks(len(player.Hand))
	}

	switch s.State {
	case domain.StateReady:
		turn = s.Dealer
		v.State = "ready"

	case domain.StateBettings:
		v.InfoHeader = s.Info
		v.Bank = cardBacks(len(s.Bank))
		v.Passed = player.Passed
		v.First = s.IsFirstMove()
		if !player.Passed {
			for bid := s.Bid + s.Rules.BidStep; bid <= s.Rules.MaxBid; bid += s.Rules.BidStep {
				v.Bettings = append(v.Bettings, bid)
			}
		}
		for i, seat := range seats {
			p := s.PlayerAt(seat)
			switch {
			case p.Passed:
				v.Seats[i].Info = "Pass"
			case p.Bid != nil && *p.Bid > 0:
				v.Seats[i].Info = fmt.Sprintf("Bet %d", *p.Bid)
				if p.IsBlind() {
					v.Seats[i].Info += " (Blind)"
				}
			}
		}

	case domain.StateCollect:
		winner := s.BetsWinner()
		v.State = "collect"
		v.InfoHeader = fmt.Sprintf("%s takes the bank", s.PlayerAt(winner).UserID)
		v.Cards = sortedCodes(player.Hand)
		if viewer != winner && s.Blind {
			v.Bank = cardBacks(len(s.Bank))
		} else {
			v.Bank = codes(s.Bank)
		}

	case domain.StateFinalBet:
		v.State = "finalBet"
		v.Cards = sortedCodes(player.Hand)
		if turn == viewer {
			v.InfoHeader = "Discard 3 cards and make the final bet"
			v.Bank = codes(s.Bank)
			if s.Blind {
				v.Bettings = append(v.Bettings, s.Bid)
				for bid := s.Bid * 2; bid <= s.Rules.MaxBid; bid += s.Rules.BidStep {
					v.Bettings = append(v.Bettings, bid)
				}
			} else {
				for bid := s.Bid; bid <= s.Rules.MaxBid; bid += s.Rules.BidStep {
					v.Bettings = append(v.Bettings, bid)
				}
			}
		} else {
			v.InfoHeader = "Waiting for the final bet"
			v.Bank = cardBacks(len(s.Bank))
		}

	case domain.StateInGame:
		v.State = "inGame"
		v.Cards = sortedCodes(player.Hand)
		v.Taken = fmt.Sprintf("Taken: %d", player.GamePoints(s.Rules))
		winner := s.BetsWinner()
		// The table shows each seat's card of the trick in progress plus a
		// one-card memo of the previous trick.
		offset := 0
		for _, seat := range seats {
			if n := len(s.PlayerAt(seat).Thrown); n > offset {
				offset = n
			}
		}
		v.Bank = make([]string, len(seats))
		v.Memo = make([]string, len(seats))
		for i, seat := range seats {
			p := s.PlayerAt(seat)
			if seat == winner {
				v.Seats[i].Info = fmt.Sprintf("Plays %d", s.Bid)
				if s.Blind {
					v.Seats[i].Info += " (Blind)"
				}
			}
			if offset > 0 && len(p.Thrown) == offset {
				v.Bank[i] = p.Thrown[offset-1].String()
			}
			if offset > 1 && len(p.Thrown) >= offset-1 {
				v.Memo[i] = p.Thrown[offset-2].String()
			}
		}
		if len(player.Thrown) == 0 {
			// Before the first own play the memo recalls the revealed bank.
			if s.Blind {
				v.Memo = cardBacks(len(seats))
			} else {
				v.Memo = codes(s.PlayerAt(winner).Talon)
			}
		}
		if s.Trump != nil {
			v.Trump = "Trump: " + s.Trump.Name()
		}
		if s.Info != "" {
			v.InfoHeader = s.Info
		}

	case domain.StateEndGame, domain.StateFinish:
		if s.State == domain.StateFinish {
			v.State = "finish"
		} else {
			turn = s.Dealer
			v.State = "ready"
		}
		v.InfoHeader = s.Info
		v.Cards = nil
		v.Bank = make([]string, len(seats))
		for i, seat := range seats {
			p := s.PlayerAt(seat)
			took := 0
			if p.Bid != nil {
				took = *p.Bid
			}
			v.Seats[i].Info = fmt.Sprintf("Took: %d", took)
			if len(p.Thrown) > 0 {
				v.Bank[i] = p.Thrown[len(p.Thrown)-1].String()
			}
		}
	}

	for i, seat := range seats {
		v.Seats[i].Turn = seat == turn
	}
	return v
}

func cardBacks(n int) []string {
	backs := make([]string, n)
	for i := range backs {
		backs[i] = CardBack
	}
	return backs
}

func codes(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func sortedCodes(cards []domain.Card) []string {
	sorted := append([]domain.Card{}, cards...)
	domain.SortCards(sorted)
	return codes(sorted)
}
