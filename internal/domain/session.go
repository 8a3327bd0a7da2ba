package domain

import (
	"fmt"
	"math"
	"time"
)

// State is the lifecycle stage of a session.
type State string

const (
	// StateHosted: one seat taken, waiting for two more players.
	StateHosted State = "hosted"
	// StateReady: all seats taken, waiting for the dealer to deal.
	StateReady State = "ready"
	// StateBettings: the bidding phase of a deal.
	StateBettings State = "bettings"
	// StateCollect: bidding is over, the winner may collect the bank.
	StateCollect State = "collect"
	// StateFinalBet: the winner discards three cards and names the final bid.
	StateFinalBet State = "finalBet"
	// StateInGame: trick play.
	StateInGame State = "inGame"
	// StateEndGame: the deal is scored, waiting for the next deal.
	StateEndGame State = "endGame"
	// StateFinish: a player reached the target score; terminal.
	StateFinish State = "finish"
)

// Seat indexes one of the three session seats.
type Seat int

const (
	SeatA Seat = iota
	SeatB
	SeatC

	// NumSeats is the number of seats in a session.
	NumSeats = 3
)

// Next returns the cyclic successor seat: A, B, C, A.
func (s Seat) Next() Seat {
	return (s + 1) % NumSeats
}

func (s Seat) String() string {
	return string(rune('A' + s))
}

// Session is the authoritative state of one Thousand match. All operations
// against a session must be serialized by the caller; the session itself
// holds no lock.
type Session struct {
	ID    string `json:"id"`
	Rules Rules  `json:"rules"`

	State   State            `json:"state"`
	Players [NumSeats]Player `json:"players"`
	Joined  int              `json:"joined"`

	Dealer Seat `json:"dealer"`
	Turn   Seat `json:"turn"`

	Bid   int    `json:"bid"`
	Blind bool   `json:"blind"`
	Bank  []Card `json:"bank"` // the talon before play, the trick in progress during play
	Trump *Suit  `json:"trump"`

	// Info is the last informational event message, free text for display.
	Info string `json:"info"`

	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewSession creates a session hosted by the given user, who takes seat A
// and becomes the first dealer.
func NewSession(rules Rules, hostUserID string) *Session {
	s := &Session{
		Rules:  rules,
		State:  StateHosted,
		Dealer: SeatA,
	}
	s.Players[SeatA] = Player{UserID: hostUserID}
	s.Joined = 1
	return s
}

// PlayerAt returns the player occupying the given seat.
func (s *Session) PlayerAt(seat Seat) *Player {
	return &s.Players[seat]
}

// SeatOf resolves a user to their seat.
func (s *Session) SeatOf(userID string) (Seat, error) {
	for i := 0; i < s.Joined; i++ {
		if s.Players[i].UserID == userID {
			return Seat(i), nil
		}
	}
	return 0, ruleErrorf("user is not a player of this session")
}

// Join seats another user. Seats fill in order; seating the third player
// makes the session ready.
func (s *Session) Join(userID string) (Seat, error) {
	if s.Joined >= NumSeats {
		return 0, ruleErrorf("this session is already full")
	}
	seat := Seat(s.Joined)
	s.Players[seat] = Player{UserID: userID}
	s.Joined++
	if s.Joined == NumSeats {
		s.State = StateReady
	}
	return seat, nil
}

// IsFull reports whether all three seats are taken.
func (s *Session) IsFull() bool {
	return s.Joined == NumSeats
}

// Deal starts a new deal from an already shuffled deck. Only the dealer may
// deal, and only between deals. The dealer rotates forward and the new
// dealer opens the bidding at the implicit opening bid.
func (s *Session) Deal(seat Seat, deck []Card) error {
	if s.State != StateReady && s.State != StateEndGame {
		return ruleErrorf("current game has not been finished or session is not full")
	}
	if seat != s.Dealer {
		return ruleErrorf("only the dealer can start the game")
	}
	if len(deck) != NumSeats*s.Rules.HandSize+s.Rules.BankSize {
		return fmt.Errorf("dealt deck has %d cards, want %d", len(deck), NumSeats*s.Rules.HandSize+s.Rules.BankSize)
	}

	for i := 0; i < NumSeats; i++ {
		s.Players[i].resetForDeal(deck[i*s.Rules.HandSize : (i+1)*s.Rules.HandSize])
	}
	s.Bank = append([]Card{}, deck[NumSeats*s.Rules.HandSize:]...)
	s.Dealer = s.Dealer.Next()
	s.Turn = s.Dealer
	s.Bid = s.Rules.OpeningBid
	s.Blind = false
	s.Trump = nil
	s.State = StateBettings
	s.Info = fmt.Sprintf("%s deals the cards", s.Players[seat].UserID)
	return nil
}

// RaiseBet raises the current bid. The first player to reach the maximum
// bid wins the bidding outright.
func (s *Session) RaiseBet(seat Seat, bid int) error {
	if s.State != StateBettings {
		return ruleErrorf("bettings are already finished")
	}
	if s.Turn != seat {
		return ruleErrorf("it's not your turn to bet")
	}
	if bid < s.Rules.MinBid || bid > s.Rules.MaxBid {
		return ruleErrorf("bet must be between %d and %d", s.Rules.MinBid, s.Rules.MaxBid)
	}
	if bid%s.Rules.BidStep != 0 {
		return ruleErrorf("bets must be divisible by %d", s.Rules.BidStep)
	}
	if bid <= s.Bid {
		return ruleErrorf("your bet must be higher than the current bet")
	}

	player := s.PlayerAt(seat)
	player.Bid = &bid
	s.Bid = bid
	s.Info = fmt.Sprintf("%s raises up to %d", player.UserID, bid)
	if bid == s.Rules.MaxBid {
		s.finishBets()
		return nil
	}
	next := seat.Next()
	if s.PlayerAt(next).Passed {
		next = next.Next()
	}
	if s.PlayerAt(next).Passed {
		s.finishBets()
		return nil
	}
	s.Turn = next
	return nil
}

// MakePass passes the bidding. A player can only pass once per deal, and the
// first player to act must open with a raise.
func (s *Session) MakePass(seat Seat) error {
	if s.State != StateBettings {
		return ruleErrorf("bettings are already finished")
	}
	if s.Turn != seat {
		return ruleErrorf("it's not your turn to pass")
	}
	if s.PlayerAt(seat).Passed {
		return ruleErrorf("this player has already passed")
	}
	if s.IsFirstMove() {
		return ruleErrorf("the first player cannot pass the first time")
	}

	player := s.PlayerAt(seat)
	player.Passed = true
	s.Info = fmt.Sprintf("%s passes", player.UserID)
	next := seat.Next()
	if s.PlayerAt(next).Passed {
		next = next.Next()
	}
	s.Turn = next
	if s.betsOver() {
		s.finishBets()
	}
	return nil
}

// IsFirstMove reports whether the next bidding action is the opening move
// of the deal.
func (s *Session) IsFirstMove() bool {
	return s.Bid == s.Rules.OpeningBid && s.Dealer == s.Turn
}

// betsOver reports whether bidding has concluded: two players passed or the
// maximum bid was reached.
func (s *Session) betsOver() bool {
	passed := 0
	for i := range s.Players {
		if s.Players[i].Passed {
			passed++
		}
	}
	return passed == 2 || s.Bid == s.Rules.MaxBid
}

// BetsWinner returns the seat that won the bidding: the seat that bid the
// maximum, else the sole seat that has not passed. Exactly one seat can
// qualify by construction; anything else is a state machine bug.
func (s *Session) BetsWinner() Seat {
	for i := range s.Players {
		if b := s.Players[i].Bid; b != nil && *b == s.Rules.MaxBid {
			return Seat(i)
		}
	}
	for i := range s.Players {
		if !s.Players[i].Passed {
			return Seat(i)
		}
	}
	panic("thousand: bidding ended with every seat passed")
}

// finishBets locks in the winner's bid and moves to the collect state.
func (s *Session) finishBets() {
	winner := s.BetsWinner()
	player := s.PlayerAt(winner)
	if player.Bid != nil {
		s.Bid = *player.Bid
	}
	s.Blind = player.IsBlind()
	s.Turn = winner
	s.State = StateCollect
}

// CollectBank moves the three bank cards into the bidding winner's hand.
func (s *Session) CollectBank(seat Seat) error {
	if s.State != StateCollect {
		return ruleErrorf("bank can not be collected at this game state")
	}
	if s.BetsWinner() != seat {
		return ruleErrorf("only the bets winner can collect the bank")
	}

	player := s.PlayerAt(seat)
	player.Hand = append(player.Hand, s.Bank...)
	player.Talon = append([]Card{}, s.Bank...)
	s.Bank = nil
	s.State = StateFinalBet
	s.Info = fmt.Sprintf("%s takes the bank", player.UserID)
	return nil
}

// DiscardCard moves a card from the winner's hand back to the bank.
func (s *Session) DiscardCard(seat Seat, card Card) error {
	if s.State != StateFinalBet {
		return ruleErrorf("you can not put cards in this game state")
	}
	if s.Turn != seat {
		return ruleErrorf("it's not your turn to go")
	}
	if len(s.Bank) == s.Rules.BankSize {
		return ruleErrorf("there are already %d cards in the bank", s.Rules.BankSize)
	}
	player := s.PlayerAt(seat)
	idx, ok := indexOfCard(player.Hand, card)
	if !ok {
		return ruleErrorf("player does not have given card")
	}

	player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)
	s.Bank = append(s.Bank, card)
	return nil
}

// RetrieveCard takes a discarded card back from the bank, to correct a
// mis-discard before committing the final bet.
func (s *Session) RetrieveCard(seat Seat, card Card) error {
	if s.State != StateFinalBet {
		return ruleErrorf("retrieving cards is possible only in final bet state")
	}
	if s.Turn != seat {
		return ruleErrorf("it's not your turn to go")
	}
	idx, ok := indexOfCard(s.Bank, card)
	if !ok {
		return ruleErrorf("bank does not contain given card")
	}

	s.Bank = append(s.Bank[:idx], s.Bank[idx+1:]...)
	s.PlayerAt(seat).Hand = append(s.PlayerAt(seat).Hand, card)
	return nil
}

// TakePlus forfeits the deal after seeing the talon. The winner's bid is
// voided, each opponent is awarded flat points (doubled for a blind deal,
// frozen for opponents already in the barrel range) and the deal ends.
// A player may only take a plus once per match.
func (s *Session) TakePlus(seat Seat) error {
	if s.State != StateFinalBet {
		return ruleErrorf("taking a plus is possible only in final bet state")
	}
	if s.Turn != seat {
		return ruleErrorf("it's not your turn to go")
	}
	player := s.PlayerAt(seat)
	if player.Plus {
		return ruleErrorf("player already has a plus")
	}

	player.Plus = true
	zero := 0
	player.Bid = &zero
	nextDealer := s.Dealer.Next().Next()
	s.Dealer = nextDealer
	s.Turn = nextDealer
	s.State = StateEndGame
	s.Info = fmt.Sprintf("%s passes the game", player.UserID)
	for _, opSeat := range []Seat{seat.Next(), seat.Next().Next()} {
		op := s.PlayerAt(opSeat)
		pts := s.Rules.PlusAward
		if s.Blind {
			pts *= 2
		}
		if op.Score >= s.Rules.BarrelScore {
			pts = 0
		}
		op.Score += pts
		took := pts
		op.Bid = &took
	}
	return nil
}

// Start commits the final bet after three cards were discarded, moving the
// discards into the winner's trick pile as a pre-won trick and beginning
// trick play. A blind winner must either keep the blind bid or at least
// double it; doubling cancels the blind.
func (s *Session) Start(seat Seat, finalBid int) error {
	if s.Turn != seat {
		return ruleErrorf("it's not your turn")
	}
	if s.State != StateFinalBet {
		return ruleErrorf("game can be begun only in final bet state")
	}
	if len(s.Bank) != s.Rules.BankSize {
		return ruleErrorf("%d cards must be discarded before beginning the game", s.Rules.BankSize)
	}
	if finalBid < s.Rules.MinBid || finalBid > s.Rules.MaxBid {
		return ruleErrorf("bet must be between %d and %d", s.Rules.MinBid, s.Rules.MaxBid)
	}
	if finalBid%s.Rules.BidStep != 0 {
		return ruleErrorf("bet must be divisible by %d", s.Rules.BidStep)
	}
	if finalBid < s.Bid {
		return ruleErrorf("your bet must be higher or equal than the current bet")
	}
	if s.Blind && finalBid != s.Bid && finalBid < s.Bid*2 {
		return ruleErrorf("when blind, your final bet must equal the current bet or at least double it")
	}

	player := s.PlayerAt(seat)
	if s.Blind && finalBid >= s.Bid*2 {
		s.Blind = false
		player.GoOpen()
	}
	s.Bid = finalBid
	bid := finalBid
	player.Bid = &bid
	player.Tricks = append(player.Tricks, s.Bank...)
	s.Bank = nil
	s.State = StateInGame
	s.Info = fmt.Sprintf("%s plays %d", player.UserID, finalBid)
	return nil
}

// PutCard plays a card into the current trick. The led suit must be
// followed when possible. Leading a card whose marriage partner is still in
// hand calls the marriage and names trump. The third card resolves the
// trick; an empty hand after resolution ends the deal.
func (s *Session) PutCard(seat Seat, card Card) error {
	if s.State != StateInGame {
		return ruleErrorf("you can not put cards in this game state")
	}
	if s.Turn != seat {
		return ruleErrorf("it's not your turn to go")
	}
	player := s.PlayerAt(seat)
	idx, ok := indexOfCard(player.Hand, card)
	if !ok {
		return ruleErrorf("player does not have given card")
	}
	if len(s.Bank) > 0 {
		led := s.Bank[0].Suit
		if card.Suit != led && player.HasSuit(led) {
			return ruleErrorf("you must put a card with matching suit")
		}
	}

	player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)
	player.Thrown = append(player.Thrown, card)
	s.Bank = append(s.Bank, card)
	s.Info = ""

	if len(s.Bank) == 1 && player.HasPair(card) {
		trump := card.Suit
		player.Calls = append(player.Calls, trump)
		s.Trump = &trump
		s.Info = fmt.Sprintf("%s calls %d (%s)", player.UserID, s.Rules.MarriageValue(trump), trump.Name())
	}

	if len(s.Bank) < NumSeats {
		s.Turn = seat.Next()
		return nil
	}

	winner := s.resolveTrick(seat)
	winnerPlayer := s.PlayerAt(winner)
	winnerPlayer.Tricks = append(winnerPlayer.Tricks, s.Bank...)
	s.Bank = nil
	s.Turn = winner
	s.Info = fmt.Sprintf("%s takes the trick", winnerPlayer.UserID)
	if len(player.Hand) == 0 {
		s.finishDeal()
	}
	return nil
}

// resolveTrick returns the seat winning the completed trick. The last card
// was played by the given seat, so the bank positions map to seats
// last+1, last+2, last in play order.
func (s *Session) resolveTrick(last Seat) Seat {
	seats := [NumSeats]Seat{last.Next(), last.Next().Next(), last}
	led := s.Bank[0].Suit
	effective := led
	if s.Trump != nil && hasCardOfSuit(s.Bank, *s.Trump) {
		effective = *s.Trump
	}
	best := 0
	for i := 1; i < NumSeats; i++ {
		if beats(s.Bank[i], s.Bank[best], effective) {
			best = i
		}
	}
	return seats[best]
}

// beats reports whether a outranks b in trick order: a trump-flagged card
// beats any unflagged card, and cards with equal flags compare by rank.
func beats(a, b Card, trumpLike Suit) bool {
	aTrump := a.Suit == trumpLike
	bTrump := b.Suit == trumpLike
	if aTrump != bTrump {
		return aTrump
	}
	return a.Rank > b.Rank
}

// finishDeal scores the deal. The bidding winner gains or loses exactly the
// final bid; the other players gain their collected points rounded to the
// nearest ten. Blind doubles every swing. Players at or above the barrel
// score are frozen, and lingering in the barrel range past the limit costs
// the barrel penalty. The first player processed at or past the target
// score wins the match.
func (s *Session) finishDeal() {
	winner := s.BetsWinner()
	for i := range s.Players {
		p := &s.Players[i]
		pts := p.GamePoints(s.Rules)
		if Seat(i) == winner {
			if pts >= s.Bid {
				pts = s.Bid
				s.Info = fmt.Sprintf("%s succeeds playing %d", p.UserID, s.Bid)
			} else {
				pts = -s.Bid
				s.Info = fmt.Sprintf("%s fails playing %d", p.UserID, s.Bid)
			}
			if s.Blind {
				s.Info += " (Blind)"
				pts *= 2
			}
			p.Score += pts
		} else {
			if s.Blind {
				pts *= 2
			}
			pts = roundToTens(pts)
			if p.Score >= s.Rules.BarrelScore {
				pts = 0
			}
			p.Score += pts
		}
		if p.Score >= s.Rules.TargetScore {
			if s.State != StateFinish {
				s.State = StateFinish
				s.Info = fmt.Sprintf("%s has won the game!", p.UserID)
			}
		} else if p.Score >= s.Rules.BarrelScore {
			p.Barrel++
			if p.Barrel > s.Rules.BarrelLimit {
				p.Barrel = 0
				p.Score -= s.Rules.BarrelPenalty
			}
		}
		took := pts
		p.Bid = &took
	}
	if s.State != StateFinish {
		s.State = StateEndGame
	}
}

// roundToTens rounds to the nearest multiple of ten, halves away from zero.
func roundToTens(points int) int {
	return int(math.Round(float64(points)/10)) * 10
}

// Scores returns the current cumulative score of each seat.
func (s *Session) Scores() [NumSeats]int {
	var scores [NumSeats]int
	for i := range s.Players {
		scores[i] = s.Players[i].Score
	}
	return scores
}
