package domain

import (
	"fmt"
	"sort"
)

// Suit identifies one of the four card suits. The declaration order is the
// fixed suit order used when sorting a hand for display.
type Suit int

const (
	Spades Suit = iota
	Diamonds
	Clubs
	Hearts
)

var suitCodes = [...]string{"S", "D", "C", "H"}
var suitNames = [...]string{"Spades", "Diamonds", "Clubs", "Hearts"}

func (s Suit) String() string {
	if s < Spades || s > Hearts {
		return "?"
	}
	return suitCodes[s]
}

// Name returns the display name of the suit.
func (s Suit) Name() string {
	if s < Spades || s > Hearts {
		return "?"
	}
	return suitNames[s]
}

// Rank identifies a card rank in the reduced 24-card deck. The declaration
// order is the trick-taking order: Nine is the weakest card, Ace the
// strongest. Note that Ten outranks King and Queen.
type Rank int

const (
	Nine Rank = iota
	Jack
	Queen
	King
	Ten
	Ace
)

var rankCodes = [...]string{"9", "J", "Q", "K", "10", "A"}

func (r Rank) String() string {
	if r < Nine || r > Ace {
		return "?"
	}
	return rankCodes[r]
}

// Points returns the card-point value of the rank. The full deck totals 120.
func (r Rank) Points() int {
	switch r {
	case Ace:
		return 11
	case Ten:
		return 10
	case King:
		return 4
	case Queen:
		return 3
	case Jack:
		return 2
	default:
		return 0
	}
}

// Card is an immutable suit and rank pair. Cards are compared by value.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// String encodes the card in the wire format used by clients, e.g. "HQ" or "S10".
func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// Points returns the card-point value of the card.
func (c Card) Points() int {
	return c.Rank.Points()
}

// ParseCard decodes a card code produced by Card.String.
func ParseCard(code string) (Card, error) {
	if len(code) < 2 {
		return Card{}, fmt.Errorf("invalid card code %q", code)
	}
	var suit Suit = -1
	for i, sc := range suitCodes {
		if code[:1] == sc {
			suit = Suit(i)
			break
		}
	}
	if suit < 0 {
		return Card{}, fmt.Errorf("invalid card suit in %q", code)
	}
	for i, rc := range rankCodes {
		if code[1:] == rc {
			return Card{Suit: suit, Rank: Rank(i)}, nil
		}
	}
	return Card{}, fmt.Errorf("invalid card rank in %q", code)
}

// Less reports whether c sorts before other in natural display order:
// suit first, then rank.
func (c Card) Less(other Card) bool {
	if c.Suit != other.Suit {
		return c.Suit < other.Suit
	}
	return c.Rank < other.Rank
}

// SortCards orders cards in place in natural display order.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].Less(cards[j]) })
}

func indexOfCard(cards []Card, target Card) (int, bool) {
	for i, c := range cards {
		if c == target {
			return i, true
		}
	}
	return -1, false
}

func hasCardOfSuit(cards []Card, s Suit) bool {
	for _, c := range cards {
		if c.Suit == s {
			return true
		}
	}
	return false
}
