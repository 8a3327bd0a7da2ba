package domain

import "testing"

func TestGoBlindAndOpen(t *testing.T) {
	p := &Player{}
	if err := p.GoBlind(); err != nil {
		t.Fatalf("go blind error: %v", err)
	}
	if !p.IsBlind() {
		t.Fatal("player should be blind")
	}
	// Going blind twice is allowed.
	if err := p.GoBlind(); err != nil {
		t.Fatalf("repeated go blind error: %v", err)
	}

	p.GoOpen()
	if p.IsBlind() {
		t.Fatal("player should be open")
	}
	// Open is final.
	if err := p.GoBlind(); err == nil {
		t.Fatal("expected error going blind after open")
	}
}

func TestHasPair(t *testing.T) {
	p := &Player{Hand: []Card{{Clubs, Queen}, {Clubs, King}, {Diamonds, Queen}}}
	for _, c := range NewDeck() {
		want := c == Card{Clubs, Queen} || c == Card{Clubs, King} || c == Card{Diamonds, King}
		if got := p.HasPair(c); got != want {
			t.Fatalf("HasPair(%s) = %v, want %v", c, got, want)
		}
	}
}

func TestHasSuit(t *testing.T) {
	p := &Player{Hand: []Card{{Clubs, Ace}, {Diamonds, Ace}, {Spades, Ace}}}
	for _, s := range []Suit{Spades, Clubs, Diamonds} {
		if !p.HasSuit(s) {
			t.Fatalf("player should hold a %s card", s.Name())
		}
	}
	if p.HasSuit(Hearts) {
		t.Fatal("player should hold no hearts")
	}
}

func TestGamePoints(t *testing.T) {
	p := &Player{
		Calls:  []Suit{Diamonds, Hearts},
		Tricks: NewDeck(),
	}
	// Two marriages (80+100) plus the full deck (120).
	if got := p.GamePoints(DefaultRules()); got != 300 {
		t.Fatalf("game points = %d, want 300", got)
	}
}
