package domain

// Player holds one seat's state. Score and Barrel persist across deals;
// everything else is reset when cards are dealt.
type Player struct {
	UserID string `json:"user_id"`

	Score  int `json:"score"`
	Barrel int `json:"barrel"`

	Hand   []Card `json:"hand"`
	Talon  []Card `json:"talon"`  // cards taken into the hand from the collected bank
	Thrown []Card `json:"thrown"` // cards played this deal, append-only
	Tricks []Card `json:"tricks"` // cards won this deal

	Bid    *int   `json:"bid"`
	Passed bool   `json:"passed"`
	Blind  *bool  `json:"blind"` // nil until the player chooses blind or open
	Plus   bool   `json:"plus"`
	Calls  []Suit `json:"calls"` // marriage suits called this deal
}

// GoBlind commits the player to playing blind. Fails once the choice was
// already made to play open.
func (p *Player) GoBlind() error {
	if p.Blind != nil && !*p.Blind {
		return ruleErrorf("the choice was already made to play open")
	}
	blind := true
	p.Blind = &blind
	return nil
}

// GoOpen commits the player to playing open. Always succeeds: an undecided
// or blind player may open at any time.
func (p *Player) GoOpen() {
	blind := false
	p.Blind = &blind
}

// IsBlind reports whether the player has committed to playing blind.
func (p *Player) IsBlind() bool {
	return p.Blind != nil && *p.Blind
}

// HasPair reports whether the player holds the marriage partner of the given
// card: the queen for a king, the king for a queen.
func (p *Player) HasPair(card Card) bool {
	switch card.Rank {
	case King:
		_, ok := indexOfCard(p.Hand, Card{Suit: card.Suit, Rank: Queen})
		return ok
	case Queen:
		_, ok := indexOfCard(p.Hand, Card{Suit: card.Suit, Rank: King})
		return ok
	default:
		return false
	}
}

// HasSuit reports whether the player holds any card of the given suit.
func (p *Player) HasSuit(s Suit) bool {
	return hasCardOfSuit(p.Hand, s)
}

// GamePoints totals the points collected in the current deal: called
// marriages plus the card points of won tricks.
func (p *Player) GamePoints(rules Rules) int {
	points := 0
	for _, s := range p.Calls {
		points += rules.MarriageValue(s)
	}
	for _, c := range p.Tricks {
		points += c.Points()
	}
	return points
}

// resetForDeal clears per-deal state and assigns a fresh hand.
func (p *Player) resetForDeal(hand []Card) {
	p.Hand = append([]Card{}, hand...)
	p.Talon = nil
	p.Thrown = nil
	p.Tricks = nil
	p.Bid = nil
	p.Passed = false
	p.Blind = nil
	p.Calls = nil
}
