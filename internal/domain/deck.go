package domain

// NewDeck returns the full 24-card deck in natural order: 4 suits, 6 ranks
// from Nine to Ace.
func NewDeck() []Card {
	deck := make([]Card, 0, 24)
	for s := Spades; s <= Hearts; s++ {
		for r := Nine; r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// DeckPoints sums the card-point values of the given cards.
func DeckPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}
