package domain

// Rules parameterizes a Thousand match. The marriage table is configuration
// rather than an algorithmic constant; DefaultRules carries the classic
// values.
type Rules struct {
	HandSize   int `json:"hand_size"`
	BankSize   int `json:"bank_size"`
	OpeningBid int `json:"opening_bid"` // implicit bid the first player must outbid
	MinBid     int `json:"min_bid"`
	MaxBid     int `json:"max_bid"`
	BidStep    int `json:"bid_step"`

	TargetScore   int `json:"target_score"`   // score that ends the match
	BarrelScore   int `json:"barrel_score"`   // entering this range triggers the barrel counter
	BarrelLimit   int `json:"barrel_limit"`   // allowed consecutive barrel deals before the penalty
	BarrelPenalty int `json:"barrel_penalty"` // points lost when the barrel limit is exceeded
	PlusAward     int `json:"plus_award"`     // points each opponent gains when the winner takes a plus

	Marriages map[Suit]int `json:"marriages"`
}

// DefaultRules returns the classic three-player Thousand rule set.
func DefaultRules() Rules {
	return Rules{
		HandSize:      7,
		BankSize:      3,
		OpeningBid:    90,
		MinBid:        100,
		MaxBid:        300,
		BidStep:       10,
		TargetScore:   1000,
		BarrelScore:   880,
		BarrelLimit:   3,
		BarrelPenalty: 120,
		PlusAward:     60,
		Marriages: map[Suit]int{
			Spades:   40,
			Clubs:    60,
			Diamonds: 80,
			Hearts:   100,
		},
	}
}

// MarriageValue returns the marriage call value for a suit.
func (r Rules) MarriageValue(s Suit) int {
	return r.Marriages[s]
}
