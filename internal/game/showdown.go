package game

import "github.com/lox/holdem-coach/poker"

// Contender is a live seat's evaluated hand at showdown.
type Contender struct {
	Index  int
	SeatID string
	Rank   poker.HandRank
}

// ShowdownResult names the single seat that takes the pot.
type ShowdownResult struct {
	Index      int
	SeatID     string
	Rank       poker.HandRank
	Contenders []Contender
}

// ResolveShowdown evaluates every non-folded seat against the board and picks
// the best hand. Equal hands resolve to the earliest seat in ring order; the
// pot is never split. ok is false when no seat is live.
func ResolveShowdown(seats []*Seat, board []poker.Card) (result ShowdownResult, ok bool) {
	result.Index = -1
	for i, s := range seats {
		if s.Folded {
			continue
		}
		c := Contender{Index: i, SeatID: s.ID, Rank: poker.Evaluate(s.Hand, board)}
		result.Contenders = append(result.Contenders, c)
		if result.Index < 0 || c.Rank.Beats(result.Rank) {
			result.Index = i
			result.SeatID = s.ID
			result.Rank = c.Rank
		}
	}
	return result, result.Index >= 0
}
