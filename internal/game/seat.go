package game

import "github.com/lox/holdem-coach/poker"

// Seat is one position in the table ring. Chips persist across hands; the
// remaining fields are reset by StartHand.
type Seat struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Chips      int          `json:"chips"`
	Hand       []poker.Card `json:"hand,omitempty"`
	Folded     bool         `json:"folded"`
	Bet        int          `json:"bet"`
	IsBot      bool         `json:"is_bot"`
	LastAction ActionKind   `json:"last_action"`
}

// AllIn reports whether a live seat has committed its whole stack
func (s *Seat) AllIn() bool {
	return !s.Folded && s.Chips == 0 && len(s.Hand) > 0
}

// canAct reports whether the seat still takes part in betting
func (s *Seat) canAct() bool {
	return !s.Folded && s.Chips > 0
}

// pay moves up to amount chips from the stack into the seat's bet and returns
// what was actually paid
func (s *Seat) pay(amount int) int {
	paid := min(amount, s.Chips)
	s.Chips -= paid
	s.Bet += paid
	return paid
}

func (s *Seat) resetForHand() {
	s.Hand = nil
	s.Folded = false
	s.Bet = 0
	s.LastAction = NoAction
}

func (s *Seat) clone() Seat {
	c := *s
	c.Hand = append([]poker.Card(nil), s.Hand...)
	return c
}
