package training

import (
	"fmt"

	"github.com/lox/holdem-coach/internal/game"
)

// Stats summarises how a player acted over a set of hands. The coach feeds it
// into assessment prompts.
type Stats struct {
	Hands           int `json:"hands"`
	Won             int `json:"won"`
	NetChips        int `json:"net_chips"`
	FoldedPreflop   int `json:"folded_preflop"`
	VoluntaryPut    int `json:"voluntary_put"`
	ReachedShowdown int `json:"reached_showdown"`
	WonAtShowdown   int `json:"won_at_showdown"`
	Folds           int `json:"folds"`
	Checks          int `json:"checks"`
	Calls           int `json:"calls"`
	Raises          int `json:"raises"`
}

// Summarize computes Stats for userID over records.
func Summarize(records []game.HandRecord, userID string) Stats {
	var s Stats
	for _, rec := range records {
		seat, ok := rec.Seat(userID)
		if !ok {
			continue
		}
		s.Hands++
		s.NetChips += seat.Delta()
		if rec.WinnerID == userID {
			s.Won++
		}
		if rec.Showdown && !seat.Folded {
			s.ReachedShowdown++
			if rec.WinnerID == userID {
				s.WonAtShowdown++
			}
		}

		voluntary := false
		for _, e := range rec.Log {
			if e.Kind != game.EventAction || e.SeatID != userID {
				continue
			}
			switch e.Action {
			case game.Fold:
				s.Folds++
				if e.Phase == game.Preflop {
					s.FoldedPreflop++
				}
			case game.Check:
				s.Checks++
			case game.Call:
				s.Calls++
				if e.Phase == game.Preflop {
					voluntary = true
				}
			case game.Raise:
				s.Raises++
				if e.Phase == game.Preflop {
					voluntary = true
				}
			}
		}
		if voluntary {
			s.VoluntaryPut++
		}
	}
	return s
}

// VPIP is the share of hands where the player put chips in preflop by choice.
func (s Stats) VPIP() float64 {
	return ratio(s.VoluntaryPut, s.Hands)
}

// Aggression is raises per call.
func (s Stats) Aggression() float64 {
	if s.Calls == 0 {
		return float64(s.Raises)
	}
	return float64(s.Raises) / float64(s.Calls)
}

func (s Stats) String() string {
	return fmt.Sprintf("%d hands, %d won, net %+d chips, VPIP %.0f%%, aggression %.1f, showdowns %d/%d won",
		s.Hands, s.Won, s.NetChips, s.VPIP()*100, s.Aggression(), s.WonAtShowdown, s.ReachedShowdown)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
