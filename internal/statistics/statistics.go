// Package statistics accumulates per-hand results of simulated play.
package statistics

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/holdem-coach/internal/game"
)

// HandResult is one hand from the point of view of the tracked seat.
type HandResult struct {
	NetBB          float64    // chips won or lost, in big blinds
	Seed           int64      // seed of the table that played it
	HandNumber     int        // hand number on that table
	Position       int        // seats after the button, 0 is the button
	WentToShowdown bool       // the hand was decided by a showdown
	Won            bool       // the tracked seat took the pot
	PotBB          float64    // pot awarded, in big blinds
	StreetReached  game.Phase // last street dealt before the hand ended
}

// PositionStats tracks results for one seat position.
type PositionStats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

// Statistics tracks simulation results for one seat across many hands.
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // for the variance
	Values []float64 // for the median and percentiles

	ShowdownWins    int     // hands won at showdown
	NonShowdownWins int     // hands won when everyone else folded
	ShowdownBB      float64 // net result of hands decided at showdown
	NonShowdownBB   float64 // net result of hands decided by folds
	AllBB           float64

	PositionResults [game.MaxPlayers]PositionStats
	StreetsReached  [game.GameOver + 1]int

	MaxPotBB  float64
	BigPots   int     // pots of at least BigPotBB
	BigPotsBB float64 // net result in those pots
}

// BigPotBB is the pot size counted as a big pot.
const BigPotBB = 50

// Mean returns the average result in big blinds per hand.
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance.
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(0, s.Variance()))
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a hand.
func (s *Statistics) Add(r HandResult) {
	s.Hands++
	s.SumBB += r.NetBB
	s.SumBB2 += r.NetBB * r.NetBB
	s.Values = append(s.Values, r.NetBB)
	s.AllBB += r.NetBB

	if r.WentToShowdown {
		s.ShowdownBB += r.NetBB
		if r.Won {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += r.NetBB
		if r.Won {
			s.NonShowdownWins++
		}
	}

	if r.Position >= 0 && r.Position < len(s.PositionResults) {
		ps := &s.PositionResults[r.Position]
		ps.Hands++
		ps.SumBB += r.NetBB
		ps.SumBB2 += r.NetBB * r.NetBB
	}
	if int(r.StreetReached) < len(s.StreetsReached) {
		s.StreetsReached[r.StreetReached]++
	}

	s.MaxPotBB = math.Max(s.MaxPotBB, r.PotBB)
	if r.PotBB >= BigPotBB {
		s.BigPots++
		s.BigPotsBB += r.NetBB
	}
}

// Merge folds other into s, e.g. results from parallel tables.
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.AllBB += other.AllBB
	for i, ps := range other.PositionResults {
		s.PositionResults[i].Hands += ps.Hands
		s.PositionResults[i].SumBB += ps.SumBB
		s.PositionResults[i].SumBB2 += ps.SumBB2
	}
	for i, n := range other.StreetsReached {
		s.StreetsReached[i] += n
	}
	s.MaxPotBB = math.Max(s.MaxPotBB, other.MaxPotBB)
	s.BigPots += other.BigPots
	s.BigPotsBB += other.BigPotsBB
}

func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the interpolated value at p, from 0 to 1.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PositionMean returns the mean result for a position, 0 being the button.
func (s *Statistics) PositionMean(position int) float64 {
	if position < 0 || position >= len(s.PositionResults) {
		return 0
	}
	ps := s.PositionResults[position]
	if ps.Hands == 0 {
		return 0
	}
	return ps.SumBB / float64(ps.Hands)
}

// IsLedgerBalanced reports whether showdown and non-showdown results add up
// to the total.
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate checks the internal bookkeeping.
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllBB=%.6f, ShowdownBB=%.6f, NonShowdownBB=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", wins, s.Hands)
	}
	positions := 0
	for _, ps := range s.PositionResults {
		positions += ps.Hands
	}
	if positions != s.Hands {
		return fmt.Errorf("position hands total (%d) does not match total hands (%d)", positions, s.Hands)
	}
	return nil
}
