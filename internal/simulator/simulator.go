// Package simulator plays all-bot tables headlessly and checks the table's
// invariants after every hand.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/randutil"
	"github.com/lox/holdem-coach/internal/statistics"
	"github.com/lox/holdem-coach/poker"
	"golang.org/x/sync/errgroup"
)

// ErrInvariant is returned when a hand breaks chip conservation or deck
// integrity.
var ErrInvariant = errors.New("table invariant violated")

// Config holds configuration for running simulations.
type Config struct {
	Hands   int // per table
	Players int
	Tables  int
	Seed    int64
	// Policy builds the policy for one table from that table's generator.
	// Defaults to the weighted random policy.
	Policy       func(rng *rand.Rand) game.BotPolicy
	TableOptions []game.TableOption
	Logger       *log.Logger
}

// Result is the outcome of a simulation.
type Result struct {
	// Stats tracks bot-0 across every table.
	Stats     *statistics.Statistics
	Hands     int
	Showdowns int
	Wins      map[string]int
}

// Simulator runs poker hand simulations.
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration.
func New(config Config) *Simulator {
	if config.Tables < 1 {
		config.Tables = 1
	}
	if config.Players == 0 {
		config.Players = 3
	}
	if config.Policy == nil {
		config.Policy = func(rng *rand.Rand) game.BotPolicy { return game.NewWeightedRandomPolicy(rng) }
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays every table in parallel and merges the results.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	rngs := randutil.Split(s.config.Seed, s.config.Tables)
	results := make([]*Result, s.config.Tables)

	g, ctx := errgroup.WithContext(ctx)
	for i := range s.config.Tables {
		g.Go(func() error {
			r, err := s.runTable(ctx, i, rngs[i])
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &Result{Stats: &statistics.Statistics{}, Wins: make(map[string]int)}
	for _, r := range results {
		total.Stats.Merge(r.Stats)
		total.Hands += r.Hands
		total.Showdowns += r.Showdowns
		for id, n := range r.Wins {
			total.Wins[id] += n
		}
	}
	if total.Hands > 0 {
		if err := total.Stats.Validate(); err != nil {
			return nil, fmt.Errorf("statistics validation failed: %w", err)
		}
	}
	return total, nil
}

func (s *Simulator) runTable(ctx context.Context, index int, rng *rand.Rand) (*Result, error) {
	logger := s.config.Logger.WithPrefix("sim").With("table", index)
	opts := append([]game.TableOption{game.WithRand(rng), game.WithHumanSeat("", "")}, s.config.TableOptions...)
	table := game.NewTable(opts...)
	policy := s.config.Policy(rng)

	r := &Result{Stats: &statistics.Statistics{}, Wins: make(map[string]int)}
	for hand := range s.config.Hands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := PlayHand(table, s.config.Players, policy)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}
		res.Seed = s.config.Seed
		r.Stats.Add(res)
		r.Hands++
		if res.WentToShowdown {
			r.Showdowns++
		}
		r.Wins[table.WinnerID()]++
		logger.Debug("Hand complete", "hand", table.HandNumber(), "winner", table.WinnerID(), "pot_bb", res.PotBB)
	}
	return r, nil
}

// PlayHand deals and plays one hand to completion with every seat driven by
// policy, checking chip conservation and deck integrity throughout. The
// result describes the hand for the first seat.
func PlayHand(table *game.Table, players int, policy game.BotPolicy) (statistics.HandResult, error) {
	if err := table.StartHand(players); err != nil {
		return statistics.HandResult{}, err
	}
	chips := table.TotalChips()
	ids := table.SeatIDs()
	tracked := ids[0]

	for steps := 0; table.Next() != game.StepDone; steps++ {
		if steps > 1000 {
			return statistics.HandResult{}, errors.New("hand did not terminate")
		}
		var err error
		if table.Next() == game.StepAct {
			_, err = game.PlayBot(table, policy)
			if errors.Is(err, game.ErrNothingToAdvance) {
				return statistics.HandResult{}, err
			}
		} else {
			err = table.Advance()
			if err != nil {
				return statistics.HandResult{}, err
			}
		}
		if err := CheckInvariants(table, chips); err != nil {
			return statistics.HandResult{}, err
		}
	}

	rec, err := table.Record("", time.Time{})
	if err != nil {
		return statistics.HandResult{}, err
	}
	bb := float64(table.Snapshot().BigBlind)
	street := game.Preflop
	for _, e := range rec.Log {
		if e.Kind == game.EventReveal {
			street = e.Phase
		}
	}
	dealer := indexOf(ids, table.DealerSeatID())
	seat, _ := rec.Seat(tracked)

	return statistics.HandResult{
		NetBB:          float64(seat.Delta()) / bb,
		HandNumber:     rec.HandNumber,
		Position:       (len(ids) - dealer) % len(ids),
		WentToShowdown: rec.Showdown,
		Won:            rec.WinnerID == tracked,
		PotBB:          float64(rec.Pot) / bb,
		StreetReached:  street,
	}, nil
}

// CheckInvariants verifies that the table still holds chips chips and that
// every card is accounted for exactly once.
func CheckInvariants(table *game.Table, chips int) error {
	if got := table.TotalChips(); got != chips {
		return fmt.Errorf("%w: %d chips at the table, expected %d", ErrInvariant, got, chips)
	}

	snap := table.Snapshot()
	seen := make(map[poker.Card]bool, 52)
	count := func(cards []poker.Card) error {
		for _, c := range cards {
			if seen[c] {
				return fmt.Errorf("%w: %s dealt twice", ErrInvariant, c)
			}
			seen[c] = true
		}
		return nil
	}
	for _, seat := range snap.Seats {
		if err := count(seat.Hand); err != nil {
			return err
		}
	}
	if err := count(snap.Community); err != nil {
		return err
	}
	if err := count(table.Burned()); err != nil {
		return err
	}
	if total := len(seen) + table.DeckRemaining(); total != 52 {
		return fmt.Errorf("%w: %d cards accounted for", ErrInvariant, total)
	}
	return nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return 0
}

// Summary renders a result for the terminal.
func Summary(r *Result) string {
	var b strings.Builder
	s := r.Stats
	low, high := s.ConfidenceInterval95()

	fmt.Fprintf(&b, "\n=== RESULTS (bot-0) ===\n")
	fmt.Fprintf(&b, "Hands played: %d, showdowns: %d\n", r.Hands, r.Showdowns)
	fmt.Fprintf(&b, "Mean: %.4f bb/hand\n", s.Mean())
	fmt.Fprintf(&b, "Median: %.4f bb/hand\n", s.Median())
	fmt.Fprintf(&b, "Std Dev: %.4f bb\n", s.StdDev())
	fmt.Fprintf(&b, "95%% CI: [%.4f, %.4f] bb/hand\n", low, high)
	fmt.Fprintf(&b, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		s.Percentile(0.05), s.Percentile(0.25), s.Percentile(0.75), s.Percentile(0.95))

	fmt.Fprintf(&b, "\n=== PROFIT SOURCE ===\n")
	fmt.Fprintf(&b, "Won %d at showdown, %d without\n", s.ShowdownWins, s.NonShowdownWins)
	if s.Hands > 0 {
		fmt.Fprintf(&b, "Showdown: %.2f bb/hand, non-showdown: %.2f bb/hand\n",
			s.ShowdownBB/float64(s.Hands), s.NonShowdownBB/float64(s.Hands))
	}
	fmt.Fprintf(&b, "Largest pot: %.1f bb, big pots: %d\n", s.MaxPotBB, s.BigPots)

	fmt.Fprintf(&b, "\n=== POSITION ===\n")
	for pos, ps := range s.PositionResults {
		if ps.Hands > 0 {
			fmt.Fprintf(&b, "Button+%d: %d hands, %.3f bb/hand\n", pos, ps.Hands, s.PositionMean(pos))
		}
	}

	fmt.Fprintf(&b, "\n=== WINNERS ===\n")
	for i := range game.MaxPlayers {
		id := fmt.Sprintf("bot-%d", i)
		if n, ok := r.Wins[id]; ok {
			fmt.Fprintf(&b, "%s: %d\n", id, n)
		}
	}
	return b.String()
}
