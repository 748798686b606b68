package session

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/store"
)

const (
	// AssessmentHands is how many hands an assessment covers.
	AssessmentHands = 5
	// DefaultHistoryLimit bounds the stored hand history.
	DefaultHistoryLimit = 200
)

// Timing holds the pauses between automatic transitions.
type Timing struct {
	BotDelayMin   time.Duration
	BotDelayMax   time.Duration
	PhaseDelay    time.Duration
	ShowdownDelay time.Duration
}

// DefaultTiming gives bots one to two seconds to think and pauses a second
// before each street and the showdown.
func DefaultTiming() Timing {
	return Timing{
		BotDelayMin:   time.Second,
		BotDelayMax:   2 * time.Second,
		PhaseDelay:    time.Second,
		ShowdownDelay: time.Second,
	}
}

// Option configures a Session.
type Option func(*Session)

func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithStore persists the profile and hand history after every hand.
func WithStore(st store.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithCoach enables advice, assessments and hand analysis.
func WithCoach(c Advisor) Option {
	return func(s *Session) { s.coach = c }
}

// WithPolicy sets the policy every bot seat plays with.
func WithPolicy(p game.BotPolicy) Option {
	return func(s *Session) { s.policy = p }
}

// WithRand sets the random source for the deck, the bots and their delays.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

func WithTiming(t Timing) Option {
	return func(s *Session) { s.timing = t }
}

func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.historyLimit = n }
}

// WithTableOptions passes options through to the table, e.g. blinds.
func WithTableOptions(opts ...game.TableOption) Option {
	return func(s *Session) { s.tableOpts = append(s.tableOpts, opts...) }
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
