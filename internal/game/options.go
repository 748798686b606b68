package game

import (
	"math/rand/v2"

	"github.com/lox/holdem-coach/poker"
)

const (
	DefaultSmallBlind    = 10
	DefaultBigBlind      = 20
	DefaultStartingStack = 1000
	HumanSeatID          = "user"

	MinPlayers = 2
	MaxPlayers = 5
)

// DefaultBotNames are handed out to bot seats in seat order.
var DefaultBotNames = []string{"AlphaBot", "BetaBot", "GammaBot", "DeltaBot", "EpsilonBot"}

// TableOption configures a Table during creation.
type TableOption func(*tableConfig)

type tableConfig struct {
	smallBlind    int
	bigBlind      int
	startingStack int
	rng           *rand.Rand
	botNames      []string
	humanID       string
	humanName     string
	deckFactory   func(*rand.Rand) *poker.Deck
}

func defaultTableConfig() tableConfig {
	return tableConfig{
		smallBlind:    DefaultSmallBlind,
		bigBlind:      DefaultBigBlind,
		startingStack: DefaultStartingStack,
		botNames:      DefaultBotNames,
		humanID:       HumanSeatID,
		humanName:     "You",
		deckFactory:   poker.NewShuffledDeck,
	}
}

// WithBlinds sets the small and big blind.
// Default is 10/20.
func WithBlinds(small, big int) TableOption {
	return func(c *tableConfig) {
		c.smallBlind = small
		c.bigBlind = big
	}
}

// WithStartingStack sets the stack every seat receives when the table is
// (re)initialised and when a busted seat is topped up.
// Default is 1000.
func WithStartingStack(chips int) TableOption {
	return func(c *tableConfig) {
		c.startingStack = chips
	}
}

// WithRand sets the random source used for shuffling. Tables without one get a
// time-seeded source.
func WithRand(rng *rand.Rand) TableOption {
	return func(c *tableConfig) {
		c.rng = rng
	}
}

// WithSeatNames sets the display names of the bot seats.
func WithSeatNames(names ...string) TableOption {
	return func(c *tableConfig) {
		if len(names) > 0 {
			c.botNames = names
		}
	}
}

// WithHumanSeat sets the id and name of seat 0, the human player. An empty id
// makes every seat a bot.
func WithHumanSeat(id, name string) TableOption {
	return func(c *tableConfig) {
		c.humanID = id
		c.humanName = name
	}
}

// WithDeck replaces the shuffled deck with one built by f for every hand.
// Tests use it to stack the deck.
func WithDeck(f func(*rand.Rand) *poker.Deck) TableOption {
	return func(c *tableConfig) {
		c.deckFactory = f
	}
}
