package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-coach/internal/randutil"
	"github.com/lox/holdem-coach/poker"
)

func newTestTable(opts ...TableOption) *Table {
	return NewTable(append([]TableOption{WithRand(randutil.New(42))}, opts...)...)
}

// stackedDeck deals the given cards first, in order: hole cards seat by seat,
// then burn/flop/burn/turn/burn/river.
func stackedDeck(top string) TableOption {
	order := poker.MustParseCards(top)
	return WithDeck(func(*rand.Rand) *poker.Deck {
		used := make(map[poker.Card]bool, len(order))
		for _, c := range order {
			used[c] = true
		}
		var cards []poker.Card
		for _, c := range poker.NewDeck().Cards() {
			if !used[c] {
				cards = append(cards, c)
			}
		}
		for i := len(order) - 1; i >= 0; i-- {
			cards = append(cards, order[i])
		}
		return poker.NewDeckFromCards(cards)
	})
}

func playOut(t *testing.T, table *Table, policy BotPolicy) {
	t.Helper()
	for i := 0; table.Next() != StepDone; i++ {
		require.Less(t, i, 1000, "hand did not terminate")
		if table.Next() == StepAct {
			id := table.CurrentSeatID()
			require.NoError(t, table.Apply(id, policy.Decide(table.View(id), id)))
			continue
		}
		require.NoError(t, table.Advance())
	}
}

func mustApply(t *testing.T, table *Table, seat string, a Action) {
	t.Helper()
	require.NoError(t, table.Apply(seat, a))
}

func TestStartHandThreeSeats(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(3))

	snap := table.Snapshot()
	assert.Equal(t, Preflop, snap.Phase)
	assert.Equal(t, "user", snap.DealerSeat)
	assert.Equal(t, 30, snap.Pot)
	assert.Equal(t, 20, snap.CurrentBet)

	// Blinds are the two seats after the button
	assert.Equal(t, 1000, snap.Seats[0].Chips)
	assert.Equal(t, 10, snap.Seats[1].Bet)
	assert.Equal(t, 990, snap.Seats[1].Chips)
	assert.Equal(t, 20, snap.Seats[2].Bet)
	assert.Equal(t, 980, snap.Seats[2].Chips)

	// Under the gun is dealer+3 mod 3, the button itself
	assert.Equal(t, "user", table.CurrentSeatID())
	assert.Equal(t, StepAct, table.Next())

	for _, s := range snap.Seats {
		assert.Len(t, s.Hand, 2, "seat %s", s.ID)
	}
	assert.Equal(t, 46, table.DeckRemaining())
	assert.Empty(t, snap.Community)

	require.Len(t, snap.Log, 3)
	assert.Equal(t, EventHandStart, snap.Log[0].Kind)
	assert.Equal(t, EventBlind, snap.Log[1].Kind)
	assert.Equal(t, "bot-1", snap.Log[1].SeatID)
	assert.Equal(t, EventBlind, snap.Log[2].Kind)
	assert.Equal(t, "bot-2", snap.Log[2].SeatID)
	assert.Equal(t, "BetaBot posts big blind 20", snap.Log[2].Message)
}

func TestStartHandHeadsUp(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(2))

	user, _ := table.Seat("user")
	bot, _ := table.Seat("bot-1")

	// The button posts the small blind and acts first
	assert.Equal(t, "user", table.DealerSeatID())
	assert.Equal(t, 10, user.Bet)
	assert.Equal(t, 20, bot.Bet)
	assert.Equal(t, "user", table.CurrentSeatID())
	assert.Equal(t, 10, table.ToCall("user"))
}

func TestStartHandInvalidPlayerCount(t *testing.T) {
	t.Parallel()
	table := newTestTable()

	for _, n := range []int{-1, 0, 1, 6} {
		err := table.StartHand(n)
		assert.ErrorIs(t, err, ErrInvalidPlayerCount, "count %d", n)
	}
	assert.Equal(t, 0, table.HandNumber())
}

func TestDealerRotation(t *testing.T) {
	t.Parallel()
	table := newTestTable()

	want := []string{"user", "bot-1", "bot-2", "user"}
	for i, dealer := range want {
		require.NoError(t, table.StartHand(3))
		assert.Equal(t, dealer, table.DealerSeatID(), "hand %d", i+1)
	}

	require.NoError(t, table.StartHand(3))
	assert.Equal(t, "bot-1", table.DealerSeatID())
	assert.Equal(t, "bot-1", table.CurrentSeatID())
}

func TestFoldToOneEndsHand(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(3))

	mustApply(t, table, "user", FoldAction())
	assert.Equal(t, StepAct, table.Next())
	mustApply(t, table, "bot-1", FoldAction())

	assert.Equal(t, GameOver, table.Phase())
	assert.Equal(t, StepDone, table.Next())
	assert.Equal(t, "bot-2", table.WinnerID())
	assert.Equal(t, 0, table.Pot())
	assert.Empty(t, table.Snapshot().Community)

	winner, _ := table.Seat("bot-2")
	assert.Equal(t, 1010, winner.Chips)

	log := table.Log()
	last := log[len(log)-1]
	assert.Equal(t, EventWinner, last.Kind)
	assert.Equal(t, 30, last.Amount)
	assert.Nil(t, last.Rank)

	err := table.Apply("bot-2", CheckAction())
	assert.ErrorIs(t, err, ErrHandOver)
	assert.ErrorIs(t, table.Advance(), ErrNothingToAdvance)
}

func TestTurnRotationSkipsFoldedSeats(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(3))

	mustApply(t, table, "user", FoldAction())
	assert.Equal(t, "bot-1", table.CurrentSeatID())
	mustApply(t, table, "bot-1", CallAction())
	assert.Equal(t, "bot-2", table.CurrentSeatID())

	// The big blind still has the option
	assert.Equal(t, StepAct, table.Next())
	mustApply(t, table, "bot-2", CheckAction())
	assert.Equal(t, StepAdvance, table.Next())
	assert.Equal(t, "", table.CurrentSeatID())

	require.NoError(t, table.Advance())
	assert.Equal(t, Flop, table.Phase())
	assert.Len(t, table.Snapshot().Community, 3)
	assert.Len(t, table.Burned(), 1)
	assert.Equal(t, 0, table.CurrentBet())

	// First live seat after the (folded) button
	assert.Equal(t, "bot-1", table.CurrentSeatID())
	mustApply(t, table, "bot-1", CheckAction())
	mustApply(t, table, "bot-2", RaiseBy(20))

	// Wraps past the folded button
	assert.Equal(t, "bot-1", table.CurrentSeatID())
	mustApply(t, table, "bot-1", CallAction())
	assert.Equal(t, StepAdvance, table.Next())
}

func TestRaiseReopensRound(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(3))

	mustApply(t, table, "user", CallAction())
	mustApply(t, table, "bot-1", CallAction())
	mustApply(t, table, "bot-2", RaiseBy(40))
	assert.Equal(t, 60, table.CurrentBet())

	// Seats that already acted must respond to the raise
	assert.Equal(t, StepAct, table.Next())
	assert.Equal(t, "user", table.CurrentSeatID())
	assert.ErrorIs(t, table.Apply("user", CheckAction()), ErrCannotCheck)

	mustApply(t, table, "user", CallAction())
	assert.Equal(t, StepAct, table.Next())
	mustApply(t, table, "bot-1", CallAction())

	assert.Equal(t, StepAdvance, table.Next())
	assert.Equal(t, 180, table.Pot())
	for _, id := range table.SeatIDs() {
		s, _ := table.Seat(id)
		assert.Equal(t, 940, s.Chips, id)
	}
}

func TestActionErrors(t *testing.T) {
	t.Parallel()

	table := newTestTable()
	assert.ErrorIs(t, table.Apply("user", FoldAction()), ErrHandOver)

	require.NoError(t, table.StartHand(3))
	potBefore := table.Pot()

	tests := []struct {
		name   string
		seat   string
		action Action
		want   error
	}{
		{"out of turn", "bot-1", CallAction(), ErrOutOfTurn},
		{"unknown seat", "nobody", FoldAction(), ErrUnknownSeat},
		{"check facing a bet", "user", CheckAction(), ErrCannotCheck},
		{"zero raise", "user", RaiseBy(0), ErrInvalidRaise},
		{"negative raise", "user", RaiseBy(-20), ErrInvalidRaise},
		{"raise beyond stack", "user", RaiseBy(2000), ErrInsufficientChips},
		{"raise overflowing the bet", "user", RaiseBy(math.MaxInt), ErrInsufficientChips},
		{"no action", "user", Action{}, ErrInvalidAction},
	}
	for _, tt := range tests {
		err := table.Apply(tt.seat, tt.action)
		require.Error(t, err, tt.name)
		assert.ErrorIs(t, err, tt.want, tt.name)

		var actionErr *ActionError
		require.ErrorAs(t, err, &actionErr, tt.name)
		assert.Equal(t, tt.seat, actionErr.SeatID)
		assert.Equal(t, Preflop, actionErr.Phase)
	}

	// Rejected actions leave the table untouched
	assert.Equal(t, potBefore, table.Pot())
	assert.Equal(t, 20, table.CurrentBet())
	user, _ := table.Seat("user")
	assert.Equal(t, 1000, user.Chips)
	assert.Len(t, table.Log(), 3)
	assert.Equal(t, "user", table.CurrentSeatID())

	mustApply(t, table, "user", CallAction())
	mustApply(t, table, "bot-1", CallAction())
	assert.ErrorIs(t, table.Apply("bot-2", CallAction()), ErrNothingToCall)
	assert.ErrorIs(t, table.Advance(), ErrNothingToAdvance)
	mustApply(t, table, "bot-2", CheckAction())

	assert.ErrorIs(t, table.Apply("bot-1", CheckAction()), ErrAwaitingAdvance)
}

func TestAllInRaiseUsesWholeStack(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(2))

	// Small blind has 990 behind and 10 in: raising to 1000 costs exactly 990
	mustApply(t, table, "user", RaiseBy(980))
	user, _ := table.Seat("user")
	assert.Equal(t, 0, user.Chips)
	assert.True(t, user.AllIn())

	mustApply(t, table, "bot-1", CallAction())
	assert.Equal(t, StepAdvance, table.Next())

	// Nobody can bet, so the board runs out
	require.NoError(t, table.Settle())
	assert.Equal(t, GameOver, table.Phase())
	assert.Len(t, table.Snapshot().Community, 5)
	assert.Equal(t, 2000, table.TotalChips())

	winner, _ := table.Seat(table.WinnerID())
	assert.Equal(t, 2000, winner.Chips)
}

func TestCallIsCappedAtStack(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(2))
	mustApply(t, table, "user", FoldAction())

	// Next hand: bot-1 has the button and a short stack
	table.seats[1].Chips = 500
	require.NoError(t, table.StartHand(2))
	total := table.TotalChips()
	require.Equal(t, "bot-1", table.CurrentSeatID())

	mustApply(t, table, "bot-1", CallAction())
	mustApply(t, table, "user", RaiseBy(900))
	assert.Equal(t, 920, table.CurrentBet())

	mustApply(t, table, "bot-1", CallAction())
	bot, _ := table.Seat("bot-1")
	assert.Equal(t, 0, bot.Chips)
	assert.Equal(t, 500, bot.Bet)
	assert.Equal(t, total, table.TotalChips())

	// The covering seat has nobody left to bet against
	assert.Equal(t, StepAdvance, table.Next())
	require.NoError(t, table.Settle())
	assert.Equal(t, total, table.TotalChips())
	assert.Equal(t, 1420, table.Log()[len(table.Log())-1].Amount)
}

func TestShowdownStackedDeck(t *testing.T) {
	t.Parallel()
	table := newTestTable(stackedDeck("As Ks 2c 7d 3h Qs Js Ts 4h 2h 5h 3d"))
	require.NoError(t, table.StartHand(2))

	playOut(t, table, CallingStationPolicy{})

	snap := table.Snapshot()
	assert.Equal(t, "user", snap.WinnerID)
	require.NotNil(t, snap.WinningRank)
	assert.Equal(t, "Royal Flush", snap.WinningRank.String())
	assert.Equal(t, poker.MustParseCards("Qs Js Ts 2h 3d"), snap.Community)
	assert.Equal(t, poker.MustParseCards("3h 4h 5h"), table.Burned())

	var shown []string
	for _, e := range snap.Log {
		if e.Kind == EventShowdown {
			shown = append(shown, e.SeatID)
		}
	}
	assert.Equal(t, []string{"user", "bot-1"}, shown)

	user, _ := table.Seat("user")
	assert.Equal(t, 1020, user.Chips)
}

func TestResolveShowdownWithoutContenders(t *testing.T) {
	t.Parallel()
	board := poker.MustParseCards("2c 7d Qs Js Ts")

	_, ok := ResolveShowdown(nil, board)
	assert.False(t, ok)

	seats := []*Seat{
		{ID: "a", Hand: poker.MustParseCards("As Ks"), Folded: true},
		{ID: "b", Hand: poker.MustParseCards("2h 2d"), Folded: true},
	}
	result, ok := ResolveShowdown(seats, board)
	assert.False(t, ok)
	assert.Equal(t, -1, result.Index)
	assert.Empty(t, result.SeatID)
	assert.Empty(t, result.Contenders)
}

func TestShowdownWithNoLiveSeatEndsWithoutWinner(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(2))
	mustApply(t, table, "user", CallAction())
	mustApply(t, table, "bot-1", CheckAction())
	for table.Next() == StepAdvance {
		require.NoError(t, table.Advance())
		for table.Next() == StepAct {
			mustApply(t, table, table.CurrentSeatID(), CheckAction())
		}
	}
	require.Equal(t, StepShowdown, table.Next())

	for _, s := range table.seats {
		s.Folded = true
	}
	require.NoError(t, table.Advance())

	assert.Equal(t, GameOver, table.Phase())
	assert.Empty(t, table.WinnerID())
	assert.Equal(t, "", table.CurrentSeatID())
	assert.Equal(t, StepDone, table.Next())
}

func TestShowdownTieGoesToEarliestSeat(t *testing.T) {
	t.Parallel()
	table := newTestTable(stackedDeck("2c 3d 2d 3c 4h As Ks Qd 5h Jc 6h Th"))
	require.NoError(t, table.StartHand(2))

	playOut(t, table, CallingStationPolicy{})

	assert.Equal(t, "user", table.WinnerID())
	assert.Equal(t, 2000, table.TotalChips())
}

func TestViewHidesOpponentCards(t *testing.T) {
	t.Parallel()
	table := newTestTable(stackedDeck("As Ks 2c 7d 3h Qs Js Ts 4h 2h 5h 3d"))
	require.NoError(t, table.StartHand(2))

	view := table.View("user")
	assert.Equal(t, "user", view.SeatID)
	assert.Len(t, view.Self().Hand, 2)
	bot, _ := view.Seat("bot-1")
	assert.Empty(t, bot.Hand)

	// Snapshots are copies
	snap := table.Snapshot()
	snap.Seats[0].Hand[0] = poker.NewCard(poker.Two, poker.Clubs)
	again, _ := table.Seat("user")
	assert.Equal(t, poker.NewCard(poker.Ace, poker.Spades), again.Hand[0])

	playOut(t, table, CallingStationPolicy{})
	bot, _ = table.View("user").Seat("bot-1")
	assert.Len(t, bot.Hand, 2)
}

func TestHandResetCarriesChips(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(2))
	mustApply(t, table, "user", FoldAction())

	require.NoError(t, table.StartHand(2))
	user, _ := table.Seat("user")
	bot, _ := table.Seat("bot-1")
	assert.Equal(t, "bot-1", table.DealerSeatID())
	assert.Equal(t, 970, user.Chips)
	assert.Equal(t, 1000, bot.Chips)
	assert.Equal(t, "bot-1", table.CurrentSeatID())
	assert.Len(t, table.Log(), 3)
	assert.Empty(t, table.Burned())
	assert.Equal(t, 2, table.HandNumber())

	mustApply(t, table, "bot-1", FoldAction())

	// A busted seat is topped back up
	table.seats[0].Chips = 0
	require.NoError(t, table.StartHand(2))
	user, _ = table.Seat("user")
	assert.Equal(t, 990, user.Chips)
	assert.Equal(t, "user", table.DealerSeatID())

	// A new player count resets everything
	require.NoError(t, table.StartHand(3))
	assert.Equal(t, "user", table.DealerSeatID())
	assert.Equal(t, 3000, table.TotalChips())
	user, _ = table.Seat("user")
	assert.Equal(t, 1000, user.Chips)
}

func TestAbandonedHandIsVoid(t *testing.T) {
	t.Parallel()
	table := newTestTable()
	require.NoError(t, table.StartHand(2))
	mustApply(t, table, "user", CallAction())

	require.NoError(t, table.StartHand(2))
	assert.Equal(t, 2000, table.TotalChips())
	assert.Equal(t, 30, table.Pot())
	assert.Equal(t, Preflop, table.Phase())
}

func TestDeckIntegrity(t *testing.T) {
	t.Parallel()

	for n := MinPlayers; n <= MaxPlayers; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			t.Parallel()
			table := NewTable(WithRand(randutil.New(int64(n))))
			require.NoError(t, table.StartHand(n))
			assertAllCards(t, table)

			playOut(t, table, CallingStationPolicy{})
			assert.Len(t, table.Snapshot().Community, 5)
			assert.Len(t, table.Burned(), 3)
			assertAllCards(t, table)
		})
	}
}

func assertAllCards(t *testing.T, table *Table) {
	t.Helper()
	cards := table.deck.Cards()
	cards = append(cards, table.community...)
	cards = append(cards, table.burned...)
	for _, s := range table.seats {
		cards = append(cards, s.Hand...)
	}
	require.Len(t, cards, 52)
	seen := make(map[poker.Card]bool, 52)
	for _, c := range cards {
		require.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
}

func TestChipConservation(t *testing.T) {
	t.Parallel()

	for n := MinPlayers; n <= MaxPlayers; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			t.Parallel()
			rngs := randutil.Split(int64(100+n), 2)
			table := NewTable(WithRand(rngs[0]))
			policy := NewWeightedRandomPolicy(rngs[1])

			for hand := 0; hand < 200; hand++ {
				require.NoError(t, table.StartHand(n))
				total := table.TotalChips()
				lastPot := table.Pot()

				for step := 0; table.Next() != StepDone; step++ {
					require.Less(t, step, 1000)
					lastPot = table.Pot()
					if table.Next() == StepAct {
						id := table.CurrentSeatID()
						require.NoError(t, table.Apply(id, policy.Decide(table.View(id), id)))
					} else {
						require.NoError(t, table.Advance())
					}
					require.Equal(t, total, table.TotalChips(), "hand %d step %d", hand, step)
				}

				rec, err := table.Record(fmt.Sprintf("h%d", hand), time.Unix(0, 0))
				require.NoError(t, err)
				assert.Equal(t, lastPot, rec.Pot, "winner takes the pre-award pot")
				winner, ok := rec.Winner()
				require.True(t, ok)
				assert.Equal(t, rec.Pot, winner.ChipsAfter-winner.ChipsBefore+contribution(rec, winner.ID))

				sum := 0
				for _, s := range rec.Seats {
					sum += s.Delta()
				}
				assert.Zero(t, sum)

				for _, e := range rec.Log {
					assert.NoError(t, e.Validate())
				}
			}
		})
	}
}

// contribution is what a seat put into the pot, read back from the log
func contribution(rec HandRecord, seatID string) int {
	paid := 0
	committed := 0
	phase := Preflop
	for _, e := range rec.Log {
		if e.Phase != phase {
			paid += committed
			committed = 0
			phase = e.Phase
		}
		if e.SeatID != seatID {
			continue
		}
		switch {
		case e.Kind == EventBlind, e.Kind == EventAction && e.Action == Call:
			committed += e.Amount
		case e.Kind == EventAction && e.Action == Raise:
			committed = e.Amount
		}
	}
	return paid + committed
}

func TestRecord(t *testing.T) {
	t.Parallel()
	table := newTestTable()

	_, err := table.Record("x", time.Now())
	assert.ErrorIs(t, err, ErrNoHand)

	require.NoError(t, table.StartHand(3))
	_, err = table.Record("x", time.Now())
	assert.ErrorIs(t, err, ErrHandInProgress)

	mustApply(t, table, "user", FoldAction())
	mustApply(t, table, "bot-1", FoldAction())

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec, err := table.Record("hand-1", ts)
	require.NoError(t, err)
	assert.Equal(t, "hand-1", rec.ID)
	assert.Equal(t, ts, rec.Timestamp)
	assert.Equal(t, "bot-2", rec.WinnerID)
	assert.Equal(t, 30, rec.Pot)
	assert.False(t, rec.Showdown)
	assert.Len(t, rec.Seats, 3)
	assert.Equal(t, -10, rec.Seats[1].Delta())
	assert.Equal(t, 10, rec.Seats[2].Delta())
	assert.Len(t, rec.Seats[0].Hand, 2)
	assert.True(t, errors.Is(table.Apply("user", FoldAction()), ErrHandOver))
}
