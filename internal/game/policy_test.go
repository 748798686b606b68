package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-coach/internal/randutil"
)

func facingBet(currentBet, seatBet, chips int) View {
	return View{
		Snapshot: Snapshot{
			CurrentBet: currentBet,
			BigBlind:   20,
			Seats: []SeatView{
				{Seat: Seat{ID: "bot-1", Chips: chips, Bet: seatBet, IsBot: true}},
			},
		},
		SeatID: "bot-1",
	}
}

func TestWeightedRandomPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy WeightedRandomPolicy
		view   View
		want   Action
	}{
		{
			name:   "checks when nothing to call",
			policy: WeightedRandomPolicy{FoldChance: 1},
			view:   facingBet(20, 20, 500),
			want:   CheckAction(),
		},
		{
			name:   "folds facing a bet",
			policy: WeightedRandomPolicy{FoldChance: 1},
			view:   facingBet(20, 0, 500),
			want:   FoldAction(),
		},
		{
			name:   "raises twice the big blind under the ceiling",
			policy: WeightedRandomPolicy{RaiseChance: 1, RaiseCeiling: 200},
			view:   facingBet(20, 0, 500),
			want:   RaiseBy(40),
		},
		{
			name:   "custom raise size",
			policy: WeightedRandomPolicy{RaiseChance: 1, RaiseCeiling: 200, RaiseSize: 100},
			view:   facingBet(20, 0, 500),
			want:   RaiseBy(100),
		},
		{
			name:   "calls at the ceiling",
			policy: WeightedRandomPolicy{RaiseChance: 1, RaiseCeiling: 200},
			view:   facingBet(200, 0, 500),
			want:   CallAction(),
		},
		{
			name:   "calls when the raise is unaffordable",
			policy: WeightedRandomPolicy{RaiseChance: 1, RaiseCeiling: 200},
			view:   facingBet(20, 0, 50),
			want:   CallAction(),
		},
		{
			name:   "calls otherwise",
			policy: WeightedRandomPolicy{},
			view:   facingBet(20, 0, 500),
			want:   CallAction(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := tt.policy
			p.Rand = randutil.New(1)
			assert.Equal(t, tt.want, p.Decide(tt.view, "bot-1"))
		})
	}
}

func TestWeightedRandomPolicyDistribution(t *testing.T) {
	t.Parallel()

	p := NewWeightedRandomPolicy(randutil.New(5))
	counts := map[ActionKind]int{}
	view := facingBet(20, 0, 1000)
	for range 10000 {
		counts[p.Decide(view, "bot-1").Kind]++
	}

	assert.InDelta(t, 1500, counts[Fold], 200)
	assert.InDelta(t, 1500, counts[Raise], 200)
	assert.InDelta(t, 7000, counts[Call], 300)
	assert.Zero(t, counts[Check])
}

func TestCallingStationPolicy(t *testing.T) {
	t.Parallel()

	var p CallingStationPolicy
	assert.Equal(t, CallAction(), p.Decide(facingBet(20, 0, 500), "bot-1"))
	assert.Equal(t, CheckAction(), p.Decide(facingBet(20, 20, 500), "bot-1"))
}

func TestPolicyFunc(t *testing.T) {
	t.Parallel()

	var calls int
	p := PolicyFunc(func(view View, seatID string) Action {
		calls++
		return FoldAction()
	})

	table := newTestTable()
	require.NoError(t, table.StartHand(2))
	id := table.CurrentSeatID()
	require.NoError(t, table.Apply(id, p.Decide(table.View(id), id)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, StepDone, table.Next())
}

func TestPlayBot(t *testing.T) {
	t.Parallel()

	table := newTestTable(WithHumanSeat("", ""))
	require.NoError(t, table.StartHand(3))
	require.Equal(t, "bot-0", table.CurrentSeatID())

	a, err := PlayBot(table, CallingStationPolicy{})
	require.NoError(t, err)
	assert.Equal(t, CallAction(), a)

	// checking into a bet is rejected and replaced by a call
	stubborn := PolicyFunc(func(View, string) Action { return CheckAction() })
	a, err = PlayBot(table, stubborn)
	assert.ErrorIs(t, err, ErrCannotCheck)
	assert.Equal(t, CallAction(), a)
	assert.Equal(t, "bot-2", table.CurrentSeatID())

	// an unaffordable raise falls back to a check for the big blind
	greedy := PolicyFunc(func(View, string) Action { return RaiseBy(1_000_000) })
	a, err = PlayBot(table, greedy)
	assert.ErrorIs(t, err, ErrInsufficientChips)
	assert.Equal(t, CheckAction(), a)
	assert.Equal(t, StepAdvance, table.Next())

	_, err = PlayBot(table, CallingStationPolicy{})
	assert.ErrorIs(t, err, ErrNothingToAdvance)
}
