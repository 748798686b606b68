package game

import "math/rand/v2"

// BotPolicy decides the action of a bot seat. The table only ever shows a
// policy the View of its own seat.
type BotPolicy interface {
	Decide(view View, seatID string) Action
}

// PolicyFunc adapts a function to BotPolicy.
type PolicyFunc func(view View, seatID string) Action

func (f PolicyFunc) Decide(view View, seatID string) Action {
	return f(view, seatID)
}

// WeightedRandomPolicy checks when it can. Facing a bet it folds with
// FoldChance, raises by RaiseSize with RaiseChance while the table bet is
// below RaiseCeiling, and calls otherwise.
type WeightedRandomPolicy struct {
	Rand         *rand.Rand
	FoldChance   float64
	RaiseChance  float64
	RaiseCeiling int
	// RaiseSize defaults to twice the big blind when zero
	RaiseSize int
}

// NewWeightedRandomPolicy returns the default bot behaviour.
func NewWeightedRandomPolicy(rng *rand.Rand) *WeightedRandomPolicy {
	return &WeightedRandomPolicy{
		Rand:         rng,
		FoldChance:   0.15,
		RaiseChance:  0.15,
		RaiseCeiling: 200,
	}
}

func (p *WeightedRandomPolicy) Decide(view View, seatID string) Action {
	self, ok := view.Seat(seatID)
	if !ok {
		return FoldAction()
	}
	toCall := view.CurrentBet - self.Bet
	if toCall <= 0 {
		return CheckAction()
	}

	roll := p.Rand.Float64()
	switch {
	case roll < p.FoldChance:
		return FoldAction()
	case roll >= 1-p.RaiseChance && view.CurrentBet < p.RaiseCeiling:
		size := p.RaiseSize
		if size <= 0 {
			size = 2 * view.BigBlind
		}
		if view.CurrentBet+size-self.Bet <= self.Chips {
			return RaiseBy(size)
		}
	}
	return CallAction()
}

// CallingStationPolicy never folds and never raises.
type CallingStationPolicy struct{}

func (CallingStationPolicy) Decide(view View, seatID string) Action {
	if view.ToCall(seatID) > 0 {
		return CallAction()
	}
	return CheckAction()
}

// PlayBot asks policy for the current seat's action and applies it. A
// rejected action is replaced by a check or call, and failing that a fold, so
// a misbehaving policy can never stall the hand. It returns the action that
// was applied.
func PlayBot(t *Table, policy BotPolicy) (Action, error) {
	seatID := t.CurrentSeatID()
	if seatID == "" {
		return Action{}, ErrNothingToAdvance
	}
	a := policy.Decide(t.View(seatID), seatID)
	err := t.Apply(seatID, a)
	if err == nil {
		return a, nil
	}

	fallback := CheckAction()
	if t.ToCall(seatID) > 0 {
		fallback = CallAction()
	}
	if t.Apply(seatID, fallback) == nil {
		return fallback, err
	}
	if ferr := t.Apply(seatID, FoldAction()); ferr != nil {
		return Action{}, ferr
	}
	return FoldAction(), err
}
