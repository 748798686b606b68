// Package game implements the Texas Hold'em table for a single-table training game.
//
// The main type is Table, which owns the deck, the seats ring, the pot and the
// append-only action log of the current hand. It is a synchronous state machine:
// every call either applies a whole transition or returns an error and leaves the
// table untouched.
//
// # Basic Usage
//
//	t := game.NewTable(game.WithRand(randutil.New(42)))
//	if err := t.StartHand(3); err != nil {
//	    return err
//	}
//	for t.Next() != game.StepDone {
//	    switch t.Next() {
//	    case game.StepAct:
//	        seat := t.CurrentSeatID()
//	        _ = t.Apply(seat, policy.Decide(t.View(seat), seat))
//	    default:
//	        _ = t.Advance()
//	    }
//	}
//	rec, _ := t.Record(id, time.Now())
//
// # Deferred transitions
//
// Phase advances and showdown resolution are never applied implicitly by Apply.
// The table reports them through Next (StepAdvance, StepShowdown) and the host
// decides when to run Advance. Hosts that animate the table delay the call;
// headless hosts call Settle. A hand that is reduced to one live seat ends
// inside Apply.
//
// # Chips
//
// Calls are capped at the caller's stack (all-in). A raise whose cost exceeds
// the stack is rejected with ErrInsufficientChips. There are no side pots: the
// pot goes to the single best hand, ties resolving to the earliest seat.
package game
