package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPlayerCount = errors.New("player count must be between 2 and 5")
	ErrHandOver           = errors.New("hand is over")
	ErrHandInProgress     = errors.New("hand is still in progress")
	ErrNoHand             = errors.New("no hand has been started")
	ErrAwaitingAdvance    = errors.New("betting round is complete, waiting for the next street")
	ErrNothingToAdvance   = errors.New("no deferred transition is due")
	ErrUnknownSeat        = errors.New("unknown seat")
	ErrOutOfTurn          = errors.New("not this seat's turn")
	ErrInvalidAction      = errors.New("invalid action")
	ErrCannotCheck        = errors.New("cannot check facing a bet")
	ErrNothingToCall      = errors.New("nothing to call")
	ErrInvalidRaise       = errors.New("raise amount must be positive")
	ErrInsufficientChips  = errors.New("insufficient chips")
)

// ActionError is returned by Table.Apply when an action is rejected.
// The table is left unchanged.
type ActionError struct {
	SeatID string
	Action Action
	Phase  Phase
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s cannot %s during %s: %v", e.SeatID, e.Action, e.Phase, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
