package game

import (
	"errors"
	"fmt"

	"github.com/lox/holdem-coach/poker"
)

// EventKind tags a LogEntry. Each kind has a fixed set of required fields,
// checked by LogEntry.Validate.
type EventKind uint8

const (
	EventHandStart EventKind = iota
	EventBlind
	EventAction
	EventReveal
	EventShowdown
	EventWinner
)

var eventNames = [...]string{
	EventHandStart: "hand_start",
	EventBlind:     "blind",
	EventAction:    "action",
	EventReveal:    "reveal",
	EventShowdown:  "showdown",
	EventWinner:    "winner",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	for i, name := range eventNames {
		if name == string(b) {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", b)
}

// LogEntry is one line of the hand's action log. Entries are never modified
// after they are appended.
type LogEntry struct {
	Kind    EventKind       `json:"kind"`
	Phase   Phase           `json:"phase"`
	SeatID  string          `json:"seat_id,omitempty"`
	Action  ActionKind      `json:"action,omitempty"`
	Amount  int             `json:"amount,omitempty"`
	Cards   []poker.Card    `json:"cards,omitempty"`
	Rank    *poker.HandRank `json:"rank,omitempty"`
	Message string          `json:"message"`
}

// Validate checks the payload required by the entry's kind
func (e LogEntry) Validate() error {
	switch e.Kind {
	case EventHandStart:
		return nil
	case EventBlind:
		if e.SeatID == "" {
			return errors.New("blind entry requires a seat")
		}
	case EventAction:
		if e.SeatID == "" || e.Action == NoAction {
			return errors.New("action entry requires a seat and an action")
		}
	case EventReveal:
		if len(e.Cards) == 0 {
			return errors.New("reveal entry requires cards")
		}
	case EventShowdown:
		if e.SeatID == "" || len(e.Cards) == 0 || e.Rank == nil {
			return errors.New("showdown entry requires a seat, cards and a rank")
		}
	case EventWinner:
		if e.SeatID == "" {
			return errors.New("winner entry requires a seat")
		}
	default:
		return fmt.Errorf("unknown event kind %d", e.Kind)
	}
	return nil
}

func (e LogEntry) String() string {
	return e.Message
}

func handStartEntry(hand int, dealer *Seat) LogEntry {
	return LogEntry{
		Kind:    EventHandStart,
		Phase:   Preflop,
		SeatID:  dealer.ID,
		Message: fmt.Sprintf("Hand #%d started, %s has the button", hand, dealer.Name),
	}
}

func blindEntry(s *Seat, amount int, big bool) LogEntry {
	which := "small"
	if big {
		which = "big"
	}
	return LogEntry{
		Kind:    EventBlind,
		Phase:   Preflop,
		SeatID:  s.ID,
		Amount:  amount,
		Message: fmt.Sprintf("%s posts %s blind %d", s.Name, which, amount),
	}
}

func actionEntry(phase Phase, s *Seat, kind ActionKind, amount int) LogEntry {
	e := LogEntry{Kind: EventAction, Phase: phase, SeatID: s.ID, Action: kind, Amount: amount}
	switch kind {
	case Fold:
		e.Message = s.Name + " folds"
	case Check:
		e.Message = s.Name + " checks"
	case Call:
		e.Message = fmt.Sprintf("%s calls %d", s.Name, amount)
	case Raise:
		e.Message = fmt.Sprintf("%s raises to %d", s.Name, amount)
	}
	if kind != Fold && kind != Check && s.Chips == 0 {
		e.Message += " (all-in)"
	}
	return e
}

func revealEntry(phase Phase, cards []poker.Card) LogEntry {
	return LogEntry{
		Kind:    EventReveal,
		Phase:   phase,
		Cards:   append([]poker.Card(nil), cards...),
		Message: fmt.Sprintf("%s: %s", phase.Title(), poker.FormatCards(cards)),
	}
}

func showdownEntry(s *Seat, rank poker.HandRank) LogEntry {
	return LogEntry{
		Kind:    EventShowdown,
		Phase:   Showdown,
		SeatID:  s.ID,
		Cards:   append([]poker.Card(nil), s.Hand...),
		Rank:    &rank,
		Message: fmt.Sprintf("%s shows %s (%s)", s.Name, poker.FormatCards(s.Hand), rank.Describe()),
	}
}

func winnerEntry(phase Phase, s *Seat, pot int, rank *poker.HandRank) LogEntry {
	e := LogEntry{Kind: EventWinner, Phase: phase, SeatID: s.ID, Amount: pot, Rank: rank}
	if rank != nil {
		e.Message = fmt.Sprintf("%s wins %d with %s", s.Name, pot, rank.Describe())
	} else {
		e.Message = fmt.Sprintf("%s wins %d, everyone else folded", s.Name, pot)
	}
	return e
}
