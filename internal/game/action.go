package game

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind is the closed set of player decisions. NoAction marks a seat that
// has not acted in the current betting round.
type ActionKind uint8

const (
	NoAction ActionKind = iota
	Fold
	Check
	Call
	Raise
)

var actionNames = [...]string{
	NoAction: "none",
	Fold:     "fold",
	Check:    "check",
	Call:     "call",
	Raise:    "raise",
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "unknown"
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(b []byte) error {
	parsed, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseActionKind accepts the lowercase names plus the usual single-letter
// shortcuts (f, k/x, c, r)
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoAction, nil
	case "fold", "f":
		return Fold, nil
	case "check", "k", "x":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "raise", "r", "bet":
		return Raise, nil
	default:
		return NoAction, fmt.Errorf("unknown action %q", s)
	}
}

// Action is a player decision. Amount is only meaningful for Raise, where it is
// the increment on top of the current table bet.
type Action struct {
	Kind   ActionKind `json:"action"`
	Amount int        `json:"amount,omitempty"`
}

func FoldAction() Action  { return Action{Kind: Fold} }
func CheckAction() Action { return Action{Kind: Check} }
func CallAction() Action  { return Action{Kind: Call} }

// RaiseBy raises the table bet by amount
func RaiseBy(amount int) Action { return Action{Kind: Raise, Amount: amount} }

func (a Action) String() string {
	if a.Kind == Raise {
		return "raise " + strconv.Itoa(a.Amount)
	}
	return a.Kind.String()
}

// ParseAction parses "fold", "call", "raise 40" and the shortcuts understood by ParseActionKind
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}
	kind, err := ParseActionKind(fields[0])
	if err != nil {
		return Action{}, err
	}
	if kind == NoAction {
		return Action{}, fmt.Errorf("unknown action %q", s)
	}
	a := Action{Kind: kind}
	if kind == Raise {
		if len(fields) != 2 {
			return Action{}, fmt.Errorf("raise requires an amount")
		}
		a.Amount, err = strconv.Atoi(fields[1])
		if err != nil {
			return Action{}, fmt.Errorf("invalid raise amount %q: %w", fields[1], err)
		}
	} else if len(fields) > 1 {
		return Action{}, fmt.Errorf("%s takes no amount", kind)
	}
	return a, nil
}
