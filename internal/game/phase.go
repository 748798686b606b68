package game

import (
	"fmt"
	"strings"
)

// Phase is the stage of a hand. Phases only ever move forward within a hand.
type Phase uint8

const (
	Preflop Phase = iota
	Flop
	Turn
	River
	Showdown
	GameOver
)

var phaseNames = [...]string{
	Preflop:  "preflop",
	Flop:     "flop",
	Turn:     "turn",
	River:    "river",
	Showdown: "showdown",
	GameOver: "game_over",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", p)
}

// Title returns the phase name for display, e.g. "Game Over"
func (p Phase) Title() string {
	switch p {
	case GameOver:
		return "Game Over"
	default:
		s := p.String()
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// CommunityCards is the number of board cards visible in the phase
func (p Phase) CommunityCards() int {
	switch p {
	case Preflop:
		return 0
	case Flop:
		return 3
	case Turn:
		return 4
	default:
		return 5
	}
}

// IsBetting reports whether seats act during the phase
func (p Phase) IsBetting() bool {
	return p <= River
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Step tells the host what the table is waiting for.
type Step uint8

const (
	// StepAct means the current seat must act
	StepAct Step = iota
	// StepAdvance means the betting round is complete and the next street is due
	StepAdvance
	// StepShowdown means the hand reached showdown and must be resolved
	StepShowdown
	// StepDone means the hand is over
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepAct:
		return "act"
	case StepAdvance:
		return "advance"
	case StepShowdown:
		return "showdown"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
