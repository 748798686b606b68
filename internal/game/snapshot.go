package game

import "github.com/lox/holdem-coach/poker"

// SeatView is a read-only copy of a seat. Hand is empty when the cards are
// hidden from the viewer.
type SeatView struct {
	Seat
	AllIn    bool `json:"all_in"`
	IsDealer bool `json:"is_dealer"`
	IsTurn   bool `json:"is_turn"`
}

// Snapshot is a deep copy of the table for rendering. Mutating it has no
// effect on the table.
type Snapshot struct {
	HandNumber  int             `json:"hand_number"`
	Phase       Phase           `json:"phase"`
	Step        Step            `json:"step"`
	Pot         int             `json:"pot"`
	CurrentBet  int             `json:"current_bet"`
	SmallBlind  int             `json:"small_blind"`
	BigBlind    int             `json:"big_blind"`
	Community   []poker.Card    `json:"community"`
	Seats       []SeatView      `json:"seats"`
	CurrentSeat string          `json:"current_seat,omitempty"`
	DealerSeat  string          `json:"dealer_seat,omitempty"`
	WinnerID    string          `json:"winner_id,omitempty"`
	WinningRank *poker.HandRank `json:"winning_rank,omitempty"`
	Log         []LogEntry      `json:"log"`
}

// Seat finds a seat by id.
func (s Snapshot) Seat(id string) (SeatView, bool) {
	for _, seat := range s.Seats {
		if seat.ID == id {
			return seat, true
		}
	}
	return SeatView{}, false
}

// ToCall returns what the seat must pay to match the table bet.
func (s Snapshot) ToCall(id string) int {
	seat, ok := s.Seat(id)
	if !ok {
		return 0
	}
	return max(0, s.CurrentBet-seat.Bet)
}

// TotalChips sums every stack and the pot.
func (s Snapshot) TotalChips() int {
	total := s.Pot
	for _, seat := range s.Seats {
		total += seat.Chips
	}
	return total
}

// Live counts seats that have not folded.
func (s Snapshot) Live() int {
	n := 0
	for _, seat := range s.Seats {
		if !seat.Folded {
			n++
		}
	}
	return n
}

// View is a Snapshot as seen from one seat: other seats' hole cards are
// hidden until they are shown down.
type View struct {
	Snapshot
	SeatID string `json:"seat_id"`
}

// Self returns the viewing seat.
func (v View) Self() SeatView {
	seat, _ := v.Seat(v.SeatID)
	return seat
}

// Snapshot returns a full copy of the table including every seat's hole cards.
func (t *Table) Snapshot() Snapshot {
	return t.snapshot(func(*Seat) bool { return true })
}

// View returns the table as seen by seatID.
func (t *Table) View(seatID string) View {
	return View{
		Snapshot: t.snapshot(func(s *Seat) bool {
			return s.ID == seatID || (t.shownDown && !s.Folded)
		}),
		SeatID: seatID,
	}
}

func (t *Table) snapshot(visible func(*Seat) bool) Snapshot {
	step := t.Next()
	snap := Snapshot{
		HandNumber:  t.handNumber,
		Phase:       t.phase,
		Step:        step,
		Pot:         t.pot,
		CurrentBet:  t.currentBet,
		SmallBlind:  t.cfg.smallBlind,
		BigBlind:    t.cfg.bigBlind,
		Community:   append([]poker.Card{}, t.community...),
		Seats:       make([]SeatView, len(t.seats)),
		CurrentSeat: t.CurrentSeatID(),
		DealerSeat:  t.DealerSeatID(),
		WinnerID:    t.winnerID,
		Log:         t.Log(),
	}
	if t.winningRank != nil {
		rank := *t.winningRank
		rank.TieBreakers = append([]int(nil), rank.TieBreakers...)
		snap.WinningRank = &rank
	}
	for i, s := range t.seats {
		view := SeatView{
			Seat:     s.clone(),
			AllIn:    s.AllIn(),
			IsDealer: i == t.dealer,
			IsTurn:   step == StepAct && i == t.current,
		}
		if !visible(s) {
			view.Hand = nil
		}
		snap.Seats[i] = view
	}
	return snap
}
