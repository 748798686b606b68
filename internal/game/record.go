package game

import (
	"time"

	"github.com/lox/holdem-coach/poker"
)

// RecordSeat is a seat's part in a finished hand.
type RecordSeat struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	IsBot       bool         `json:"is_bot"`
	Hand        []poker.Card `json:"hand"`
	Folded      bool         `json:"folded"`
	ChipsBefore int          `json:"chips_before"`
	ChipsAfter  int          `json:"chips_after"`
}

// Delta is the seat's net result for the hand.
func (r RecordSeat) Delta() int {
	return r.ChipsAfter - r.ChipsBefore
}

// HandRecord is the permanent record of one completed hand.
type HandRecord struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	HandNumber     int             `json:"hand_number"`
	Seats          []RecordSeat    `json:"seats"`
	CommunityCards []poker.Card    `json:"community_cards"`
	WinnerID       string          `json:"winner_id"`
	WinningRank    *poker.HandRank `json:"winning_rank,omitempty"`
	Pot            int             `json:"pot"`
	Showdown       bool            `json:"showdown"`
	Log            []LogEntry      `json:"log"`
	AIAnalysis     string          `json:"ai_analysis,omitempty"`
}

// Seat finds a seat by id.
func (r HandRecord) Seat(id string) (RecordSeat, bool) {
	for _, s := range r.Seats {
		if s.ID == id {
			return s, true
		}
	}
	return RecordSeat{}, false
}

// Winner returns the winning seat.
func (r HandRecord) Winner() (RecordSeat, bool) {
	return r.Seat(r.WinnerID)
}

// Record builds the HandRecord of the finished hand.
func (t *Table) Record(id string, ts time.Time) (HandRecord, error) {
	if t.handNumber == 0 {
		return HandRecord{}, ErrNoHand
	}
	if t.phase != GameOver {
		return HandRecord{}, ErrHandInProgress
	}

	snap := t.Snapshot()
	rec := HandRecord{
		ID:             id,
		Timestamp:      ts,
		HandNumber:     t.handNumber,
		Seats:          make([]RecordSeat, len(t.seats)),
		CommunityCards: snap.Community,
		WinnerID:       t.winnerID,
		WinningRank:    snap.WinningRank,
		Pot:            t.awarded,
		Showdown:       t.shownDown,
		Log:            snap.Log,
	}
	for i, s := range t.seats {
		rec.Seats[i] = RecordSeat{
			ID:          s.ID,
			Name:        s.Name,
			IsBot:       s.IsBot,
			Hand:        append([]poker.Card(nil), s.Hand...),
			Folded:      s.Folded,
			ChipsBefore: t.startChips[i],
			ChipsAfter:  s.Chips,
		}
	}
	return rec, nil
}
