package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lox/holdem-coach/internal/randutil"
	"github.com/lox/holdem-coach/poker"
)

// Table holds the seats ring and the state of the current hand.
//
// A Table is not safe for concurrent use; hosts serialise access.
type Table struct {
	cfg tableConfig
	rng *rand.Rand

	seats      []*Seat
	dealer     int
	current    int
	handNumber int
	startChips []int

	deck       *poker.Deck
	community  []poker.Card
	burned     []poker.Card
	pot        int
	currentBet int
	phase      Phase

	winnerID    string
	winningRank *poker.HandRank
	awarded     int
	shownDown   bool

	log []LogEntry
}

// NewTable creates an empty table. No hand is in progress until StartHand.
func NewTable(opts ...TableOption) *Table {
	cfg := defaultTableConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.smallBlind <= 0 || cfg.bigBlind < cfg.smallBlind {
		panic("blinds must be positive with the big blind at least the small blind")
	}
	if cfg.startingStack < cfg.bigBlind {
		panic("starting stack must cover the big blind")
	}

	rng := cfg.rng
	if rng == nil {
		rng = randutil.New(time.Now().UnixNano())
	}

	return &Table{
		cfg:     cfg,
		rng:     rng,
		phase:   GameOver,
		current: -1,
	}
}

func (t *Table) newSeats(n int) []*Seat {
	seats := make([]*Seat, n)
	bot := 0
	for i := range seats {
		if i == 0 && t.cfg.humanID != "" {
			seats[i] = &Seat{ID: t.cfg.humanID, Name: t.cfg.humanName, Chips: t.cfg.startingStack}
			continue
		}
		name := fmt.Sprintf("Bot %d", i)
		if bot < len(t.cfg.botNames) {
			name = t.cfg.botNames[bot]
		}
		bot++
		seats[i] = &Seat{
			ID:    fmt.Sprintf("bot-%d", i),
			Name:  name,
			Chips: t.cfg.startingStack,
			IsBot: true,
		}
	}
	return seats
}

// StartHand begins a new hand with playerCount seats. A change in the number
// of seats rebuilds the ring with fresh stacks and the button on seat 0;
// otherwise stacks carry over (busted seats are topped back up) and the button
// moves one seat to the left.
func (t *Table) StartHand(playerCount int) error {
	if playerCount < MinPlayers || playerCount > MaxPlayers {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, playerCount)
	}

	if len(t.seats) != playerCount {
		t.seats = t.newSeats(playerCount)
		t.dealer = 0
	} else {
		if t.phase != GameOver {
			// an abandoned hand is void: stacks go back to where they started
			for i, s := range t.seats {
				s.Chips = t.startChips[i]
			}
		}
		for _, s := range t.seats {
			if s.Chips <= 0 {
				s.Chips = t.cfg.startingStack
			}
		}
		t.dealer = (t.dealer + 1) % playerCount
	}

	t.handNumber++
	t.deck = t.cfg.deckFactory(t.rng)
	t.community = nil
	t.burned = nil
	t.pot = 0
	t.currentBet = 0
	t.winnerID = ""
	t.winningRank = nil
	t.awarded = 0
	t.shownDown = false
	t.log = nil
	t.phase = Preflop

	t.startChips = make([]int, playerCount)
	for i, s := range t.seats {
		s.resetForHand()
		t.startChips[i] = s.Chips
	}

	for _, s := range t.seats {
		cards, err := t.deck.Deal(2)
		if err != nil {
			return fmt.Errorf("dealing hole cards: %w", err)
		}
		s.Hand = cards
	}

	t.log = append(t.log, handStartEntry(t.handNumber, t.seats[t.dealer]))

	sb, bb := t.blindSeats()
	t.postBlind(sb, t.cfg.smallBlind, false)
	t.postBlind(bb, t.cfg.bigBlind, true)
	t.currentBet = t.cfg.bigBlind

	first := (t.dealer + 3) % playerCount
	if playerCount == 2 {
		// Heads-up: the button is the small blind and acts first preflop
		first = t.dealer
	}
	t.current = t.nextActorFrom(first)
	return nil
}

func (t *Table) blindSeats() (sb, bb int) {
	n := len(t.seats)
	if n == 2 {
		return t.dealer, (t.dealer + 1) % n
	}
	return (t.dealer + 1) % n, (t.dealer + 2) % n
}

func (t *Table) postBlind(idx, amount int, big bool) {
	s := t.seats[idx]
	paid := s.pay(amount)
	t.pot += paid
	t.log = append(t.log, blindEntry(s, paid, big))
}

// Apply validates and applies one action for the seat whose turn it is.
// Rejected actions return an *ActionError and leave the table unchanged.
func (t *Table) Apply(seatID string, a Action) error {
	if err := t.apply(seatID, a); err != nil {
		return &ActionError{SeatID: seatID, Action: a, Phase: t.phase, Err: err}
	}
	return nil
}

func (t *Table) apply(seatID string, a Action) error {
	switch t.Next() {
	case StepDone:
		return ErrHandOver
	case StepAdvance, StepShowdown:
		return ErrAwaitingAdvance
	}

	idx := t.seatIndex(seatID)
	if idx < 0 {
		return ErrUnknownSeat
	}
	if idx != t.current {
		return ErrOutOfTurn
	}

	s := t.seats[idx]
	switch a.Kind {
	case Fold:
		s.Folded = true
		t.log = append(t.log, actionEntry(t.phase, s, Fold, 0))

	case Check:
		if s.Bet != t.currentBet {
			return ErrCannotCheck
		}
		t.log = append(t.log, actionEntry(t.phase, s, Check, 0))

	case Call:
		toCall := t.currentBet - s.Bet
		if toCall <= 0 {
			return ErrNothingToCall
		}
		paid := s.pay(toCall)
		t.pot += paid
		t.log = append(t.log, actionEntry(t.phase, s, Call, paid))

	case Raise:
		if a.Amount <= 0 {
			return ErrInvalidRaise
		}
		// checked before computing the target so huge amounts cannot overflow
		toCall := t.currentBet - s.Bet
		if a.Amount > s.Chips-toCall {
			return fmt.Errorf("%w: raising by %d with %d to call and %d behind", ErrInsufficientChips, a.Amount, toCall, s.Chips)
		}
		target := t.currentBet + a.Amount
		cost := target - s.Bet
		t.pot += s.pay(cost)
		t.currentBet = target
		t.log = append(t.log, actionEntry(t.phase, s, Raise, target))

	default:
		return ErrInvalidAction
	}
	s.LastAction = a.Kind

	if winner, ok := t.lastStanding(); ok {
		t.award(winner, nil)
		return nil
	}

	t.current = t.nextActorFrom(idx + 1)
	return nil
}

// Next reports what the table is waiting for.
func (t *Table) Next() Step {
	switch {
	case t.phase == GameOver:
		return StepDone
	case t.phase == Showdown:
		return StepShowdown
	case t.roundComplete():
		return StepAdvance
	default:
		return StepAct
	}
}

// Advance performs the transition reported by Next: dealing the next street
// or resolving the showdown.
func (t *Table) Advance() error {
	switch t.Next() {
	case StepAdvance:
		return t.advancePhase()
	case StepShowdown:
		t.resolveShowdown()
		return nil
	default:
		return ErrNothingToAdvance
	}
}

// Settle runs Advance until a seat has to act or the hand is over.
func (t *Table) Settle() error {
	for {
		switch t.Next() {
		case StepAdvance, StepShowdown:
			if err := t.Advance(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// roundComplete reports whether every seat still able to bet has acted this
// round and matched the table bet. With fewer than two such seats there is
// nobody left to bet against once the bet is matched.
func (t *Table) roundComplete() bool {
	active, pending := 0, false
	for _, s := range t.seats {
		if !s.canAct() {
			continue
		}
		active++
		if s.Bet < t.currentBet {
			return false
		}
		if s.LastAction == NoAction {
			pending = true
		}
	}
	return active <= 1 || !pending
}

func (t *Table) advancePhase() error {
	next := t.phase + 1

	var revealed []poker.Card
	if next != Showdown {
		burn, err := t.deck.Burn()
		if err != nil {
			return fmt.Errorf("burning before the %s: %w", next, err)
		}
		t.burned = append(t.burned, burn)
		revealed, err = t.deck.Deal(next.CommunityCards() - len(t.community))
		if err != nil {
			return fmt.Errorf("dealing the %s: %w", next, err)
		}
		t.community = append(t.community, revealed...)
	}

	for _, s := range t.seats {
		s.Bet = 0
		s.LastAction = NoAction
	}
	t.currentBet = 0
	t.phase = next

	if next != Showdown {
		t.log = append(t.log, revealEntry(next, revealed))
		t.current = t.nextActorFrom(t.dealer + 1)
	}
	return nil
}

func (t *Table) resolveShowdown() {
	result, ok := ResolveShowdown(t.seats, t.community)
	if !ok {
		t.phase = GameOver
		t.current = -1
		return
	}
	for _, c := range result.Contenders {
		t.log = append(t.log, showdownEntry(t.seats[c.Index], c.Rank))
	}
	t.shownDown = true
	rank := result.Rank
	t.award(result.Index, &rank)
}

// award ends the hand with the whole pot going to the seat at idx
func (t *Table) award(idx int, rank *poker.HandRank) {
	s := t.seats[idx]
	won := t.pot
	s.Chips += won
	t.log = append(t.log, winnerEntry(t.phase, s, won, rank))

	t.awarded = won
	t.pot = 0
	t.winnerID = s.ID
	t.winningRank = rank
	t.phase = GameOver
	t.current = idx
}

func (t *Table) lastStanding() (int, bool) {
	winner, live := -1, 0
	for i, s := range t.seats {
		if !s.Folded {
			winner = i
			live++
		}
	}
	return winner, live == 1
}

// nextActorFrom returns the first seat at or after i, in ring order, that can
// still bet. When nobody can, it falls back to the first live seat.
func (t *Table) nextActorFrom(i int) int {
	n := len(t.seats)
	for k := range n {
		if idx := (i + k) % n; t.seats[idx].canAct() {
			return idx
		}
	}
	for k := range n {
		if idx := (i + k) % n; !t.seats[idx].Folded {
			return idx
		}
	}
	return -1
}

func (t *Table) seatIndex(id string) int {
	for i, s := range t.seats {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Phase returns the current phase; GameOver before the first hand.
func (t *Table) Phase() Phase { return t.phase }

// HandNumber counts hands started on this table.
func (t *Table) HandNumber() int { return t.handNumber }

// Pot returns the chips in the middle.
func (t *Table) Pot() int { return t.pot }

// CurrentBet returns the amount each seat must match this round.
func (t *Table) CurrentBet() int { return t.currentBet }

// WinnerID returns the winner of a finished hand.
func (t *Table) WinnerID() string { return t.winnerID }

// CurrentSeatID returns the seat that must act, or "" when no action is due.
func (t *Table) CurrentSeatID() string {
	if t.Next() != StepAct || t.current < 0 {
		return ""
	}
	return t.seats[t.current].ID
}

// DealerSeatID returns the seat holding the button.
func (t *Table) DealerSeatID() string {
	if len(t.seats) == 0 {
		return ""
	}
	return t.seats[t.dealer].ID
}

// Seat returns a copy of the seat with the given id.
func (t *Table) Seat(id string) (Seat, bool) {
	idx := t.seatIndex(id)
	if idx < 0 {
		return Seat{}, false
	}
	return t.seats[idx].clone(), true
}

// SeatIDs returns the seat ids in ring order.
func (t *Table) SeatIDs() []string {
	ids := make([]string, len(t.seats))
	for i, s := range t.seats {
		ids[i] = s.ID
	}
	return ids
}

// Log returns a copy of the current hand's action log.
func (t *Table) Log() []LogEntry {
	return append([]LogEntry(nil), t.log...)
}

// Burned returns the burn pile of the current hand.
func (t *Table) Burned() []poker.Card {
	return append([]poker.Card(nil), t.burned...)
}

// DeckRemaining returns the number of undealt cards.
func (t *Table) DeckRemaining() int {
	if t.deck == nil {
		return 0
	}
	return t.deck.Remaining()
}

// TotalChips returns every stack plus the pot. It is constant within a hand.
func (t *Table) TotalChips() int {
	total := t.pot
	for _, s := range t.seats {
		total += s.Chips
	}
	return total
}

// ChipDelta returns how many chips the seat has won (positive) or lost
// (negative) since the current hand started.
func (t *Table) ChipDelta(id string) int {
	idx := t.seatIndex(id)
	if idx < 0 || idx >= len(t.startChips) {
		return 0
	}
	return t.seats[idx].Chips - t.startChips[idx]
}

// ToCall returns what the seat must pay to match the table bet.
func (t *Table) ToCall(id string) int {
	idx := t.seatIndex(id)
	if idx < 0 {
		return 0
	}
	return max(0, t.currentBet-t.seats[idx].Bet)
}
