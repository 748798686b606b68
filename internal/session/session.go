// Package session hosts one single-table game for a human player against
// bots. It owns the table and drives bot turns, street changes and the
// showdown on timers, records finished hands into the training profile and
// hand history, and fans out updates to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/handid"
	"github.com/lox/holdem-coach/internal/randutil"
	"github.com/lox/holdem-coach/internal/store"
	"github.com/lox/holdem-coach/internal/training"
)

var (
	ErrClosed      = errors.New("session is closed")
	ErrBotSeat     = errors.New("seat is played by a bot")
	ErrUnknownHand = errors.New("hand not found in history")
	ErrNoCoach     = errors.New("no coach configured")
)

// Advisor is the coaching collaborator. Implementations never fail; they
// return fallback text instead.
type Advisor interface {
	Advise(ctx context.Context, view game.View, profile training.Profile) string
	AssessSkill(ctx context.Context, records []game.HandRecord) training.Assessment
	AnalyzeHand(ctx context.Context, rec game.HandRecord) string
}

// Update is pushed to subscribers after every change.
type Update struct {
	View          game.View            `json:"view"`
	Advice        string               `json:"advice,omitempty"`
	AdvicePending bool                 `json:"advice_pending"`
	Assessing     bool                 `json:"assessing"`
	AssessedHands int                  `json:"assessed_hands"`
	Assessment    *training.Assessment `json:"assessment,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	table    *game.Table
	pending  *Deferred
	clock    quartz.Clock
	rng      *rand.Rand
	policy   game.BotPolicy
	coach    Advisor
	store    store.Store
	logger   *log.Logger
	timing   Timing
	userID   string
	recorded int

	tableOpts    []game.TableOption
	historyLimit int
	history      []game.HandRecord
	profile      training.Profile

	advice        string
	advicePending bool
	adviceTurn    uint64

	assessing     bool
	assessedHands int
	assessment    *training.Assessment

	subs    map[int]chan Update
	nextSub int

	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	saveMu   sync.Mutex
	saveSeq  uint64
	savedSeq uint64
}

// New creates a session. No hand is dealt until StartHand.
func New(opts ...Option) *Session {
	s := &Session{
		clock:        quartz.NewReal(),
		logger:       discardLogger(),
		timing:       DefaultTiming(),
		historyLimit: DefaultHistoryLimit,
		userID:       game.HumanSeatID,
		profile:      training.NewProfile(),
		subs:         make(map[int]chan Update),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = randutil.New(randutil.Seed(0))
	}
	if s.policy == nil {
		s.policy = game.NewWeightedRandomPolicy(s.rng)
	}
	s.logger = s.logger.WithPrefix("session")
	s.pending = NewDeferred(s.clock, &s.mu)
	s.table = game.NewTable(append([]game.TableOption{game.WithRand(s.rng)}, s.tableOpts...)...)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Load restores the profile and history from the store. Missing keys leave
// the defaults in place.
func (s *Session) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	profile := training.NewProfile()
	if _, err := store.LoadJSON(ctx, s.store, store.KeyProfile, &profile); err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	var history []game.HandRecord
	if _, err := store.LoadJSON(ctx, s.store, store.KeyHistory, &history); err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.history = history
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}
	s.logger.Info("Loaded saved state", "hands", len(s.history), "level", profile.SkillLevel)
	return nil
}

// Save writes the profile and history to the store.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	s.saveSeq++
	seq, profile, history := s.saveSeq, s.profile, s.historyCopy()
	s.mu.Unlock()
	return s.save(ctx, seq, profile, history)
}

func (s *Session) save(ctx context.Context, seq uint64, profile training.Profile, history []game.HandRecord) error {
	if s.store == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if seq <= s.savedSeq {
		return nil
	}
	if err := store.SaveJSON(ctx, s.store, store.KeyProfile, profile); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	if err := store.SaveJSON(ctx, s.store, store.KeyHistory, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	s.savedSeq = seq
	return nil
}

// persistLocked saves in the background. Failures are logged only.
func (s *Session) persistLocked() {
	if s.store == nil {
		return
	}
	s.saveSeq++
	seq, profile, history := s.saveSeq, s.profile, s.historyCopy()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.save(s.ctx, seq, profile, history); err != nil {
			s.logger.Error("Failed to persist", "error", err)
		}
	}()
}

// StartHand deals a new hand for players seats, cancelling anything still
// pending from the previous one. When an assessment is due it runs first.
func (s *Session) StartHand(ctx context.Context, players int) error {
	if err := s.runDueAssessment(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.pending.Cancel()
	if err := s.table.StartHand(players); err != nil {
		return err
	}
	s.logger.Info("Hand started", "hand", s.table.HandNumber(), "players", players, "dealer", s.table.DealerSeatID())
	s.driveLocked()
	return nil
}

func (s *Session) runDueAssessment(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.assessing || s.assessedHands < AssessmentHands || s.coach == nil {
		s.mu.Unlock()
		return nil
	}
	s.assessing = false
	s.assessedHands = 0
	records := append([]game.HandRecord(nil), s.history[:min(AssessmentHands, len(s.history))]...)
	s.mu.Unlock()

	s.logger.Info("Running skill assessment", "hands", len(records))
	a := s.coach.AssessSkill(ctx, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.ApplyAssessment(a)
	s.assessment = &a
	s.logger.Info("Assessment complete", "level", a.SkillLevel)
	s.persistLocked()
	s.broadcastLocked()
	return nil
}

// Act applies the human seat's action.
func (s *Session) Act(seatID string, a game.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if seat, ok := s.table.Seat(seatID); ok && seat.IsBot {
		return ErrBotSeat
	}
	if err := s.table.Apply(seatID, a); err != nil {
		return err
	}
	s.driveLocked()
	return nil
}

// driveLocked schedules whatever the table is waiting for and notifies
// subscribers.
func (s *Session) driveLocked() {
	s.adviceTurn++
	s.advice = ""
	s.advicePending = false

	switch s.table.Next() {
	case game.StepAct:
		seatID := s.table.CurrentSeatID()
		seat, _ := s.table.Seat(seatID)
		if seat.IsBot {
			s.pending.Schedule(s.botDelay(), s.botTurnLocked)
		} else if seatID == s.userID {
			s.requestAdviceLocked()
		}
	case game.StepAdvance:
		s.pending.Schedule(s.timing.PhaseDelay, s.advanceLocked)
	case game.StepShowdown:
		s.pending.Schedule(s.timing.ShowdownDelay, s.advanceLocked)
	case game.StepDone:
		s.finishHandLocked()
	}
	s.broadcastLocked()
}

func (s *Session) botDelay() time.Duration {
	lo, hi := s.timing.BotDelayMin, s.timing.BotDelayMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.rng.Int64N(int64(hi-lo)+1))
}

func (s *Session) botTurnLocked() {
	seatID := s.table.CurrentSeatID()
	if a, err := game.PlayBot(s.table, s.policy); err != nil {
		s.logger.Warn("Bot action rejected", "seat", seatID, "played", a, "error", err)
	}
	s.driveLocked()
}

func (s *Session) advanceLocked() {
	if err := s.table.Advance(); err != nil {
		s.logger.Error("Failed to advance hand", "hand", s.table.HandNumber(), "error", err)
	}
	s.driveLocked()
}

func (s *Session) finishHandLocked() {
	hand := s.table.HandNumber()
	if hand == 0 || s.recorded == hand {
		return
	}
	s.recorded = hand

	rec, err := s.table.Record(handid.New(), s.clock.Now())
	if err != nil {
		s.logger.Error("Failed to record hand", "hand", hand, "error", err)
		return
	}
	s.history = append([]game.HandRecord{rec}, s.history...)
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}
	s.profile.RecordHand(rec, s.userID)
	if s.assessing {
		s.assessedHands++
	}
	s.logger.Info("Hand complete", "hand", hand, "id", rec.ID, "winner", rec.WinnerID, "pot", rec.Pot, "showdown", rec.Showdown)
	s.persistLocked()
}

func (s *Session) requestAdviceLocked() {
	if s.coach == nil {
		return
	}
	turn := s.adviceTurn
	view := s.table.View(s.userID)
	profile := s.profile
	s.advicePending = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		text := s.coach.Advise(s.ctx, view, profile)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || turn != s.adviceTurn {
			return
		}
		s.advice = text
		s.advicePending = false
		s.broadcastLocked()
	}()
}

// StartAssessment begins assessment mode: after AssessmentHands more hands
// the next StartHand grades the player.
func (s *Session) StartAssessment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.coach == nil {
		return ErrNoCoach
	}
	s.assessing = true
	s.assessedHands = 0
	s.assessment = nil
	s.broadcastLocked()
	return nil
}

// AnalyzeHand attaches a coach review to the recorded hand with the given id.
// A hand that was already analysed is returned unchanged.
func (s *Session) AnalyzeHand(ctx context.Context, id string) (game.HandRecord, error) {
	s.mu.Lock()
	if s.coach == nil {
		s.mu.Unlock()
		return game.HandRecord{}, ErrNoCoach
	}
	idx := s.historyIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return game.HandRecord{}, fmt.Errorf("%w: %s", ErrUnknownHand, id)
	}
	rec := s.history[idx]
	s.mu.Unlock()
	if rec.AIAnalysis != "" {
		return rec, nil
	}

	text := s.coach.AnalyzeHand(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.AIAnalysis = text
	if idx := s.historyIndex(id); idx >= 0 {
		s.history[idx].AIAnalysis = text
		s.persistLocked()
	}
	return rec, nil
}

func (s *Session) historyIndex(id string) int {
	for i, rec := range s.history {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// View returns the table as the human seat sees it.
func (s *Session) View() game.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.View(s.userID)
}

// Snapshot returns the current update without waiting for a change.
func (s *Session) Snapshot() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked()
}

// History returns finished hands, newest first.
func (s *Session) History() []game.HandRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyCopy()
}

// Hand returns one recorded hand.
func (s *Session) Hand(id string) (game.HandRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.historyIndex(id); idx >= 0 {
		return s.history[idx], true
	}
	return game.HandRecord{}, false
}

func (s *Session) Profile() training.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// UserID returns the human seat id.
func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) historyCopy() []game.HandRecord {
	return append([]game.HandRecord{}, s.history...)
}

// Subscribe returns a channel of updates and a function to stop receiving
// them. A slow subscriber only ever misses intermediate updates; the latest
// one is always delivered.
func (s *Session) Subscribe() (<-chan Update, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 16)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.updateLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Session) updateLocked() Update {
	u := Update{
		View:          s.table.View(s.userID),
		Advice:        s.advice,
		AdvicePending: s.advicePending,
		Assessing:     s.assessing,
		AssessedHands: s.assessedHands,
	}
	if s.assessment != nil {
		a := *s.assessment
		u.Assessment = &a
	}
	return u
}

func (s *Session) broadcastLocked() {
	if len(s.subs) == 0 {
		return
	}
	u := s.updateLocked()
	for _, ch := range s.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		// full: drop the oldest update to make room
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

// Close cancels pending transitions, closes subscriber channels and saves.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending.Cancel()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.saveSeq++
	seq, profile, history := s.saveSeq, s.profile, s.historyCopy()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return s.save(context.Background(), seq, profile, history)
}
