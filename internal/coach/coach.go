// Package coach turns table state and hand history into coaching text using a
// chat-completions model. Every method degrades to a fixed fallback message;
// model failures are logged and never returned to the caller.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/training"
	"github.com/lox/holdem-coach/poker"
)

const (
	FoldedAdvice        = "You have folded. Watch how the others bet to learn their patterns."
	EmptyAdvice         = "Read the board and make your best decision."
	UnavailableAdvice   = "The coach is unavailable right now. Trust your instincts."
	EmptyAnalysis       = "This hand could not be analysed."
	UnavailableAnalysis = "Hand analysis is unavailable right now."
)

// FallbackAssessment is used whenever an assessment cannot be obtained.
func FallbackAssessment() training.Assessment {
	return training.Assessment{
		SkillLevel: training.Beginner,
		Strengths:  []string{"Willing to play hands out"},
		Weaknesses: []string{"Limited experience"},
	}
}

const systemPrompt = "You are a professional Texas Hold'em coach. Be concrete and brief."

// Coach produces advice, skill assessments and hand reviews.
type Coach struct {
	llm    Completer
	logger *log.Logger
	userID string
}

// Option configures a Coach.
type Option func(*Coach)

func WithLogger(logger *log.Logger) Option {
	return func(c *Coach) { c.logger = logger }
}

// WithUserSeat sets the seat id the coach talks to. Defaults to game.HumanSeatID.
func WithUserSeat(id string) Option {
	return func(c *Coach) { c.userID = id }
}

// New creates a coach backed by llm.
func New(llm Completer, opts ...Option) *Coach {
	c := &Coach{
		llm:    llm,
		logger: log.New(io.Discard),
		userID: game.HumanSeatID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithPrefix("coach")
	return c
}

// Advise suggests the user's next move given what they can see.
func (c *Coach) Advise(ctx context.Context, view game.View, profile training.Profile) string {
	self, ok := view.Seat(c.userID)
	if !ok {
		return EmptyAdvice
	}
	if self.Folded {
		return FoldedAdvice
	}

	text, err := c.complete(ctx, Request{System: systemPrompt, User: advicePrompt(view, self, profile)})
	if err != nil {
		c.logger.Warn("Advice request failed", "error", err, "hand", view.HandNumber)
		return UnavailableAdvice
	}
	if text == "" {
		return EmptyAdvice
	}
	return text
}

func advicePrompt(view game.View, self game.SeatView, profile training.Profile) string {
	rank := poker.Evaluate(self.Hand, view.Community)
	position := "early or blind position"
	if self.IsDealer {
		position = "late position (button)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Player level: %s (assessment complete: %t)\n", profile.SkillLevel, profile.AssessmentComplete)
	fmt.Fprintf(&b, "Street: %s\n", view.Phase.Title())
	fmt.Fprintf(&b, "Hole cards: %s (%s)\n", poker.FormatCards(self.Hand), poker.CategorizeHoleCards(self.Hand))
	fmt.Fprintf(&b, "Board: %s\n", boardText(view.Community))
	fmt.Fprintf(&b, "Pot: %d, to call: %d\n", view.Pot, view.ToCall(self.ID))
	fmt.Fprintf(&b, "Current hand: %s (score %d)\n", rank.Describe(), rank.Score)
	fmt.Fprintf(&b, "Position: %s\n", position)
	fmt.Fprintf(&b, "Stack: %d\n", self.Chips)
	fmt.Fprintf(&b, "Opponents still in: %d\n\n", view.Live()-1)
	b.WriteString("In at most two sentences, say whether to check, call, raise or fold and why. ")
	b.WriteString("Focus on pot odds, hand potential or bluffing opportunities. Do not hedge.")
	return b.String()
}

// AssessSkill grades the user over records, usually the last five hands.
func (c *Coach) AssessSkill(ctx context.Context, records []game.HandRecord) training.Assessment {
	if len(records) == 0 {
		return FallbackAssessment()
	}
	text, err := c.complete(ctx, Request{System: systemPrompt, User: c.assessmentPrompt(records), JSON: true})
	if err != nil {
		c.logger.Warn("Assessment request failed", "error", err, "hands", len(records))
		return FallbackAssessment()
	}
	a, err := ParseAssessment(text)
	if err != nil {
		c.logger.Warn("Assessment response unusable", "error", err)
		return FallbackAssessment()
	}
	return a
}

type handSummary struct {
	Hand    string `json:"hand"`
	Board   string `json:"board"`
	Winner  string `json:"winner"`
	Pot     int    `json:"pot"`
	Result  int    `json:"result"`
	Actions string `json:"actions"`
}

func (c *Coach) assessmentPrompt(records []game.HandRecord) string {
	summaries := make([]handSummary, 0, len(records))
	for _, rec := range records {
		seat, _ := rec.Seat(c.userID)
		winner := "Bot"
		if rec.WinnerID == c.userID {
			winner = "User"
		}
		summaries = append(summaries, handSummary{
			Hand:    poker.FormatCards(seat.Hand),
			Board:   poker.FormatCards(rec.CommunityCards),
			Winner:  winner,
			Pot:     rec.Pot,
			Result:  seat.Delta(),
			Actions: actionLine(rec.Log),
		})
	}
	data, _ := json.MarshalIndent(summaries, "", "  ")
	stats := training.Summarize(records, c.userID)

	levels := make([]string, len(training.SkillLevels))
	for i, l := range training.SkillLevels {
		levels[i] = string(l)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grade this student on their last %d hands of Texas Hold'em.\n\n", len(records))
	fmt.Fprintf(&b, "Hands:\n%s\n\nStats: %s\n\n", data, stats)
	fmt.Fprintf(&b, "Be strict. Choose the skill level from: %s. Poor play is a Beginner.\n", strings.Join(levels, ", "))
	b.WriteString("Give one main strength and one main weakness, each a short phrase.\n")
	b.WriteString(`Reply with only a JSON object: {"skill_level": "...", "strengths": ["..."], "weaknesses": ["..."]}`)
	return b.String()
}

// ParseAssessment reads a model's JSON assessment. Markdown fences are
// tolerated and the skill level must name a known tier.
func ParseAssessment(text string) (training.Assessment, error) {
	text = stripFences(text)
	var raw struct {
		SkillLevel  string   `json:"skill_level"`
		SkillLevel2 string   `json:"skillLevel"`
		Strengths   []string `json:"strengths"`
		Weaknesses  []string `json:"weaknesses"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return training.Assessment{}, fmt.Errorf("decoding assessment: %w", err)
	}
	levelName := raw.SkillLevel
	if levelName == "" {
		levelName = raw.SkillLevel2
	}
	level, err := training.ParseSkillLevel(levelName)
	if err != nil {
		return training.Assessment{}, err
	}
	a := training.Assessment{SkillLevel: level, Strengths: raw.Strengths, Weaknesses: raw.Weaknesses}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Weaknesses == nil {
		a.Weaknesses = []string{}
	}
	return a, nil
}

// AnalyzeHand reviews the user's decisions in a finished hand.
func (c *Coach) AnalyzeHand(ctx context.Context, rec game.HandRecord) string {
	text, err := c.complete(ctx, Request{System: systemPrompt, User: c.analysisPrompt(rec)})
	if err != nil {
		c.logger.Warn("Hand analysis failed", "error", err, "hand", rec.ID)
		return UnavailableAnalysis
	}
	if text == "" {
		return EmptyAnalysis
	}
	return text
}

func (c *Coach) analysisPrompt(rec game.HandRecord) string {
	var b strings.Builder
	b.WriteString("Review this hand of Texas Hold'em.\n\n")
	for _, s := range rec.Seats {
		who := s.Name
		if s.ID == c.userID {
			who = "Player"
		}
		fmt.Fprintf(&b, "- %s: %s", who, poker.FormatCards(s.Hand))
		if s.Folded {
			b.WriteString(" (folded)")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "- Board: %s\n", boardText(rec.CommunityCards))
	if w, ok := rec.Winner(); ok {
		fmt.Fprintf(&b, "- Winner: %s", w.Name)
		if rec.WinningRank != nil {
			fmt.Fprintf(&b, " with %s", rec.WinningRank.Describe())
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "- Pot: %d\n\nAction log:\n", rec.Pot)
	for _, e := range rec.Log {
		fmt.Fprintf(&b, "[%s] %s\n", e.Phase.Title(), e.Message)
	}
	b.WriteString("\nComment on the player's key decisions. Did they play well? Were there mistakes? ")
	b.WriteString("How would you have played it? Give three specific improvements.")
	return b.String()
}

func (c *Coach) complete(ctx context.Context, req Request) (string, error) {
	if c.llm == nil {
		return "", ErrNoAPIKey
	}
	text, err := c.llm.Complete(ctx, req)
	return strings.TrimSpace(text), err
}

func actionLine(entries []game.LogEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Kind == game.EventAction || e.Kind == game.EventBlind {
			parts = append(parts, e.Message)
		}
	}
	return strings.Join(parts, " | ")
}

func boardText(cards []poker.Card) string {
	if len(cards) == 0 {
		return "none"
	}
	return poker.FormatCards(cards)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
