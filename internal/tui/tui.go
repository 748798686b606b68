// Package tui is the terminal front end: a Bubble Tea model that renders
// session updates and turns typed commands into session calls.
package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/session"
	"github.com/lox/holdem-coach/poker"
)

const sidebarWidth = 30

// Model is the Bubble Tea model for a coached session.
type Model struct {
	session *session.Session
	logger  *log.Logger
	players int

	updates     <-chan session.Update
	unsubscribe func()
	state       session.Update
	analysis    string
	status      string
	statusErr   bool

	logViewport viewport.Model
	actionInput textinput.Model
	help        help.Model
	focusedPane int // 0 = log, 1 = input

	width    int
	height   int
	quitting bool
}

type updateMsg session.Update

type sessionClosedMsg struct{}

type commandResultMsg struct {
	notice string
	err    error
}

type analysisMsg struct {
	rec game.HandRecord
	err error
}

// NewModel subscribes to sess. players is the table size used when a new hand
// is dealt.
func NewModel(sess *session.Session, players int, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusedBorder).Bold(true)
	ti.Prompt = "> "

	updates, unsubscribe := sess.Subscribe()
	return &Model{
		session:     sess,
		logger:      logger.WithPrefix("tui"),
		players:     players,
		updates:     updates,
		unsubscribe: unsubscribe,
		state:       sess.Snapshot(),
		logViewport: vp,
		actionInput: ti,
		help:        help.New(),
		focusedPane: 1,
	}
}

// Close stops listening for session updates.
func (m *Model) Close() {
	m.unsubscribe()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

func (m *Model) listen() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return sessionClosedMsg{}
		}
		return updateMsg(u)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case updateMsg:
		m.state = session.Update(msg)
		m.refreshLog()
		return m, m.listen()

	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case commandResultMsg:
		m.setStatus(msg.notice, msg.err)
		return m, nil

	case analysisMsg:
		if msg.err != nil {
			m.setStatus("", msg.err)
		} else {
			m.analysis = msg.rec.AIAnalysis
			m.setStatus(fmt.Sprintf("Review of hand #%d ready", msg.rec.HandNumber), nil)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Focus):
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
			return m, nil
		case key.Matches(msg, keys.Submit) && m.focusedPane == 1:
			input := m.actionInput.Value()
			m.actionInput.SetValue("")
			return m, m.handleInput(input)
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput runs one typed command. Anything that is not a session command
// is parsed as a poker action.
func (m *Model) handleInput(input string) tea.Cmd {
	fields := strings.Fields(strings.ToLower(input))
	view := m.state.View
	handOver := view.Phase == game.GameOver

	if len(fields) == 0 {
		if handOver {
			return m.startHand()
		}
		return nil
	}

	switch fields[0] {
	case "quit", "exit", "q":
		m.quitting = true
		return tea.Quit

	case "deal", "next", "n":
		return m.startHand()

	case "players":
		if len(fields) != 2 {
			m.setStatus("", fmt.Errorf("usage: players <%d-%d>", game.MinPlayers, game.MaxPlayers))
			return nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < game.MinPlayers || n > game.MaxPlayers {
			m.setStatus("", game.ErrInvalidPlayerCount)
			return nil
		}
		m.players = n
		m.setStatus(fmt.Sprintf("Next hand will be dealt to %d players", n), nil)
		return nil

	case "assess":
		if err := m.session.StartAssessment(); err != nil {
			m.setStatus("", err)
			return nil
		}
		m.setStatus(fmt.Sprintf("Assessment started: play %d hands", session.AssessmentHands), nil)
		return nil

	case "review", "analyze":
		history := m.session.History()
		if len(history) == 0 {
			m.setStatus("", session.ErrUnknownHand)
			return nil
		}
		return m.analyze(history[0].ID)
	}

	a, err := game.ParseAction(input)
	if err != nil {
		m.setStatus("", err)
		return nil
	}
	if err := m.session.Act(m.session.UserID(), a); err != nil {
		m.setStatus("", err)
		return nil
	}
	m.setStatus("", nil)
	return nil
}

func (m *Model) startHand() tea.Cmd {
	sess, players := m.session, m.players
	m.analysis = ""
	return func() tea.Msg {
		if err := sess.StartHand(context.Background(), players); err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{}
	}
}

func (m *Model) analyze(id string) tea.Cmd {
	sess := m.session
	m.setStatus("Asking the coach to review the last hand...", nil)
	return func() tea.Msg {
		rec, err := sess.AnalyzeHand(context.Background(), id)
		return analysisMsg{rec: rec, err: err}
	}
}

func (m *Model) setStatus(notice string, err error) {
	if err != nil {
		m.logger.Debug("Command failed", "error", err)
		m.status, m.statusErr = err.Error(), true
		return
	}
	m.status, m.statusErr = notice, false
}

func (m *Model) refreshLog() {
	m.logViewport.SetContent(RenderLog(m.state.View.Log))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent) + 2
	paneHeight := max(1, m.height-actionHeight-2)

	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(1)).
		Width(max(1, m.width-2)).
		Render(actionContent)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blurredBorder).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(m.renderSidebar())

	m.logViewport.Width = max(1, m.width-sidebarWidth-4)
	m.logViewport.Height = paneHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderFor(0)).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) borderFor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return focusedBorder
	}
	return blurredBorder
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	view := m.state.View

	if view.HandNumber > 0 {
		b.WriteString(HeaderStyle.Render(fmt.Sprintf(" Hand #%d  %s ", view.HandNumber, view.Phase.Title())))
		b.WriteString("\n\n")
	}
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: %d", view.Pot)))
	if view.CurrentBet > 0 {
		b.WriteString(" | ")
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: %d", view.CurrentBet)))
	}
	b.WriteString("\n\n")
	b.WriteString(RenderSeats(view))

	profile := m.session.Profile()
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Level: %s", profile.SkillLevel)))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Hands: %d  Won: %d  Net: %+d", profile.GamesPlayed, profile.HandsWon, profile.TotalWinnings)))
	if m.state.Assessing {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Assessing %d/%d", m.state.AssessedHands, session.AssessmentHands)))
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder
	view := m.state.View
	self := view.Self()

	switch {
	case view.HandNumber == 0:
		b.WriteString(HandInfoStyle.Render("Press Enter to deal the first hand"))
	case view.Phase == game.GameOver:
		b.WriteString(HandInfoStyle.Render(handResult(view)))
	default:
		info := fmt.Sprintf("Hand: %s  Board: %s", FormatCards(self.Hand), FormatCards(view.Community))
		b.WriteString(HandInfoStyle.Render(info))
		if view.CurrentSeat == view.SeatID {
			b.WriteString("\n")
			b.WriteString(ActionsStyle.Render(availableActions(view)))
		} else {
			b.WriteString("\n")
			b.WriteString(InfoStyle.Render("Waiting..."))
		}
	}
	b.WriteString("\n")

	switch {
	case m.state.AdvicePending:
		b.WriteString(AdviceStyle.Render("Coach is thinking..."))
		b.WriteString("\n")
	case m.state.Advice != "":
		b.WriteString(AdviceStyle.Render("Coach: " + m.state.Advice))
		b.WriteString("\n")
	}
	if m.analysis != "" {
		b.WriteString(AdviceStyle.Render("Review: " + m.analysis))
		b.WriteString("\n")
	}
	if a := m.state.Assessment; a != nil {
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("Assessment: %s", a.SkillLevel)))
		b.WriteString("\n")
	}
	if m.status != "" {
		style := SuccessStyle
		if m.statusErr {
			style = ErrorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	if view.Phase == game.GameOver {
		m.actionInput.Placeholder = "Enter to deal, 'review' the last hand, 'assess', 'quit'"
	} else {
		m.actionInput.Placeholder = "fold, check, call, raise 40"
	}
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	b.WriteString(m.help.View(keys))
	return b.String()
}

func handResult(view game.View) string {
	winner, ok := view.Seat(view.WinnerID)
	if !ok {
		return "Hand over. Press Enter to deal"
	}
	s := fmt.Sprintf("%s won the pot", winner.Name)
	if view.WinningRank != nil {
		s += " with " + view.WinningRank.Describe()
	}
	return s + ". Press Enter to deal"
}

func availableActions(view game.View) string {
	toCall := view.ToCall(view.SeatID)
	actions := []string{ErrorStyle.Render("[fold]")}
	if toCall > 0 {
		actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call %d]", min(toCall, view.Self().Chips))))
	} else {
		actions = append(actions, SuccessStyle.Render("[check]"))
	}
	if view.Self().Chips > toCall {
		actions = append(actions, WarningStyle.Render("[raise N]"))
	}
	return "Actions: " + strings.Join(actions, " ")
}

// RenderSeats lists every seat with its stack, marking the dealer, the seat
// to act and folded seats.
func RenderSeats(view game.View) string {
	var b strings.Builder
	for _, seat := range view.Seats {
		marker := "  "
		switch {
		case seat.IsTurn:
			marker = "▶ "
		case seat.IsDealer:
			marker = "D "
		}
		line := fmt.Sprintf("%s%-10s %5d", marker, seat.Name, seat.Chips)
		if seat.Bet > 0 {
			line += fmt.Sprintf(" (%d)", seat.Bet)
		}
		if len(seat.Hand) > 0 && seat.ID != view.SeatID {
			line += " " + poker.FormatCards(seat.Hand)
		}
		switch {
		case seat.Folded:
			line = FoldedStyle.Render(line)
		case seat.IsTurn:
			line = TurnStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderLog renders the hand log, one entry per line.
func RenderLog(entries []game.LogEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		switch e.Kind {
		case game.EventHandStart:
			lines = append(lines, HeaderStyle.Render(" "+e.Message+" "))
		case game.EventReveal:
			lines = append(lines, "", WarningStyle.Render(e.Message))
		case game.EventWinner:
			lines = append(lines, SuccessStyle.Render(e.Message))
		default:
			lines = append(lines, e.Message)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatCards renders cards with suit colours, or "--" for none.
func FormatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "--"
	}
	formatted := make([]string, len(cards))
	for i, card := range cards {
		if card.Suit.IsRed() {
			formatted[i] = RedCardStyle.Render(card.String())
		} else {
			formatted[i] = BlackCardStyle.Render(card.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
