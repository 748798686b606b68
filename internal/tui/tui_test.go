package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/quartz"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/randutil"
	"github.com/lox/holdem-coach/internal/session"
	"github.com/lox/holdem-coach/poker"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func newTestModel(t *testing.T) (*Model, *session.Session) {
	t.Helper()
	sess := session.New(
		session.WithClock(quartz.NewMock(t)),
		session.WithRand(randutil.New(42)),
		session.WithPolicy(game.CallingStationPolicy{}),
	)
	t.Cleanup(func() { _ = sess.Close() })
	m := NewModel(sess, 2, nil)
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, sess
}

// submit types input and presses enter, running any resulting command.
func submit(t *testing.T, m *Model, sess *session.Session, input string) tea.Msg {
	t.Helper()
	m.actionInput.SetValue(input)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	var msg tea.Msg
	if cmd != nil {
		msg = cmd()
		if _, quit := msg.(tea.QuitMsg); !quit {
			m.Update(msg)
		}
	}
	m.Update(updateMsg(sess.Snapshot()))
	return msg
}

func TestModelPlaysAHand(t *testing.T) {
	t.Parallel()
	m, sess := newTestModel(t)

	assert.Contains(t, m.View(), "Press Enter to deal")

	submit(t, m, sess, "")
	require.Equal(t, 1, m.state.View.HandNumber)
	out := m.View()
	assert.Contains(t, out, "Hand #1")
	assert.Contains(t, out, "Actions:")
	assert.Contains(t, out, "[call 10]")

	submit(t, m, sess, "check")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, game.ErrCannotCheck.Error())

	submit(t, m, sess, "shove")
	assert.True(t, m.statusErr)

	submit(t, m, sess, "fold")
	assert.False(t, m.statusErr)
	assert.Equal(t, game.GameOver, m.state.View.Phase)
	assert.Contains(t, m.View(), "AlphaBot won the pot")
	assert.Contains(t, m.View(), "Hands: 1")
}

func TestModelCommands(t *testing.T) {
	t.Parallel()
	m, sess := newTestModel(t)

	submit(t, m, sess, "players 9")
	assert.True(t, m.statusErr)
	assert.Equal(t, 2, m.players)

	submit(t, m, sess, "players 4")
	assert.False(t, m.statusErr)
	assert.Equal(t, 4, m.players)

	submit(t, m, sess, "deal")
	assert.Len(t, m.state.View.Seats, 4)

	submit(t, m, sess, "assess")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, session.ErrNoCoach.Error())

	submit(t, m, sess, "review")
	assert.True(t, m.statusErr)

	msg := submit(t, m, sess, "quit")
	assert.IsType(t, tea.QuitMsg{}, msg)
	assert.Empty(t, m.View())
}

func TestSessionCloseQuits(t *testing.T) {
	t.Parallel()
	m, sess := newTestModel(t)

	require.NoError(t, sess.Close())
	msg := m.listen()()
	for {
		if _, ok := msg.(sessionClosedMsg); ok {
			break
		}
		msg = m.listen()()
	}
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderSeats(t *testing.T) {
	t.Parallel()
	table := game.NewTable(game.WithRand(randutil.New(1)))
	require.NoError(t, table.StartHand(4))

	out := RenderSeats(table.View(game.HumanSeatID))
	assert.Contains(t, out, "D You")
	assert.Contains(t, out, "AlphaBot")
	assert.Contains(t, out, "(10)")
	assert.Contains(t, out, "(20)")
	assert.Contains(t, out, "▶ GammaBot")
}

func TestRenderLogAndCards(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "--", FormatCards(nil))
	assert.Equal(t, "[A♠ K♥]", FormatCards(poker.MustParseCards("As Kh")))

	table := game.NewTable(game.WithRand(randutil.New(1)))
	require.NoError(t, table.StartHand(2))
	require.NoError(t, table.Apply(table.CurrentSeatID(), game.FoldAction()))

	out := RenderLog(table.Snapshot().Log)
	for _, e := range table.Snapshot().Log {
		assert.Contains(t, out, e.Message)
	}
}
