package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/tui"
)

type PlayCmd struct {
	Players int `short:"p" help:"Seats at the table including yours (2-5, default from config)"`
}

func (c *PlayCmd) Run(cli *CLI) error {
	ctx := context.Background()
	e, err := cli.setup(ctx, true)
	if err != nil {
		return err
	}
	defer e.close()

	players := e.cfg.Table.Players
	if c.Players != 0 {
		players = c.Players
	}
	if players < game.MinPlayers || players > game.MaxPlayers {
		return fmt.Errorf("%w: %d", game.ErrInvalidPlayerCount, players)
	}

	sess, err := e.newSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			e.logger.Error("Failed to save session", "error", err)
		}
	}()

	model := tui.NewModel(sess, players, e.logger)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
