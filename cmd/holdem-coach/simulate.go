package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/randutil"
	"github.com/lox/holdem-coach/internal/simulator"
)

type SimulateCmd struct {
	Hands   int   `default:"1000" help:"Hands per table"`
	Players int   `short:"p" default:"3" help:"Bots per table (2-5)"`
	Tables  int   `default:"4" help:"Tables played in parallel"`
	Seed    int64 `help:"Seed for reproducible runs (0 = random)"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	level, _ := log.ParseLevel(cfg.Log.Level)
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	seed := randutil.Seed(c.Seed)
	logger.Info("Simulating", "hands", c.Hands, "players", c.Players, "tables", c.Tables, "seed", seed)

	tableOpts := append(cfg.TableOptions(), game.WithHumanSeat("", ""))
	sim := simulator.New(simulator.Config{
		Hands:        c.Hands,
		Players:      c.Players,
		Tables:       c.Tables,
		Seed:         seed,
		Policy:       func(rng *rand.Rand) game.BotPolicy { return cfg.BotPolicy(rng) },
		TableOptions: tableOpts,
		Logger:       logger,
	})

	start := time.Now()
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Print(simulator.Summary(result))
	fmt.Printf("Took %s (seed %d)\n", time.Since(start).Round(time.Millisecond), seed)
	return nil
}
