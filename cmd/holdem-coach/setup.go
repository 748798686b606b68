package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/lox/holdem-coach/internal/coach"
	"github.com/lox/holdem-coach/internal/config"
	"github.com/lox/holdem-coach/internal/randutil"
	"github.com/lox/holdem-coach/internal/session"
	"github.com/lox/holdem-coach/internal/store"
)

// env holds everything a command needs. close releases it in reverse order.
type env struct {
	cfg     *config.Config
	logger  *log.Logger
	store   store.Store
	closers []func() error
}

// loadConfig reads the dotenv file and the HCL config, applying flag
// overrides.
func (cli *CLI) loadConfig() (*config.Config, error) {
	if err := godotenv.Load(cli.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", cli.EnvFile, err)
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.Store != "" {
		cfg.Store.URL = cli.Store
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cli.Config, err)
	}
	return cfg, nil
}

// setup loads config and opens the logger and store. Interactive commands
// pass quiet so logs never reach the terminal unless a log file is set.
func (cli *CLI) setup(ctx context.Context, quiet bool) (*env, error) {
	cfg, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		e.closers = append(e.closers, f.Close)
		out = f
	}
	level, _ := log.ParseLevel(cfg.Log.Level)
	e.logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	st, err := store.Open(ctx, cfg.Store.URL)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st.Close)
	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && e.logger != nil {
			e.logger.Warn("Cleanup failed", "error", err)
		}
	}
	e.closers = nil
}

// newSession wires the configured table, bots, coach and store into a
// session and restores saved state.
func (e *env) newSession(ctx context.Context) (*session.Session, error) {
	cfg := e.cfg
	timing, err := cfg.SessionTiming()
	if err != nil {
		return nil, err
	}

	seed := randutil.Seed(cfg.Table.Seed)
	rngs := randutil.Split(seed, 2)
	e.logger.Info("Starting session", "seed", seed, "store", cfg.Store.URL)

	opts := []session.Option{
		session.WithLogger(e.logger),
		session.WithStore(e.store),
		session.WithRand(rngs[0]),
		session.WithPolicy(cfg.BotPolicy(rngs[1])),
		session.WithTiming(timing),
		session.WithHistoryLimit(cfg.Store.HistoryLimit),
		session.WithTableOptions(cfg.TableOptions()...),
	}
	if advisor := e.newCoach(); advisor != nil {
		opts = append(opts, session.WithCoach(advisor))
	}

	sess := session.New(opts...)
	if err := sess.Load(ctx); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("loading saved state: %w", err)
	}
	return sess, nil
}

// newCoach returns nil when the coach is disabled or no API key is set.
func (e *env) newCoach() *coach.Coach {
	if e.cfg.Coach.Disabled {
		return nil
	}
	client := coach.NewClient(e.cfg.CoachClientOptions()...)
	if !client.Enabled() {
		e.logger.Warn("No API key set, coaching is disabled", "env", "OPENAI_API_KEY")
		return nil
	}
	e.logger.Info("Coach enabled", "model", client.Model())
	return coach.New(client, coach.WithLogger(e.logger))
}
