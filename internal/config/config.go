// Package config loads holdem-coach.hcl.
package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/holdem-coach/internal/coach"
	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/session"
)

// DefaultFile is looked up in the working directory when no file is named.
const DefaultFile = "holdem-coach.hcl"

// Config is the complete configuration. After Load every block is non-nil.
type Config struct {
	Table  *TableConfig  `hcl:"table,block"`
	Bots   *BotsConfig   `hcl:"bots,block"`
	Timing *TimingConfig `hcl:"timing,block"`
	Store  *StoreConfig  `hcl:"store,block"`
	Coach  *CoachConfig  `hcl:"coach,block"`
	Server *ServerConfig `hcl:"server,block"`
	Log    *LogConfig    `hcl:"log,block"`
}

// TableConfig sets up the table and its seats.
type TableConfig struct {
	Players       int      `hcl:"players,optional"`
	SmallBlind    int      `hcl:"small_blind,optional"`
	BigBlind      int      `hcl:"big_blind,optional"`
	StartingStack int      `hcl:"starting_stack,optional"`
	PlayerName    string   `hcl:"player_name,optional"`
	BotNames      []string `hcl:"bot_names,optional"`
	Seed          int64    `hcl:"seed,optional"`
}

// BotsConfig picks the bot policy. Chances are fractions of one.
type BotsConfig struct {
	Policy       string  `hcl:"policy,optional"`
	FoldChance   float64 `hcl:"fold_chance,optional"`
	RaiseChance  float64 `hcl:"raise_chance,optional"`
	RaiseCeiling int     `hcl:"raise_ceiling,optional"`
	RaiseSize    int     `hcl:"raise_size,optional"`
}

// TimingConfig holds Go duration strings, e.g. "1.5s".
type TimingConfig struct {
	BotDelayMin   string `hcl:"bot_delay_min,optional"`
	BotDelayMax   string `hcl:"bot_delay_max,optional"`
	PhaseDelay    string `hcl:"phase_delay,optional"`
	ShowdownDelay string `hcl:"showdown_delay,optional"`
}

// StoreConfig names the persistence backend, see store.Open.
type StoreConfig struct {
	URL          string `hcl:"url,optional"`
	HistoryLimit int    `hcl:"history_limit,optional"`
}

// CoachConfig configures the chat-completions client. The API key itself
// only ever comes from the environment.
type CoachConfig struct {
	Disabled     bool   `hcl:"disabled,optional"`
	BaseURL      string `hcl:"base_url,optional"`
	Model        string `hcl:"model,optional"`
	APIKeyHeader string `hcl:"api_key_header,optional"`
	Timeout      string `hcl:"timeout,optional"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

const (
	PolicyWeighted = "weighted"
	PolicyCall     = "call"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// DefaultStoreURL keeps state in the user's config directory.
func DefaultStoreURL() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return "file:" + filepath.Join(dir, "holdem-coach")
}

// Load reads filename, returning the defaults when it does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults for anything unset.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var c Config
	diags = gohcl.DecodeBody(file.Body, nil, &c)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Table == nil {
		c.Table = &TableConfig{}
	}
	if c.Table.Players == 0 {
		c.Table.Players = 3
	}
	if c.Table.SmallBlind == 0 {
		c.Table.SmallBlind = game.DefaultSmallBlind
	}
	if c.Table.BigBlind == 0 {
		c.Table.BigBlind = 2 * c.Table.SmallBlind
	}
	if c.Table.StartingStack == 0 {
		c.Table.StartingStack = game.DefaultStartingStack
	}
	if c.Table.PlayerName == "" {
		c.Table.PlayerName = "You"
	}
	if len(c.Table.BotNames) == 0 {
		c.Table.BotNames = append([]string(nil), game.DefaultBotNames...)
	}

	if c.Bots == nil {
		c.Bots = &BotsConfig{}
	}
	if c.Bots.Policy == "" {
		c.Bots.Policy = PolicyWeighted
	}
	if c.Bots.FoldChance == 0 {
		c.Bots.FoldChance = 0.15
	}
	if c.Bots.RaiseChance == 0 {
		c.Bots.RaiseChance = 0.15
	}
	if c.Bots.RaiseCeiling == 0 {
		c.Bots.RaiseCeiling = 200
	}

	def := session.DefaultTiming()
	if c.Timing == nil {
		c.Timing = &TimingConfig{}
	}
	if c.Timing.BotDelayMin == "" {
		c.Timing.BotDelayMin = def.BotDelayMin.String()
	}
	if c.Timing.BotDelayMax == "" {
		c.Timing.BotDelayMax = def.BotDelayMax.String()
	}
	if c.Timing.PhaseDelay == "" {
		c.Timing.PhaseDelay = def.PhaseDelay.String()
	}
	if c.Timing.ShowdownDelay == "" {
		c.Timing.ShowdownDelay = def.ShowdownDelay.String()
	}

	if c.Store == nil {
		c.Store = &StoreConfig{}
	}
	if c.Store.URL == "" {
		c.Store.URL = DefaultStoreURL()
	}
	if c.Store.HistoryLimit == 0 {
		c.Store.HistoryLimit = session.DefaultHistoryLimit
	}

	if c.Coach == nil {
		c.Coach = &CoachConfig{}
	}
	if c.Coach.Timeout == "" {
		c.Coach.Timeout = coach.DefaultTimeout.String()
	}

	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks ranges and parses every duration.
func (c *Config) Validate() error {
	t := c.Table
	if t.Players < game.MinPlayers || t.Players > game.MaxPlayers {
		return fmt.Errorf("table: players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, t.Players)
	}
	if t.SmallBlind <= 0 {
		return fmt.Errorf("table: small blind must be positive")
	}
	if t.BigBlind < t.SmallBlind {
		return fmt.Errorf("table: big blind must be at least the small blind")
	}
	if t.StartingStack < t.BigBlind {
		return fmt.Errorf("table: starting stack must cover the big blind")
	}

	switch c.Bots.Policy {
	case PolicyWeighted, PolicyCall:
	default:
		return fmt.Errorf("bots: invalid policy %s", c.Bots.Policy)
	}
	for name, p := range map[string]float64{"fold_chance": c.Bots.FoldChance, "raise_chance": c.Bots.RaiseChance} {
		if p < 0 || p > 1 {
			return fmt.Errorf("bots: %s must be between 0 and 1", name)
		}
	}
	if c.Bots.FoldChance+c.Bots.RaiseChance > 1 {
		return fmt.Errorf("bots: fold_chance and raise_chance add up to more than 1")
	}
	if c.Bots.RaiseSize < 0 {
		return fmt.Errorf("bots: raise_size must not be negative")
	}

	timing, err := c.SessionTiming()
	if err != nil {
		return err
	}
	if timing.BotDelayMax < timing.BotDelayMin {
		return fmt.Errorf("timing: bot_delay_max is below bot_delay_min")
	}
	if _, err := c.CoachTimeout(); err != nil {
		return err
	}

	if c.Store.HistoryLimit < 1 {
		return fmt.Errorf("store: history_limit must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// SessionTiming parses the timing block.
func (c *Config) SessionTiming() (session.Timing, error) {
	var t session.Timing
	for _, d := range []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"bot_delay_min", c.Timing.BotDelayMin, &t.BotDelayMin},
		{"bot_delay_max", c.Timing.BotDelayMax, &t.BotDelayMax},
		{"phase_delay", c.Timing.PhaseDelay, &t.PhaseDelay},
		{"showdown_delay", c.Timing.ShowdownDelay, &t.ShowdownDelay},
	} {
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return t, fmt.Errorf("timing: %s: %w", d.name, err)
		}
		if v < 0 {
			return t, fmt.Errorf("timing: %s must not be negative", d.name)
		}
		*d.dst = v
	}
	return t, nil
}

func (c *Config) CoachTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Coach.Timeout)
	if err != nil {
		return 0, fmt.Errorf("coach: timeout: %w", err)
	}
	return d, nil
}

// TableOptions turns the table block into game options.
func (c *Config) TableOptions() []game.TableOption {
	return []game.TableOption{
		game.WithBlinds(c.Table.SmallBlind, c.Table.BigBlind),
		game.WithStartingStack(c.Table.StartingStack),
		game.WithHumanSeat(game.HumanSeatID, c.Table.PlayerName),
		game.WithSeatNames(c.Table.BotNames...),
	}
}

// BotPolicy builds the configured policy drawing from rng.
func (c *Config) BotPolicy(rng *rand.Rand) game.BotPolicy {
	if c.Bots.Policy == PolicyCall {
		return game.CallingStationPolicy{}
	}
	p := game.NewWeightedRandomPolicy(rng)
	p.FoldChance = c.Bots.FoldChance
	p.RaiseChance = c.Bots.RaiseChance
	p.RaiseCeiling = c.Bots.RaiseCeiling
	p.RaiseSize = c.Bots.RaiseSize
	return p
}

// CoachClientOptions turns the coach block into client options. Unset values
// leave the environment defaults in place.
func (c *Config) CoachClientOptions() []coach.ClientOption {
	var opts []coach.ClientOption
	if c.Coach.BaseURL != "" {
		opts = append(opts, coach.WithBaseURL(c.Coach.BaseURL))
	}
	if c.Coach.Model != "" {
		opts = append(opts, coach.WithModel(c.Coach.Model))
	}
	if c.Coach.APIKeyHeader != "" {
		opts = append(opts, coach.WithAPIKeyHeader(c.Coach.APIKeyHeader))
	}
	if d, err := c.CoachTimeout(); err == nil && d > 0 {
		opts = append(opts, coach.WithTimeout(d))
	}
	return opts
}

// ServerAddress returns host:port for the HTTP listener.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}
