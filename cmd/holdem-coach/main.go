package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"holdem-coach.hcl" type:"path" help:"Path to the HCL config file"`
	EnvFile  string           `default:".env" type:"path" help:"Dotenv file loaded before reading the environment"`
	LogLevel string           `help:"Override the configured log level (debug|info|warn|error)"`
	Store    string           `help:"Override the store URL (memory:, file:DIR, sqlite:PATH, postgres://...)"`

	Play     PlayCmd     `cmd:"" default:"withargs" help:"Play against bots in the terminal with a coach"`
	Serve    ServeCmd    `cmd:"" help:"Serve the table over HTTP and websocket"`
	Simulate SimulateCmd `cmd:"" help:"Play bot-only hands and check table invariants"`
	History  HistoryCmd  `cmd:"" help:"Print stored hand history"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-coach"),
		kong.Description("Texas Hold'em against bots with an AI coach"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
