package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/lox/holdem-coach/internal/game"
	"github.com/lox/holdem-coach/internal/store"
	"github.com/lox/holdem-coach/internal/training"
	"github.com/lox/holdem-coach/poker"
)

type HistoryCmd struct {
	ID    string `arg:"" optional:"" help:"Show one hand in full"`
	Limit int    `short:"n" default:"20" help:"Number of hands to list (0 = all)"`
}

func (c *HistoryCmd) Run(cli *CLI) error {
	ctx := context.Background()
	e, err := cli.setup(ctx, false)
	if err != nil {
		return err
	}
	defer e.close()

	var history []game.HandRecord
	if _, err := store.LoadJSON(ctx, e.store, store.KeyHistory, &history); err != nil {
		return err
	}

	if c.ID != "" {
		for _, rec := range history {
			if rec.ID == c.ID {
				printHand(os.Stdout, rec)
				return nil
			}
		}
		return fmt.Errorf("hand %s not found", c.ID)
	}

	if len(history) == 0 {
		fmt.Println("No hands recorded yet.")
		return nil
	}
	shown := history
	if c.Limit > 0 && len(shown) > c.Limit {
		shown = shown[:c.Limit]
	}
	printHistory(os.Stdout, shown)

	stats := training.Summarize(history, game.HumanSeatID)
	fmt.Printf("\n%s\n", stats)
	return nil
}

func printHistory(w io.Writer, records []game.HandRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tHAND\tSEATS\tPOT\tWINNER\tRESULT")
	for _, rec := range records {
		winner := rec.WinnerID
		if s, ok := rec.Winner(); ok {
			winner = s.Name
		}
		result := "-"
		if s, ok := rec.Seat(game.HumanSeatID); ok {
			result = fmt.Sprintf("%+d", s.Delta())
		}
		fmt.Fprintf(tw, "%s\t%s\t#%d\t%d\t%d\t%s\t%s\n",
			rec.ID, rec.Timestamp.Local().Format("2006-01-02 15:04"), rec.HandNumber,
			len(rec.Seats), rec.Pot, winner, result)
	}
	_ = tw.Flush()
}

func printHand(w io.Writer, rec game.HandRecord) {
	fmt.Fprintf(w, "Hand #%d (%s) at %s\n\n", rec.HandNumber, rec.ID, rec.Timestamp.Local().Format("2006-01-02 15:04:05"))
	for _, s := range rec.Seats {
		status := ""
		if s.Folded {
			status = " (folded)"
		}
		fmt.Fprintf(w, "  %-10s %-8s %6d -> %-6d%s\n", s.Name, poker.FormatCards(s.Hand), s.ChipsBefore, s.ChipsAfter, status)
	}
	fmt.Fprintf(w, "\nBoard: %s\n\n", poker.FormatCards(rec.CommunityCards))
	for _, entry := range rec.Log {
		fmt.Fprintln(w, entry.Message)
	}
	if rec.AIAnalysis != "" {
		fmt.Fprintf(w, "\nCoach: %s\n", rec.AIAnalysis)
	}
}
