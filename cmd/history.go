// ABOUTME: History command for the tictactoe CLI
// ABOUTME: Shows recent finished games, result totals and unfinished games

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/lobby"
)

// defaultHistoryLimit matches the history screen of the interactive mode
const defaultHistoryLimit = 10

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your game history and results",
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runHistory(cmd.Context(), os.Stdout, historyLimit))
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", defaultHistoryLimit, "Number of recent games to list")
	rootCmd.AddCommand(historyCmd)
}

// historyReport is the JSON shape of the history command
type historyReport struct {
	Username   string        `json:"username"`
	Summary    board.Summary `json:"summary"`
	Recent     []board.Row   `json:"recent"`
	More       int           `json:"more"`
	Unfinished []string      `json:"unfinished"`
}

// runHistory loads history and the lobby side by side and returns exit code
func runHistory(ctx context.Context, w io.Writer, limit int) int {
	rt, err := newRuntime(ctx, logOutput)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer rt.Close()

	if err := rt.restore(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", sessionError(err))
		return 2
	}

	var (
		history []client.GameSnapshot
		open    []client.GameSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = rt.lobby.ListHistory(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = rt.lobby.ListOpenGames(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(w, "Error: %s\n", lobby.Message(err))
		return 2
	}

	report := buildHistoryReport(rt.store.Username(), history, open, limit)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(report))
	} else {
		fmt.Fprintln(w, formatHistoryHuman(report))
	}
	return 0
}

func buildHistoryReport(username string, history []client.GameSnapshot, open []client.GameSummary, limit int) historyReport {
	recent, more := board.Recent(board.Rows(history, username), limit)
	report := historyReport{
		Username:   username,
		Summary:    board.Stats(history, username),
		Recent:     recent,
		More:       more,
		Unfinished: []string{},
	}
	for _, g := range open {
		if lobby.Resumable(g, username) {
			report.Unfinished = append(report.Unfinished, g.ID.String())
		}
	}
	return report
}

// formatHistoryHuman formats the history report for human readability
func formatHistoryHuman(r historyReport) string {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "Games: %d  Win: %d  Lose: %d  Draw: %d\n", s.Total, s.Win, s.Lose, s.Draw)

	if len(r.Recent) == 0 {
		b.WriteString("No finished games yet.\n")
	} else {
		fmt.Fprintf(&b, "\n%-8s %-16s %s\n", "Game", "Opponent", "Result")
		for _, row := range r.Recent {
			fmt.Fprintf(&b, "%-8s %-16s %s\n", "#"+row.ID.String(), row.Opponent, row.Result)
		}
		if r.More > 0 {
			fmt.Fprintf(&b, "And %d more…\n", r.More)
		}
	}

	if len(r.Unfinished) > 0 {
		fmt.Fprintf(&b, "\nUnfinished: #%s (resume with 'tictactoe show ID')\n", strings.Join(r.Unfinished, ", #"))
	}
	return strings.TrimRight(b.String(), "\n")
}
