// ABOUTME: Games command for the tictactoe CLI
// ABOUTME: Lists the lobby's open games with what the user can do with each

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/lobby"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List open games",
	Long:  `List the games in the lobby. Games you can join are marked "join", your own unfinished games "resume".`,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runGames(cmd.Context(), os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(gamesCmd)
}

// lobbyGame is one listed game as the games command reports it
type lobbyGame struct {
	client.GameSummary
	Action string `json:"action,omitempty"`
}

// runGames lists open games and returns exit code
func runGames(ctx context.Context, w io.Writer) int {
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

	games, err := rt.lobby.ListOpenGames(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", lobby.Message(err))
		return 2
	}

	listed := lobbyGames(games, rt.store.Username())
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(listed))
	} else {
		fmt.Fprintln(w, formatGamesHuman(listed))
	}
	return 0
}

func lobbyGames(games []client.GameSummary, username string) []lobbyGame {
	out := make([]lobbyGame, 0, len(games))
	for _, g := range games {
		lg := lobbyGame{GameSummary: g}
		switch {
		case lobby.Resumable(g, username):
			lg.Action = "resume"
		case lobby.Joinable(g, username):
			lg.Action = "join"
		}
		out = append(out, lg)
	}
	return out
}

// formatGamesHuman formats the lobby listing for human readability
func formatGamesHuman(games []lobbyGame) string {
	if len(games) == 0 {
		return lobby.EmptyMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open games (%d):\n", len(games))
	for _, g := range games {
		line := fmt.Sprintf("  %-36s %-12s %s", lobby.Title(g.GameSummary), g.Status, g.Action)
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
