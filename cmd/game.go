// ABOUTME: Game commands for the tictactoe CLI
// ABOUTME: Create, join, show, move and watch drive the game controller without a TUI

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/game"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new game and wait in the lobby for an opponent",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runOpen(cmd.Context(), os.Stdout, game.ActionCreate, ""))
	},
}

var joinCmd = &cobra.Command{
	Use:   "join ID",
	Short: "Join a waiting game",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runOpen(cmd.Context(), os.Stdout, game.ActionJoin, gameID(args[0])))
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the board of a game",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runOpen(cmd.Context(), os.Stdout, game.ActionResume, gameID(args[0])))
	},
}

var moveCmd = &cobra.Command{
	Use:   "move ID (CELL | ROW COL)",
	Short: "Place your mark",
	Long: `Place your mark in a game.

CELL numbers the board 1-9 left to right, top to bottom, as 'show' prints
it. ROW and COL are zero-based.

Exit codes:
  0 - move accepted
  1 - move refused (not your turn, game over, cell taken)
  2 - error`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		move, err := parseMove(args[1:])
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			exitWith(2)
			return
		}
		exitWith(runMove(cmd.Context(), os.Stdout, gameID(args[0]), move))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch ID",
	Short: "Follow a game until it ends",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runWatch(cmd.Context(), os.Stdout, gameID(args[0])))
	},
}

func init() {
	rootCmd.AddCommand(createCmd, joinCmd, showCmd, moveCmd, watchCmd)
}

func gameID(arg string) client.GameID {
	return client.GameID(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
}

// parseMove reads either a 1-9 cell number or a zero-based row and column
func parseMove(args []string) (client.Move, error) {
	switch len(args) {
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > client.BoardSize*client.BoardSize {
			return client.Move{}, fmt.Errorf("cell must be a number from 1 to 9, got %q", args[0])
		}
		return client.Move{X: (n - 1) / client.BoardSize, Y: (n - 1) % client.BoardSize}, nil
	case 2:
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		move := client.Move{X: x, Y: y}
		if errX != nil || errY != nil || !move.Valid() {
			return client.Move{}, fmt.Errorf("row and column must be 0, 1 or 2, got %q %q", args[0], args[1])
		}
		return move, nil
	default:
		return client.Move{}, errors.New("expected a cell number or a row and column")
	}
}

// settled reports that the controller has no request in flight
func settled(c *game.Controller) bool {
	_, pending := c.Status().(game.Pending)
	return !pending
}

// drive runs cmd until the controller settles. A nil cmd means the
// controller refused the request locally; the reason is in its status.
func drive(ctx context.Context, c *game.Controller, cmd tea.Cmd) error {
	if cmd != nil {
		if err := game.Drive(ctx, c, cmd, settled); err != nil {
			return err
		}
	}
	if failed, ok := c.Status().(game.Failed); ok {
		return failed.Err
	}
	return nil
}

// openGame creates, joins or resumes a game on c
func openGame(ctx context.Context, c *game.Controller, action game.Action, id client.GameID) error {
	switch action {
	case game.ActionCreate:
		return drive(ctx, c, c.Create())
	case game.ActionJoin:
		return drive(ctx, c, c.Join(id))
	default:
		return drive(ctx, c, c.Resume(id))
	}
}

// gameReport is the JSON shape of a game as the game commands print it
type gameReport struct {
	Game     *client.GameSnapshot `json:"game"`
	State    string               `json:"state"`
	Result   string               `json:"result"`
	MyMark   client.Mark          `json:"my_mark"`
	IsMyTurn bool                 `json:"is_my_turn"`
	Headline string               `json:"headline"`
	Status   string               `json:"status,omitempty"`
}

func reportOf(c *game.Controller) gameReport {
	p := c.Projection()
	return gameReport{
		Game:     c.Snapshot(),
		State:    c.State().String(),
		Result:   p.ResultLabel,
		MyMark:   p.MyMark,
		IsMyTurn: p.IsMyTurn,
		Headline: p.Headline,
		Status:   c.StatusText(),
	}
}

func printGame(w io.Writer, c *game.Controller) {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(reportOf(c)))
		return
	}
	fmt.Fprintln(w, formatGameHuman(c.Snapshot(), c.Projection(), c.StatusText()))
}

// runOpen creates, joins or shows a game and returns exit code
func runOpen(ctx context.Context, w io.Writer, action game.Action, id client.GameID) int {
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

	c := rt.controller()
	defer c.Exit()
	if err := openGame(ctx, c, action, id); err != nil {
		fmt.Fprintf(w, "Error: %s\n", game.Message(err))
		return 2
	}

	printGame(w, c)
	return 0
}

// runMove places a mark and returns exit code: 1 when the move is refused
func runMove(ctx context.Context, w io.Writer, id client.GameID, move client.Move) int {
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

	c := rt.controller()
	defer c.Exit()
	if err := openGame(ctx, c, game.ActionResume, id); err != nil {
		fmt.Fprintf(w, "Error: %s\n", game.Message(err))
		return 2
	}

	if err := c.Validate(move); err != nil {
		fmt.Fprintf(w, "Refused: %s\n", game.Message(err))
		return 1
	}
	if err := drive(ctx, c, c.Submit(move)); err != nil {
		if refused(err) {
			fmt.Fprintf(w, "Refused: %s\n", game.Message(err))
			return 1
		}
		fmt.Fprintf(w, "Error: %s\n", game.Message(err))
		return 2
	}

	printGame(w, c)
	return 0
}

// refused reports a move the server turned down rather than failed on
func refused(err error) bool {
	return errors.Is(err, client.ErrRejected) ||
		errors.Is(err, client.ErrConflict) ||
		errors.Is(err, client.ErrForbidden)
}

// runWatch prints the game every time it changes until it ends.
// Interrupting the watch is not an error.
func runWatch(ctx context.Context, w io.Writer, id client.GameID) int {
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

	c := rt.controller()
	defer c.Exit()

	cmd := c.Resume(id)
	if cmd == nil {
		fmt.Fprintf(w, "Error: %s\n", c.StatusText())
		return 2
	}

	var shown *client.GameSnapshot
	done := func(c *game.Controller) bool {
		if snap := c.Snapshot(); snap != nil && !snap.Equal(shown) {
			shown = snap
			printGame(w, c)
		}
		switch c.State() {
		case game.StateComplete:
			return true
		case game.StateLobby:
			// Left the game: either the open failed or the game went away
			return !c.Polling() && settled(c)
		}
		return false
	}

	err = game.Drive(ctx, c, cmd, done)
	switch {
	case errors.Is(err, context.Canceled):
		return 0
	case err != nil:
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if failed, ok := c.Status().(game.Failed); ok {
		fmt.Fprintf(w, "Error: %s\n", game.Message(failed.Err))
		return 2
	}
	return 0
}

// formatGameHuman draws the board with numbered free cells
func formatGameHuman(snap *client.GameSnapshot, p board.Projection, status string) string {
	if snap == nil {
		return status
	}

	var b strings.Builder
	mine := string(p.MyMark)
	if mine == "" {
		mine = "-"
	}
	fmt.Fprintf(&b, "Game #%s  You: %s  Opponent: %s\n\n", snap.ID, mine, p.Opponent)
	for i, row := range p.Cells {
		cells := make([]string, len(row))
		for j, cell := range row {
			switch {
			case cell.Mark != client.Empty:
				cells[j] = string(cell.Mark)
			case !cell.Disabled:
				cells[j] = strconv.Itoa(i*client.BoardSize + j + 1)
			default:
				cells[j] = " "
			}
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(cells, " | "))
		if i < len(p.Cells)-1 {
			b.WriteString("  ---------\n")
		}
	}

	b.WriteString("\n" + p.Headline)
	if p.ResultLabel != board.LabelInProgress {
		fmt.Fprintf(&b, "\nResult: %s", p.ResultLabel)
	}
	if status != "" {
		fmt.Fprintf(&b, "\n%s", status)
	}
	return b.String()
}
