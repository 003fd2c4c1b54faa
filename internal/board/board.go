// ABOUTME: Pure projection of a game snapshot into renderable board state
// ABOUTME: Derives per-cell legality, turn ownership, marks and result labels

package board

import (
	"fmt"

	"github.com/markalston/tictactoe-client/internal/client"
)

// Result labels
const (
	LabelWin        = "Win"
	LabelLose       = "Lose"
	LabelDraw       = "Draw"
	LabelInProgress = "In Progress"
)

// NoOpponent is shown when a game has no second player to name
const NoOpponent = "—"

// Cell is one renderable board square
type Cell struct {
	Mark     client.Mark
	Disabled bool
}

// Projection is everything a view needs to draw one game for one user
type Projection struct {
	Cells       [client.BoardSize][client.BoardSize]Cell
	IsMyTurn    bool
	ResultLabel string
	MyMark      client.Mark
	TheirMark   client.Mark
	Opponent    string
	Headline    string
}

// Project maps a snapshot to its display state for username.
// It is deterministic and has no side effects.
func Project(snap *client.GameSnapshot, username string) Projection {
	var p Projection
	if snap == nil {
		for i := range p.Cells {
			for j := range p.Cells[i] {
				p.Cells[i][j].Disabled = true
			}
		}
		p.ResultLabel = LabelInProgress
		p.MyMark, p.TheirMark = client.MarkX, client.MarkO
		p.Opponent = NoOpponent
		return p
	}

	locked := snap.Status != client.StatusInProgress || len(snap.Players) < 2
	for i := range p.Cells {
		for j := range p.Cells[i] {
			mark := snap.Board[i][j]
			p.Cells[i][j] = Cell{
				Mark:     mark,
				Disabled: locked || mark != client.Empty,
			}
		}
	}

	p.IsMyTurn = snap.Status == client.StatusInProgress && snap.NextPlayer != "" && snap.NextPlayer == username
	p.ResultLabel = Label(snap, username)
	p.MyMark = MarkOf(snap, username)
	switch p.MyMark {
	case client.MarkX:
		p.TheirMark = client.MarkO
	case client.MarkO:
		p.TheirMark = client.MarkX
	}
	p.Opponent = opponentOrWaiting(snap, username)
	p.Headline = headline(snap, username, p.IsMyTurn)
	return p
}

// Label computes the result label of a game for username
func Label(snap *client.GameSnapshot, username string) string {
	switch {
	case snap == nil || snap.Status != client.StatusComplete:
		return LabelInProgress
	case snap.Winner == nil:
		return LabelDraw
	case *snap.Winner == username:
		return LabelWin
	default:
		return LabelLose
	}
}

// MarkOf returns the mark username plays: the creator is X, the joiner O.
// Users who are not players get client.Empty. Display derivation only.
func MarkOf(snap *client.GameSnapshot, username string) client.Mark {
	if snap == nil || username == "" {
		return client.Empty
	}
	switch {
	case len(snap.Players) > 0 && snap.Players[0] == username:
		return client.MarkX
	case len(snap.Players) > 1 && snap.Players[1] == username:
		return client.MarkO
	}
	return client.Empty
}

// Opponent returns the other player's name, or NoOpponent
func Opponent(players []string, username string) string {
	for _, p := range players {
		if p != username {
			return p
		}
	}
	return NoOpponent
}

func opponentOrWaiting(snap *client.GameSnapshot, username string) string {
	if len(snap.Players) < 2 {
		return "Waiting..."
	}
	return Opponent(snap.Players, username)
}

func headline(snap *client.GameSnapshot, username string, myTurn bool) string {
	switch snap.Status {
	case client.StatusWaiting:
		return "Waiting for opponent."
	case client.StatusComplete:
		switch Label(snap, username) {
		case LabelWin:
			return "You won!"
		case LabelLose:
			return "You lost."
		default:
			return "It was a draw."
		}
	}
	if len(snap.Players) < 2 {
		return "Waiting for opponent."
	}
	if myTurn {
		return fmt.Sprintf("Your turn (%s)", MarkOf(snap, username))
	}
	if snap.NextPlayer == "" {
		return "Current turn: —"
	}
	return fmt.Sprintf("Waiting for %s (%s)", snap.NextPlayer, MarkOf(snap, snap.NextPlayer))
}
