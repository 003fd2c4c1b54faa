// ABOUTME: Game rules used by the in-process authority
// ABOUTME: Seat assignment, move validation and win/draw detection

package authority

import (
	"errors"

	"github.com/markalston/tictactoe-client/internal/client"
)

var (
	errGameFull      = errors.New("game is full")
	errAlreadyJoined = errors.New("already joined this game")
	errNotStarted    = errors.New("game has not started")
	errGameOver      = errors.New("game is already complete")
	errNotYourTurn   = errors.New("not your turn")
	errNotAPlayer    = errors.New("you are not a player in this game")
	errCellOccupied  = errors.New("cell is already occupied")
	errInvalidCell   = errors.New("invalid cell")
)

// winLines lists every row, column and diagonal as (row, col) pairs
var winLines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

type game struct {
	snap client.GameSnapshot
}

func newGame(id client.GameID, creator string) *game {
	return &game{snap: client.GameSnapshot{
		ID:      id,
		Players: []string{creator},
		Status:  client.StatusWaiting,
	}}
}

func (g *game) join(username string) error {
	if g.snap.HasPlayer(username) {
		return errAlreadyJoined
	}
	if g.snap.Full() || g.snap.Status != client.StatusWaiting {
		return errGameFull
	}
	g.snap.Players = append(g.snap.Players, username)
	g.snap.Status = client.StatusInProgress
	g.snap.NextPlayer = g.snap.Players[0]
	return nil
}

func (g *game) markFor(username string) client.Mark {
	if len(g.snap.Players) > 0 && g.snap.Players[0] == username {
		return client.MarkX
	}
	return client.MarkO
}

func (g *game) move(username string, m client.Move) error {
	switch g.snap.Status {
	case client.StatusWaiting:
		return errNotStarted
	case client.StatusComplete:
		return errGameOver
	}
	if !g.snap.HasPlayer(username) {
		return errNotAPlayer
	}
	if g.snap.NextPlayer != username {
		return errNotYourTurn
	}
	if !m.Valid() {
		return errInvalidCell
	}
	if g.snap.Occupied(m.X, m.Y) {
		return errCellOccupied
	}

	g.snap.Board[m.X][m.Y] = g.markFor(username)
	g.settle(username)
	return nil
}

// settle updates status, winner and next player after mover's move
func (g *game) settle(mover string) {
	b := g.snap.Board
	for _, line := range winLines {
		a, c, d := b[line[0][0]][line[0][1]], b[line[1][0]][line[1][1]], b[line[2][0]][line[2][1]]
		if a != client.Empty && a == c && c == d {
			winner := mover
			g.snap.Status = client.StatusComplete
			g.snap.Winner = &winner
			g.snap.NextPlayer = ""
			return
		}
	}

	for i := range b {
		for j := range b[i] {
			if b[i][j] == client.Empty {
				g.snap.NextPlayer = g.opponentOf(mover)
				return
			}
		}
	}

	// the board is full without a line
	g.snap.Status = client.StatusComplete
	g.snap.Winner = nil
	g.snap.NextPlayer = ""
}

func (g *game) opponentOf(username string) string {
	for _, p := range g.snap.Players {
		if p != username {
			return p
		}
	}
	return username
}

// view returns a deep copy safe to hand to a response encoder
func (g *game) view() client.GameSnapshot {
	s := g.snap
	s.Players = append([]string(nil), g.snap.Players...)
	if g.snap.Winner != nil {
		w := *g.snap.Winner
		s.Winner = &w
	}
	return s
}
