// ABOUTME: Tests for the board projection and result statistics
// ABOUTME: Table-driven checks of cell legality, turn ownership and labels

package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markalston/tictactoe-client/internal/client"
)

func snapshot(status client.Status, next string, players ...string) *client.GameSnapshot {
	return &client.GameSnapshot{ID: "1", Players: players, Status: status, NextPlayer: next}
}

func won(by string, players ...string) client.GameSnapshot {
	s := snapshot(client.StatusComplete, "", players...)
	s.Winner = &by
	return *s
}

func TestProject_Nil(t *testing.T) {
	p := Project(nil, "alice")
	for i := range p.Cells {
		for j := range p.Cells[i] {
			assert.True(t, p.Cells[i][j].Disabled, "cell %d,%d", i, j)
		}
	}
	assert.False(t, p.IsMyTurn)
	assert.Equal(t, LabelInProgress, p.ResultLabel)
	assert.Equal(t, NoOpponent, p.Opponent)
}

func TestProject_MyTurn(t *testing.T) {
	snap := snapshot(client.StatusInProgress, "alice", "alice", "bob")
	snap.Board[1][1] = client.MarkO

	p := Project(snap, "alice")
	assert.True(t, p.IsMyTurn)
	assert.Equal(t, client.MarkX, p.MyMark)
	assert.Equal(t, client.MarkO, p.TheirMark)
	assert.Equal(t, "bob", p.Opponent)
	assert.Equal(t, "Your turn (X)", p.Headline)
	assert.True(t, p.Cells[1][1].Disabled, "occupied cell")
	assert.False(t, p.Cells[0][0].Disabled, "free cell in a live game")
	assert.Equal(t, client.MarkO, p.Cells[1][1].Mark)
}

func TestProject_TheirTurn(t *testing.T) {
	p := Project(snapshot(client.StatusInProgress, "alice", "alice", "bob"), "bob")
	assert.False(t, p.IsMyTurn)
	assert.Equal(t, client.MarkO, p.MyMark)
	assert.Equal(t, "Waiting for alice (X)", p.Headline)
}

func TestProject_LockedBoards(t *testing.T) {
	tests := map[string]*client.GameSnapshot{
		"waiting":        snapshot(client.StatusWaiting, "", "alice"),
		"one player":     snapshot(client.StatusInProgress, "alice", "alice"),
		"complete":       snapshot(client.StatusComplete, "", "alice", "bob"),
		"unknown status": snapshot(client.Status("paused"), "alice", "alice", "bob"),
	}
	for name, snap := range tests {
		t.Run(name, func(t *testing.T) {
			p := Project(snap, "alice")
			for i := range p.Cells {
				for j := range p.Cells[i] {
					assert.True(t, p.Cells[i][j].Disabled)
				}
			}
			assert.False(t, p.IsMyTurn)
		})
	}
}

func TestProject_NonPlayerHasNoMark(t *testing.T) {
	p := Project(snapshot(client.StatusInProgress, "alice", "alice", "bob"), "carol")
	assert.Equal(t, client.Empty, p.MyMark)
	assert.Equal(t, client.Empty, p.TheirMark)
	assert.False(t, p.IsMyTurn)
	assert.Equal(t, "Waiting for alice (X)", p.Headline)

	assert.Equal(t, client.MarkX, MarkOf(snapshot(client.StatusWaiting, "", "alice"), "alice"))
	assert.Equal(t, client.Empty, MarkOf(snapshot(client.StatusWaiting, "", "alice"), "bob"))
	assert.Equal(t, client.Empty, MarkOf(nil, "alice"))
}

func TestProject_Waiting(t *testing.T) {
	p := Project(snapshot(client.StatusWaiting, "", "alice"), "alice")
	assert.Equal(t, "Waiting...", p.Opponent)
	assert.Equal(t, "Waiting for opponent.", p.Headline)
}

func TestProject_IsDeterministic(t *testing.T) {
	snap := snapshot(client.StatusInProgress, "bob", "alice", "bob")
	assert.Equal(t, Project(snap, "bob"), Project(snap, "bob"))
}

func TestLabel(t *testing.T) {
	draw := snapshot(client.StatusComplete, "", "alice", "bob")
	win := won("alice", "alice", "bob")

	assert.Equal(t, LabelInProgress, Label(nil, "alice"))
	assert.Equal(t, LabelInProgress, Label(snapshot(client.StatusInProgress, "bob", "alice", "bob"), "alice"))
	assert.Equal(t, LabelDraw, Label(draw, "alice"))
	assert.Equal(t, LabelWin, Label(&win, "alice"))
	assert.Equal(t, LabelLose, Label(&win, "bob"))
	assert.Equal(t, LabelLose, Label(&win, "carol"))
}

func TestOpponent(t *testing.T) {
	assert.Equal(t, "bob", Opponent([]string{"alice", "bob"}, "alice"))
	assert.Equal(t, "alice", Opponent([]string{"alice", "bob"}, "bob"))
	assert.Equal(t, NoOpponent, Opponent([]string{"alice"}, "alice"))
	assert.Equal(t, NoOpponent, Opponent(nil, "alice"))
}

func TestStats(t *testing.T) {
	games := []client.GameSnapshot{
		won("alice", "alice", "bob"),
		won("bob", "alice", "bob"),
		won("alice", "carol", "alice"),
		*snapshot(client.StatusComplete, "", "alice", "bob"),
		*snapshot(client.StatusInProgress, "alice", "alice", "bob"),
	}

	s := Stats(games, "alice")
	assert.Equal(t, Summary{Win: 2, Lose: 1, Draw: 1, Total: 5}, s)
	assert.Equal(t, Summary{}, Stats(nil, "alice"))
}

func TestRowsAndRecent(t *testing.T) {
	games := []client.GameSnapshot{
		won("alice", "alice", "bob"),
		won("bob", "alice", "bob"),
		*snapshot(client.StatusComplete, "", "alice"),
	}
	games[1].ID, games[2].ID = "2", "3"

	rows := Rows(games, "alice")
	assert.Equal(t, []Row{
		{ID: "1", Opponent: "bob", Result: LabelWin},
		{ID: "2", Opponent: "bob", Result: LabelLose},
		{ID: "3", Opponent: NoOpponent, Result: LabelDraw},
	}, rows)

	recent, more := Recent(rows, 2)
	assert.Len(t, recent, 2)
	assert.Equal(t, 1, more)

	recent, more = Recent(rows, 10)
	assert.Len(t, recent, 3)
	assert.Zero(t, more)

	recent, more = Recent(rows, -1)
	assert.Empty(t, recent)
	assert.Equal(t, 3, more)
}
