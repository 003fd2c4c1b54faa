// ABOUTME: Win/loss/draw statistics over a user's game history
// ABOUTME: Feeds the stats summary and recent-games list

package board

import "github.com/markalston/tictactoe-client/internal/client"

// Summary counts a user's results
type Summary struct {
	Win   int `json:"win"`
	Lose  int `json:"lose"`
	Draw  int `json:"draw"`
	Total int `json:"total"`
}

// Stats tallies results for username. Total counts every game passed in;
// only complete games contribute to win, lose and draw.
func Stats(games []client.GameSnapshot, username string) Summary {
	s := Summary{Total: len(games)}
	for i := range games {
		switch Label(&games[i], username) {
		case LabelWin:
			s.Win++
		case LabelLose:
			s.Lose++
		case LabelDraw:
			s.Draw++
		}
	}
	return s
}

// Row is one line of a history listing
type Row struct {
	ID       client.GameID `json:"id"`
	Opponent string        `json:"opponent"`
	Result   string        `json:"result"`
}

// Rows projects history into listing rows for username
func Rows(games []client.GameSnapshot, username string) []Row {
	rows := make([]Row, 0, len(games))
	for i := range games {
		rows = append(rows, Row{
			ID:       games[i].ID,
			Opponent: Opponent(games[i].Players, username),
			Result:   Label(&games[i], username),
		})
	}
	return rows
}

// Recent returns at most n rows and how many were left out
func Recent(rows []Row, n int) ([]Row, int) {
	if n < 0 {
		n = 0
	}
	if len(rows) <= n {
		return rows, 0
	}
	return rows[:n], len(rows) - n
}
