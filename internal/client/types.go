// ABOUTME: Wire types exchanged with the game authority
// ABOUTME: Users, game summaries, full snapshots, board cells and moves

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is the lifecycle status the authority reports for a game
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// Mark is the content of a single board cell
type Mark string

const (
	Empty Mark = ""
	MarkX Mark = "X"
	MarkO Mark = "O"
)

// BoardSize is the edge length of the grid
const BoardSize = 3

// User is the identity record returned by the authority
type User struct {
	Username string `json:"username"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// GameID identifies a game. The authority may send it as a JSON number or string.
type GameID string

// UnmarshalJSON accepts both `"12"` and `12`
func (id *GameID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = GameID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid game id %s: %w", string(data), err)
	}
	*id = GameID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so they round-trip unchanged
func (id GameID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id GameID) String() string {
	return string(id)
}

// Board is the 3x3 grid, indexed [row][column]
type Board [BoardSize][BoardSize]Mark

// UnmarshalJSON tolerates a missing board, short rows and null cells
func (b *Board) UnmarshalJSON(data []byte) error {
	*b = Board{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var rows [][]*string
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	for i := 0; i < BoardSize && i < len(rows); i++ {
		for j := 0; j < BoardSize && j < len(rows[i]); j++ {
			if rows[i][j] == nil {
				continue
			}
			b[i][j] = Mark(strings.ToUpper(strings.TrimSpace(*rows[i][j])))
		}
	}
	return nil
}

// GameSummary is one row of the lobby listing
type GameSummary struct {
	ID      GameID   `json:"id"`
	Players []string `json:"players"`
	Status  Status   `json:"status"`
}

// GameSnapshot is a full authoritative copy of one game
type GameSnapshot struct {
	ID         GameID   `json:"id"`
	Players    []string `json:"players"`
	Board      Board    `json:"board"`
	Status     Status   `json:"status"`
	NextPlayer string   `json:"next_player,omitempty"`
	// Winner is nil for a draw; only meaningful when Status is complete.
	Winner *string `json:"winner"`
}

// Occupied reports whether the cell at row x, column y holds a mark
func (g *GameSnapshot) Occupied(x, y int) bool {
	return g.Board[x][y] != Empty
}

// Full reports whether both seats are taken
func (g *GameSnapshot) Full() bool {
	return len(g.Players) >= 2
}

// HasPlayer reports whether username holds a seat in the game
func (g *GameSnapshot) HasPlayer(username string) bool {
	for _, p := range g.Players {
		if p == username {
			return true
		}
	}
	return false
}

// Draw reports a complete game without a winner
func (g *GameSnapshot) Draw() bool {
	return g.Status == StatusComplete && g.Winner == nil
}

// Regresses reports whether g clears or rewrites a cell that prev had
// occupied. Cells never change once written, so such a snapshot is stale.
func (g *GameSnapshot) Regresses(prev *GameSnapshot) bool {
	if prev == nil || prev.ID != g.ID {
		return false
	}
	for i := 0; i < BoardSize; i++ {
		for j := 0; j < BoardSize; j++ {
			if prev.Board[i][j] != Empty && g.Board[i][j] != prev.Board[i][j] {
				return true
			}
		}
	}
	return false
}

// Equal reports whether two snapshots carry identical state
func (g *GameSnapshot) Equal(o *GameSnapshot) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.ID != o.ID || g.Status != o.Status || g.NextPlayer != o.NextPlayer || g.Board != o.Board {
		return false
	}
	if len(g.Players) != len(o.Players) {
		return false
	}
	for i := range g.Players {
		if g.Players[i] != o.Players[i] {
			return false
		}
	}
	if (g.Winner == nil) != (o.Winner == nil) {
		return false
	}
	return g.Winner == nil || *g.Winner == *o.Winner
}

// Move is a proposed coordinate; only the authority decides legality
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Valid reports whether the coordinate lies on the board
func (m Move) Valid() bool {
	return m.X >= 0 && m.X < BoardSize && m.Y >= 0 && m.Y < BoardSize
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.X, m.Y)
}

type gamesResponse struct {
	Games []GameSummary `json:"games"`
}

type historyResponse struct {
	Games []GameSnapshot `json:"games"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
