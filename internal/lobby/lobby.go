// ABOUTME: Game discovery: list open games and history, create and join games
// ABOUTME: Enforces the logged-in precondition and classifies authority errors

package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/markalston/tictactoe-client/internal/client"
)

var (
	// ErrUnauthenticated means there is no usable session
	ErrUnauthenticated = errors.New("you must be logged in")
	// ErrGameFull means the game already has two players
	ErrGameFull = errors.New("game is full")
	// ErrGameNotFound means the game does not exist or has expired
	ErrGameNotFound = errors.New("game not found")
	// ErrNetwork means the authority could not be reached
	ErrNetwork = client.ErrNetwork
)

// API is the part of the client the directory uses
type API interface {
	ListGames(ctx context.Context) ([]client.GameSummary, error)
	History(ctx context.Context) ([]client.GameSnapshot, error)
	CreateGame(ctx context.Context) (*client.GameSnapshot, error)
	JoinGame(ctx context.Context, id client.GameID) (*client.GameSnapshot, error)
	GetGame(ctx context.Context, id client.GameID) (*client.GameSnapshot, error)
}

// Session is the part of the session store the directory uses
type Session interface {
	Token() string
	Username() string
	Observe(token string, err error) bool
}

// Directory reads and mutates the set of games visible to the user
type Directory struct {
	api  API
	sess Session
}

// New creates a Directory
func New(api API, sess Session) *Directory {
	return &Directory{api: api, sess: sess}
}

// ListOpenGames returns the games shown in the lobby
func (d *Directory) ListOpenGames(ctx context.Context) ([]client.GameSummary, error) {
	token, err := d.precondition()
	if err != nil {
		return nil, err
	}
	games, err := d.api.ListGames(ctx)
	if err != nil {
		return nil, d.classify(err, token, "")
	}
	return games, nil
}

// ListHistory returns the user's completed games
func (d *Directory) ListHistory(ctx context.Context) ([]client.GameSnapshot, error) {
	token, err := d.precondition()
	if err != nil {
		return nil, err
	}
	games, err := d.api.History(ctx)
	if err != nil {
		return nil, d.classify(err, token, "")
	}
	return games, nil
}

// CreateGame starts a new game with the user as its first player
func (d *Directory) CreateGame(ctx context.Context) (*client.GameSnapshot, error) {
	token, err := d.precondition()
	if err != nil {
		return nil, err
	}
	snap, err := d.api.CreateGame(ctx)
	if err != nil {
		return nil, d.classify(err, token, "")
	}
	return snap, nil
}

// JoinGame adds the user to a waiting game
func (d *Directory) JoinGame(ctx context.Context, id client.GameID) (*client.GameSnapshot, error) {
	token, err := d.precondition()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(id)) == "" {
		return nil, fmt.Errorf("%w: no game id given", ErrGameNotFound)
	}
	snap, err := d.api.JoinGame(ctx, id)
	if err != nil {
		return nil, d.classify(err, token, id)
	}
	return snap, nil
}

// FetchGame loads a game the user already belongs to
func (d *Directory) FetchGame(ctx context.Context, id client.GameID) (*client.GameSnapshot, error) {
	token, err := d.precondition()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(id)) == "" {
		return nil, fmt.Errorf("%w: no game id given", ErrGameNotFound)
	}
	snap, err := d.api.GetGame(ctx, id)
	if err != nil {
		return nil, d.classify(err, token, id)
	}
	return snap, nil
}

// precondition returns the token the next request will carry
func (d *Directory) precondition() (string, error) {
	token := d.sess.Token()
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}

// classify wraps a client error in the directory's error kinds while
// keeping the original reachable through errors.As
func (d *Directory) classify(err error, token string, id client.GameID) error {
	switch {
	case client.IsUnauthenticated(err):
		d.sess.Observe(token, err)
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	case errors.Is(err, client.ErrConflict):
		if id != "" {
			return fmt.Errorf("%w: game %s: %w", ErrGameFull, id, err)
		}
		return fmt.Errorf("%w: %w", ErrGameFull, err)
	case errors.Is(err, client.ErrNotFound):
		if id != "" {
			return fmt.Errorf("%w: game %s: %w", ErrGameNotFound, id, err)
		}
		return fmt.Errorf("%w: %w", ErrGameNotFound, err)
	default:
		return err
	}
}

// Joinable reports whether the user can join the listed game
func Joinable(g client.GameSummary, username string) bool {
	if g.Status != client.StatusWaiting || len(g.Players) >= 2 {
		return false
	}
	for _, p := range g.Players {
		if p == username {
			return false
		}
	}
	return true
}

// Resumable reports whether the user is already a player of an unfinished game
func Resumable(g client.GameSummary, username string) bool {
	if g.Status == client.StatusComplete {
		return false
	}
	for _, p := range g.Players {
		if p == username {
			return true
		}
	}
	return false
}

// Title renders a listing row the way the lobby shows it
func Title(g client.GameSummary) string {
	switch len(g.Players) {
	case 0:
		return fmt.Sprintf("Game #%s", g.ID)
	case 1:
		return fmt.Sprintf("Game #%s - %s", g.ID, g.Players[0])
	default:
		return fmt.Sprintf("Game #%s - %s vs %s", g.ID, g.Players[0], g.Players[1])
	}
}

// EmptyMessage is shown when no game is listed
const EmptyMessage = "No available games to join. Create a new game!"

// Message turns a directory error into text for the user
func Message(err error) string {
	var apiErr *client.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "You must be logged in."
	case errors.Is(err, ErrGameFull):
		return "That game is already full."
	case errors.Is(err, ErrGameNotFound):
		return "That game no longer exists."
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}
