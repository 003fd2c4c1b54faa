// ABOUTME: Integration tests for TUI app
// ABOUTME: Tests screen transitions across session, lobby, game and history

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/game"
	"github.com/markalston/tictactoe-client/internal/lobby"
	"github.com/markalston/tictactoe-client/internal/logger"
	"github.com/markalston/tictactoe-client/internal/session"
	"github.com/markalston/tictactoe-client/internal/tui/lobbylist"
	"github.com/markalston/tictactoe-client/internal/tui/menu"
)

type fakeAccounts struct {
	username string
	authed   bool
	logouts  int
}

func (f *fakeAccounts) Restore(context.Context) error { return nil }
func (f *fakeAccounts) Login(_ context.Context, u, _ string) error {
	f.username, f.authed = u, true
	return nil
}
func (f *fakeAccounts) Register(ctx context.Context, u, p string) error { return f.Login(ctx, u, p) }
func (f *fakeAccounts) Logout(context.Context) error {
	f.logouts++
	f.authed = false
	return nil
}
func (f *fakeAccounts) Username() string    { return f.username }
func (f *fakeAccounts) Authenticated() bool { return f.authed }
func (f *fakeAccounts) Token() string {
	if !f.authed {
		return ""
	}
	return "token-" + f.username
}
func (f *fakeAccounts) Observe(token string, err error) bool {
	if errors.Is(err, lobby.ErrUnauthenticated) && token == f.Token() {
		f.authed = false
		return true
	}
	return false
}

type fakeGames struct {
	open    []client.GameSummary
	history []client.GameSnapshot
	err     error
}

func (f *fakeGames) ListOpenGames(context.Context) ([]client.GameSummary, error) {
	return f.open, f.err
}
func (f *fakeGames) ListHistory(context.Context) ([]client.GameSnapshot, error) {
	return f.history, f.err
}

type fakeLobby struct {
	snap *client.GameSnapshot
	err  error
}

func (f *fakeLobby) CreateGame(context.Context) (*client.GameSnapshot, error) { return f.snap, f.err }
func (f *fakeLobby) JoinGame(context.Context, client.GameID) (*client.GameSnapshot, error) {
	return f.snap, f.err
}
func (f *fakeLobby) FetchGame(context.Context, client.GameID) (*client.GameSnapshot, error) {
	return f.snap, f.err
}

type fakeAPI struct {
	moves []client.Move
	reply *client.GameSnapshot
}

func (f *fakeAPI) GetGame(context.Context, client.GameID) (*client.GameSnapshot, error) {
	return f.reply, nil
}
func (f *fakeAPI) SubmitMove(_ context.Context, _ client.GameID, m client.Move) (*client.GameSnapshot, error) {
	f.moves = append(f.moves, m)
	return f.reply, nil
}

type harness struct {
	app      *App
	accounts *fakeAccounts
	games    *fakeGames
	lobby    *fakeLobby
	api      *fakeAPI
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		accounts: &fakeAccounts{username: "alice", authed: true},
		games:    &fakeGames{},
		lobby:    &fakeLobby{},
		api:      &fakeAPI{},
	}
	ctrl := game.New(game.Deps{
		Lobby:   h.lobby,
		API:     h.api,
		Session: h.accounts,
		// polling is driven by hand in these tests
		Tick:   func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil },
		Logger: logger.Discard(),
	})
	h.app = New(context.Background(), Deps{
		Accounts:   h.accounts,
		Games:      h.games,
		Controller: ctrl,
		Logger:     logger.Discard(),
	})
	h.app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// run executes cmd and feeds every resulting message back into the app,
// following returned commands until none are left. Commands that wait on
// a timer, like cursor blinks, are dropped.
func (h *harness) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 50; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := execute(next)
		if !ok {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		_, follow := h.app.Update(msg)
		queue = append(queue, follow)
	}
}

func execute(cmd tea.Cmd) (tea.Msg, bool) {
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	select {
	case msg := <-out:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.app.Update(msg)
	return cmd
}

func (h *harness) toLobby(t *testing.T) {
	t.Helper()
	h.send(restoredMsg{})
	cmd := h.send(menu.ChosenMsg{Choice: menu.ChoicePlay})
	if h.app.screen != ScreenLobby {
		t.Fatalf("expected lobby screen, got %d", h.app.screen)
	}
	h.run(cmd)
}

func waitingGame() *client.GameSnapshot {
	return &client.GameSnapshot{ID: "1", Players: []string{"alice"}, Status: client.StatusWaiting}
}

func activeGame() *client.GameSnapshot {
	return &client.GameSnapshot{
		ID:         "1",
		Players:    []string{"alice", "bob"},
		Status:     client.StatusInProgress,
		NextPlayer: "alice",
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInitialState(t *testing.T) {
	h := newHarness(t)

	if h.app.screen != ScreenLogin {
		t.Errorf("expected initial screen to be ScreenLogin, got %d", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "Restoring session...") {
		t.Error("expected restoring message")
	}
}

func TestScreenConstants(t *testing.T) {
	if ScreenLogin != 0 {
		t.Errorf("expected ScreenLogin to be 0, got %d", ScreenLogin)
	}
	if ScreenHistory != 4 {
		t.Errorf("expected ScreenHistory to be 4, got %d", ScreenHistory)
	}
}

func TestRestoreWithoutSessionShowsLogin(t *testing.T) {
	h := newHarness(t)
	h.accounts.authed = false

	h.send(restoredMsg{})

	if h.app.screen != ScreenLogin || h.app.restoring {
		t.Errorf("expected login form, got screen %d restoring=%v", h.app.screen, h.app.restoring)
	}
	if strings.Contains(h.app.View(), "Restoring session...") {
		t.Error("expected restoring message to be gone")
	}
}

func TestRestoreExpiredSessionShowsMessage(t *testing.T) {
	h := newHarness(t)
	h.accounts.authed = false

	h.send(restoredMsg{err: fmt.Errorf("%w: token expired", session.ErrUnauthorized)})

	if !strings.Contains(h.app.View(), "Your session has expired") {
		t.Errorf("expected expiry message\n%s", h.app.View())
	}
}

func TestRestoreWithSessionShowsMenu(t *testing.T) {
	h := newHarness(t)

	h.send(restoredMsg{})

	if h.app.screen != ScreenMenu {
		t.Errorf("expected menu, got %d", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "alice") {
		t.Error("expected username in header")
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	h := newHarness(t)
	h.accounts.authed = false
	h.send(restoredMsg{})

	h.send(authedMsg{err: fmt.Errorf("%w: wrong password", session.ErrBadCredentials)})

	if h.app.screen != ScreenLogin {
		t.Errorf("expected to stay on login, got %d", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "Wrong password") {
		t.Errorf("expected failure message\n%s", h.app.View())
	}
}

func TestSupersededLoginIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.accounts.authed = false
	h.send(restoredMsg{})

	if cmd := h.send(authedMsg{err: session.ErrSuperseded}); cmd != nil {
		t.Error("expected no command for a superseded login")
	}
	if h.app.screen != ScreenLogin {
		t.Errorf("expected login screen, got %d", h.app.screen)
	}
}

func TestLoginSuccessShowsMenu(t *testing.T) {
	h := newHarness(t)
	h.send(authedMsg{})

	if h.app.screen != ScreenMenu {
		t.Errorf("expected menu, got %d", h.app.screen)
	}
}

func TestPlayLoadsLobby(t *testing.T) {
	h := newHarness(t)
	h.games.open = []client.GameSummary{{ID: "9", Players: []string{"bob"}, Status: client.StatusWaiting}}

	h.toLobby(t)

	if got := len(h.app.lobby.Games()); got != 1 {
		t.Fatalf("expected 1 game, got %d", got)
	}
	if !strings.Contains(h.app.View(), "Game #9 - bob") {
		t.Errorf("expected listing in view\n%s", h.app.View())
	}
}

func TestLobbyLoadFailureShowsError(t *testing.T) {
	h := newHarness(t)
	h.games.err = lobby.ErrGameNotFound

	h.toLobby(t)

	if !strings.Contains(h.app.View(), "That game no longer exists.") {
		t.Errorf("expected error in view\n%s", h.app.View())
	}
}

func TestCreateEntersGame(t *testing.T) {
	h := newHarness(t)
	h.lobby.snap = waitingGame()
	h.toLobby(t)

	h.run(h.send(lobbylist.CreateMsg{}))

	if h.app.screen != ScreenGame {
		t.Fatalf("expected game screen, got %d", h.app.screen)
	}
	if h.app.controller.State() != game.StateWaiting {
		t.Errorf("expected waiting state, got %s", h.app.controller.State())
	}
	view := h.app.View()
	for _, want := range []string{"Game #1", "Waiting for opponent.", "Waiting for Player 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q\n%s", want, view)
		}
	}
}

func TestOpenFailureStaysInLobby(t *testing.T) {
	h := newHarness(t)
	h.lobby.err = fmt.Errorf("%w: game 1", lobby.ErrGameFull)
	h.toLobby(t)

	h.run(h.send(lobbylist.JoinMsg{ID: "1"}))

	if h.app.screen != ScreenLobby {
		t.Fatalf("expected lobby screen, got %d", h.app.screen)
	}
	if h.app.opening {
		t.Error("expected opening to be cleared")
	}
	if !strings.Contains(h.app.View(), "That game is already full.") {
		t.Errorf("expected error in view\n%s", h.app.View())
	}
}

func TestRejectedSessionReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.lobby.err = lobby.ErrUnauthenticated
	h.toLobby(t)

	h.run(h.send(lobbylist.ResumeMsg{ID: "1"}))

	if h.app.screen != ScreenLogin {
		t.Fatalf("expected login screen, got %d", h.app.screen)
	}
	if !strings.Contains(h.app.View(), "Your session has expired") {
		t.Errorf("expected expiry message\n%s", h.app.View())
	}
}

func TestMoveKeysSubmit(t *testing.T) {
	h := newHarness(t)
	h.lobby.snap = activeGame()
	reply := activeGame()
	reply.Board[1][1] = client.MarkX
	reply.NextPlayer = "bob"
	h.api.reply = reply
	h.toLobby(t)
	h.run(h.send(lobbylist.ResumeMsg{ID: "1"}))

	h.run(h.send(key("5")))

	if len(h.api.moves) != 1 || h.api.moves[0] != (client.Move{X: 1, Y: 1}) {
		t.Fatalf("expected center move, got %v", h.api.moves)
	}
	if h.app.controller.Snapshot().Board[1][1] != client.MarkX {
		t.Error("expected reply to be applied")
	}
	if !strings.Contains(h.app.View(), "Move submitted.") {
		t.Errorf("expected status in view\n%s", h.app.View())
	}
}

func TestNotYourTurnMakesNoCall(t *testing.T) {
	h := newHarness(t)
	snap := activeGame()
	snap.NextPlayer = "bob"
	h.lobby.snap = snap
	h.toLobby(t)
	h.run(h.send(lobbylist.ResumeMsg{ID: "1"}))

	if cmd := h.send(key("1")); cmd != nil {
		t.Error("expected no command")
	}
	if len(h.api.moves) != 0 {
		t.Errorf("expected no move calls, got %d", len(h.api.moves))
	}
	if !strings.Contains(h.app.View(), "It's not your turn.") {
		t.Errorf("expected rejection in view\n%s", h.app.View())
	}
}

func TestLeaveGameReturnsToLobby(t *testing.T) {
	h := newHarness(t)
	h.lobby.snap = waitingGame()
	h.toLobby(t)
	h.run(h.send(lobbylist.CreateMsg{}))

	cmd := h.send(key("b"))

	if h.app.screen != ScreenLobby {
		t.Fatalf("expected lobby, got %d", h.app.screen)
	}
	if h.app.controller.State() != game.StateLobby || h.app.controller.Polling() {
		t.Error("expected controller back in lobby and not polling")
	}
	if cmd == nil {
		t.Fatal("expected lobby refresh command")
	}
	if _, ok := cmd().(game.LobbyRefreshMsg); !ok {
		t.Error("expected LobbyRefreshMsg")
	}
}

func TestHistoryShowsStats(t *testing.T) {
	h := newHarness(t)
	winner := "alice"
	h.games.history = []client.GameSnapshot{
		{ID: "3", Players: []string{"alice", "bob"}, Status: client.StatusComplete, Winner: &winner},
		{ID: "4", Players: []string{"alice", "bob"}, Status: client.StatusComplete},
	}
	h.send(restoredMsg{})

	h.run(h.send(menu.ChosenMsg{Choice: menu.ChoiceHistory}))

	if h.app.screen != ScreenHistory {
		t.Fatalf("expected history, got %d", h.app.screen)
	}
	view := h.app.View()
	for _, want := range []string{"Game history", "#3", "of 2 games", "Win rate 50%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q\n%s", want, view)
		}
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.send(restoredMsg{})

	h.run(h.send(menu.ChosenMsg{Choice: menu.ChoiceLogout}))

	if h.accounts.logouts != 1 {
		t.Errorf("expected one logout, got %d", h.accounts.logouts)
	}
	if h.app.screen != ScreenLogin {
		t.Errorf("expected login, got %d", h.app.screen)
	}
}

func TestCtrlCQuits(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(key("ctrl+c"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestFormatTimeSince(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{time.Second, "just now"},
		{30 * time.Second, "30s ago"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
	}

	for _, tc := range tests {
		if got := formatTimeSince(time.Now().Add(-tc.ago)); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}
