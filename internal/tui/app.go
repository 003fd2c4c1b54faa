// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes input between session, lobby and game

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/game"
	"github.com/markalston/tictactoe-client/internal/lobby"
	"github.com/markalston/tictactoe-client/internal/session"
	"github.com/markalston/tictactoe-client/internal/tui/gameview"
	"github.com/markalston/tictactoe-client/internal/tui/historyview"
	"github.com/markalston/tictactoe-client/internal/tui/icons"
	"github.com/markalston/tictactoe-client/internal/tui/lobbylist"
	"github.com/markalston/tictactoe-client/internal/tui/login"
	"github.com/markalston/tictactoe-client/internal/tui/menu"
	"github.com/markalston/tictactoe-client/internal/tui/styles"
	"github.com/markalston/tictactoe-client/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenMenu
	ScreenLobby
	ScreenGame
	ScreenHistory
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// Accounts is the session surface the app drives; session.Store satisfies it
type Accounts interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Username() string
	Authenticated() bool
}

// Games lists games for the lobby and history screens; lobby.Directory satisfies it
type Games interface {
	ListOpenGames(ctx context.Context) ([]client.GameSummary, error)
	ListHistory(ctx context.Context) ([]client.GameSnapshot, error)
}

// Deps wires the application
type Deps struct {
	Accounts   Accounts
	Games      Games
	Controller *game.Controller
	Logger     *slog.Logger
}

type restoredMsg struct {
	err error
}

type authedMsg struct {
	err error
}

type loggedOutMsg struct{}

type gamesLoadedMsg struct {
	games []client.GameSummary
	err   error
}

type historyLoadedMsg struct {
	games []client.GameSnapshot
	err   error
}

// App is the root model for the TUI
type App struct {
	ctx        context.Context
	accounts   Accounts
	games      Games
	controller *game.Controller
	logger     *slog.Logger

	screen     Screen
	width      int
	height     int
	restoring  bool
	opening    bool
	lastUpdate time.Time

	// Child models
	login   *login.Form
	menu    *menu.Menu
	lobby   *lobbylist.List
	board   *gameview.View
	history *historyview.History
}

// New creates a new TUI application
func New(ctx context.Context, d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		ctx:        ctx,
		accounts:   d.Accounts,
		games:      d.Games,
		controller: d.Controller,
		logger:     logger,
		screen:     ScreenLogin,
		restoring:  true,
		login:      login.New(""),
		menu:       menu.New(),
		board:      gameview.New(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.restore(), a.board.Init())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.board.SetSize(a.boardWidth(), a.contentHeight())
		if a.lobby != nil {
			a.lobby.SetSize(a.boardWidth(), a.contentHeight())
		}
		if a.history != nil {
			a.history.SetSize(a.width - panelPadding)
		}
		if a.screen == ScreenLogin {
			return a.updateLogin(msg)
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}

		// Route to current screen
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenMenu:
			return a.updateMenu(msg)
		case ScreenLobby:
			return a.updateLobby(msg)
		case ScreenGame:
			return a.updateGame(msg)
		case ScreenHistory:
			return a.updateHistory(msg)
		}

	case restoredMsg:
		return a.handleRestored(msg)

	case login.SubmittedMsg:
		return a, a.authenticate(msg)

	case login.CancelledMsg:
		return a, a.quit()

	case authedMsg:
		return a.handleAuthed(msg)

	case loggedOutMsg:
		return a.showLogin("")

	case menu.ChosenMsg:
		return a.handleMenuChoice(msg)

	case lobbylist.CreateMsg:
		return a.openGame(a.controller.Create())

	case lobbylist.JoinMsg:
		return a.openGame(a.controller.Join(msg.ID))

	case lobbylist.ResumeMsg:
		return a.openGame(a.controller.Resume(msg.ID))

	case lobbylist.RefreshMsg, game.LobbyRefreshMsg:
		if a.screen != ScreenLobby || a.lobby == nil {
			return a, nil
		}
		a.lobby.SetLoading()
		return a, a.loadGames()

	case lobbylist.BackMsg, historyview.BackMsg:
		return a.showMenu()

	case historyview.RefreshMsg:
		return a, a.loadHistory()

	case gamesLoadedMsg:
		return a.handleGamesLoaded(msg)

	case historyLoadedMsg:
		return a.handleHistoryLoaded(msg)

	case game.ChangedMsg:
		a.lastUpdate = time.Now()
		return a, a.sync()

	default:
		if cmd := a.board.Update(msg); cmd != nil {
			return a, cmd
		}
		if cmd := a.controller.Update(msg); cmd != nil {
			return a, tea.Batch(cmd, a.sync())
		}
		// Forward unknown messages to the active form (needed for huh form internals)
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenMenu:
			return a.updateMenu(msg)
		}
		return a, a.sync()
	}

	return a, nil
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.restoring {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
			return a, a.quit()
		}
		return a, nil
	}
	model, cmd := a.login.Update(msg)
	a.login = model.(*login.Form)
	return a, cmd
}

func (a *App) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateLobby(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" && !a.lobby.Typing() {
		return a, a.quit()
	}
	model, cmd := a.lobby.Update(msg)
	a.lobby = model.(*lobbylist.List)
	return a, cmd
}

func (a *App) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, a.quit()
	case "b", "esc":
		return a.leaveGame()
	}

	move, ok := a.board.HandleKey(msg.String())
	if !ok {
		return a, nil
	}
	// Local rejections are reported through the controller status
	return a, a.controller.Submit(move)
}

func (a *App) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return a, a.quit()
	}
	model, cmd := a.history.Update(msg)
	a.history = model.(*historyview.History)
	return a, cmd
}

func (a *App) handleRestored(msg restoredMsg) (tea.Model, tea.Cmd) {
	a.restoring = false
	if msg.err == nil && a.accounts.Authenticated() {
		a.logger.Info("Session restored", "username", a.accounts.Username())
		return a.showMenu()
	}
	if msg.err != nil {
		a.logger.Info("Could not restore session", "error", msg.err)
	}
	return a.showLogin(session.Message(msg.err))
}

func (a *App) handleAuthed(msg authedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		text := session.Message(msg.err)
		if text == "" {
			// superseded by a later login or a logout
			return a, nil
		}
		return a, a.login.Fail(text)
	}
	a.logger.Info("Logged in", "username", a.accounts.Username())
	return a.showMenu()
}

func (a *App) handleMenuChoice(msg menu.ChosenMsg) (tea.Model, tea.Cmd) {
	switch msg.Choice {
	case menu.ChoicePlay:
		a.lobby = lobbylist.New(a.accounts.Username())
		a.lobby.SetSize(a.boardWidth(), a.contentHeight())
		a.screen = ScreenLobby
		return a, a.loadGames()
	case menu.ChoiceHistory:
		a.history = historyview.New(a.width - panelPadding)
		a.screen = ScreenHistory
		return a, a.loadHistory()
	case menu.ChoiceLogout:
		return a, a.logout()
	case menu.ChoiceQuit:
		return a, a.quit()
	}
	return a, nil
}

func (a *App) handleGamesLoaded(msg gamesLoadedMsg) (tea.Model, tea.Cmd) {
	if a.lobby == nil {
		return a, nil
	}
	if msg.err != nil {
		if !a.accounts.Authenticated() {
			return a.showLogin(lobby.Message(msg.err))
		}
		a.lobby.SetError(lobby.Message(msg.err))
		return a, nil
	}
	a.lobby.SetGames(msg.games)
	return a, nil
}

func (a *App) handleHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if a.history == nil {
		return a, nil
	}
	if msg.err != nil {
		if !a.accounts.Authenticated() {
			return a.showLogin(lobby.Message(msg.err))
		}
		a.history.SetError(lobby.Message(msg.err))
		return a, nil
	}
	username := a.accounts.Username()
	a.history.SetGames(board.Rows(msg.games, username), board.Stats(msg.games, username))
	return a, nil
}

// openGame runs a create, join or resume issued by the lobby
func (a *App) openGame(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if cmd == nil {
		// rejected locally
		if failed, ok := a.controller.Status().(game.Failed); ok {
			a.lobby.SetError(game.Message(failed.Err))
		}
		return a, nil
	}
	a.opening = true
	a.lobby.SetBusy(true)
	a.board.Reset()
	return a, cmd
}

func (a *App) leaveGame() (tea.Model, tea.Cmd) {
	cmd := a.controller.Exit()
	a.opening = false
	if a.lobby == nil {
		a.lobby = lobbylist.New(a.accounts.Username())
	}
	a.lobby.SetBusy(false)
	a.screen = ScreenLobby
	return a, cmd
}

// sync moves between the lobby and game screens to follow the controller
func (a *App) sync() tea.Cmd {
	state := a.controller.State()
	failed, hasFailure := a.controller.Status().(game.Failed)

	switch a.screen {
	case ScreenLobby:
		if !a.opening {
			return nil
		}
		if state != game.StateLobby {
			a.opening = false
			a.lobby.SetBusy(false)
			a.screen = ScreenGame
			return nil
		}
		if hasFailure {
			a.opening = false
			a.lobby.SetBusy(false)
			if !a.accounts.Authenticated() {
				_, cmd := a.showLogin(game.Message(failed.Err))
				return cmd
			}
			a.lobby.SetError(game.Message(failed.Err))
		}
	case ScreenGame:
		if state != game.StateLobby {
			return nil
		}
		if !a.accounts.Authenticated() {
			_, cmd := a.showLogin(game.Message(failed.Err))
			return cmd
		}
		if a.lobby == nil {
			a.lobby = lobbylist.New(a.accounts.Username())
		}
		a.lobby.SetBusy(false)
		a.lobby.SetLoading()
		if hasFailure {
			a.lobby.SetError(game.Message(failed.Err))
		}
		a.screen = ScreenLobby
		return a.loadGames()
	}
	return nil
}

func (a *App) showMenu() (tea.Model, tea.Cmd) {
	a.screen = ScreenMenu
	a.lobby = nil
	a.history = nil
	return a, a.menu.Reset()
}

func (a *App) showLogin(message string) (tea.Model, tea.Cmd) {
	a.controller.Exit()
	a.opening = false
	a.screen = ScreenLogin
	a.lobby = nil
	a.history = nil
	a.login = login.New(a.accounts.Username())
	if message != "" {
		return a, a.login.Fail(message)
	}
	return a, a.login.Init()
}

// quit leaves any open game so in-flight requests are cancelled
func (a *App) quit() tea.Cmd {
	a.controller.Exit()
	return tea.Quit
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.viewLogin()
	case ScreenMenu:
		content = a.menu.View()
	case ScreenLobby:
		content = a.viewLobby()
	case ScreenGame:
		content = a.viewGame()
	case ScreenHistory:
		content = a.viewHistory()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewLogin() string {
	if a.restoring {
		return styles.Dimmed.Render(icons.Waiting.String() + " Restoring session...")
	}
	return a.login.View()
}

func (a *App) viewLobby() string {
	if a.lobby == nil {
		return ""
	}
	leftPane := styles.ActivePanel.Width(a.boardWidth()).Render(a.lobby.View())

	rightContent := styles.Title.Render(icons.Info.String()+" Actions") + "\n\n"
	rightContent += icons.Join.String() + " Join or resume selected\n"
	rightContent += icons.Create.String() + " Create a game\n"
	rightContent += icons.Game.String() + " Join by id\n"
	rightContent += icons.Refresh.String() + " Refresh list\n"
	rightContent += icons.Back.String() + " Back to menu\n"
	rightPane := styles.Panel.Width(a.actionsWidth()).Render(rightContent)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// viewGame renders the board with the actions pane
func (a *App) viewGame() string {
	snap := a.controller.Snapshot()
	if snap == nil {
		return styles.Panel.Width(a.boardWidth()).Render("Loading game...")
	}

	_, pending := a.controller.Status().(game.Pending)
	frame := gameview.Frame{
		ID:         snap.ID,
		Projection: a.controller.Projection(),
		Status:     a.controller.StatusText(),
		Level:      a.statusLevel(),
		Pending:    pending,
		Polling:    a.controller.Polling(),
		Complete:   a.controller.State() == game.StateComplete,
	}
	leftPane := styles.ActivePanel.Width(a.boardWidth()).Render(a.board.Render(frame))

	rightContent := styles.Title.Render(icons.Info.String()+" Actions") + "\n\n"
	rightContent += icons.Game.String() + " Arrows + Enter to play\n"
	rightContent += icons.Game.String() + " 1-9 picks a cell\n"
	rightContent += icons.Back.String() + " Back to lobby\n"
	rightContent += icons.Quit.String() + " Quit application\n"
	rightPane := styles.Panel.Width(a.actionsWidth()).Render(rightContent)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

func (a *App) viewHistory() string {
	if a.history == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.width - panelPadding).Render(a.history.View())
}

func (a *App) statusLevel() widgets.StatusLevel {
	if a.controller.State() == game.StateComplete {
		return widgets.LevelForResult(a.controller.Projection().ResultLabel)
	}
	switch a.controller.Status().(type) {
	case game.Failed:
		return widgets.StatusCritical
	case game.Succeeded:
		return widgets.StatusOK
	default:
		return widgets.StatusInfo
	}
}

// boardWidth calculates the width for the main pane
func (a *App) boardWidth() int {
	if a.width < minTerminalWidth {
		return max(a.width-panelPadding, 0)
	}
	return (a.width - panelPadding) * 2 / 3
}

// actionsWidth calculates the width for the actions pane
func (a *App) actionsWidth() int {
	return max(a.width-a.boardWidth()-4, 0)
}

// contentHeight calculates the height available for screen content
func (a *App) contentHeight() int {
	// Header, spacing and footer lines plus panel border and padding
	return a.height - 8
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	// Guard against zero/small width before WindowSizeMsg is received
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("Tic Tac Toe"))

	rightText := ""
	if a.screen != ScreenLogin && a.accounts.Authenticated() {
		rightText = contextStyle.Render(icons.Player.String()+" "+a.accounts.Username()) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := max(width-4-leftWidth-rightWidth, 0) // -4 for ╭─ and ─╮

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Quit"}
	case ScreenMenu:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case ScreenLobby:
		shortcuts = []string{"↑↓ Navigate", "Enter Open", "c Create", "i Id", "r Refresh", "b Back"}
	case ScreenGame:
		shortcuts = []string{"←↑↓→ Move", "Enter Play", "1-9 Cell", "b Leave", "q Quit"}
	case ScreenHistory:
		shortcuts = []string{"↑↓ Scroll", "r Refresh", "b Back", "q Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if a.screen == ScreenGame && !a.lastUpdate.IsZero() {
		elapsed := formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	fillWidth := max(width-4-lipgloss.Width(leftPlainText)-lipgloss.Width(rightPlainText), 0) // -4 for ╰─ and ─╯

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

func (a *App) restore() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return restoredMsg{err: a.accounts.Restore(ctx)}
	}
}

func (a *App) authenticate(msg login.SubmittedMsg) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if msg.Mode == login.ModeRegister {
			return authedMsg{err: a.accounts.Register(ctx, msg.Username, msg.Password)}
		}
		return authedMsg{err: a.accounts.Login(ctx, msg.Username, msg.Password)}
	}
}

func (a *App) logout() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if err := a.accounts.Logout(ctx); err != nil {
			a.logger.Warn("Failed to clear stored session", "error", err)
		}
		return loggedOutMsg{}
	}
}

// loadGames creates a command to fetch the open games listing
func (a *App) loadGames() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		games, err := a.games.ListOpenGames(ctx)
		return gamesLoadedMsg{games: games, err: err}
	}
}

func (a *App) loadHistory() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		games, err := a.games.ListHistory(ctx)
		return historyLoadedMsg{games: games, err: err}
	}
}

// Run starts the TUI
func Run(ctx context.Context, d Deps) error {
	app := New(ctx, d)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
