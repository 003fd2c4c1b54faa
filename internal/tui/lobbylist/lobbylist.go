// ABOUTME: Lobby screen listing open games with create and join actions
// ABOUTME: Offers a cursor over listed games and a text input for joining by id

package lobbylist

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/lobby"
	"github.com/markalston/tictactoe-client/internal/tui/icons"
	"github.com/markalston/tictactoe-client/internal/tui/styles"
	"github.com/markalston/tictactoe-client/internal/tui/widgets"
)

type state int

const (
	stateList state = iota
	stateInput
)

// CreateMsg asks for a new game
type CreateMsg struct{}

// JoinMsg asks to join a game as the second player
type JoinMsg struct {
	ID client.GameID
}

// ResumeMsg asks to reopen a game the user already plays in
type ResumeMsg struct {
	ID client.GameID
}

// RefreshMsg asks for the listing to be reloaded
type RefreshMsg struct{}

// BackMsg returns to the menu
type BackMsg struct{}

// List is the lobby screen
type List struct {
	username  string
	games     []client.GameSummary
	loading   bool
	busy      bool
	cursor    int
	state     state
	textInput textinput.Model
	err       string
	width     int
	height    int
}

// New creates an empty lobby for username, marked as loading
func New(username string) *List {
	ti := textinput.New()
	ti.Placeholder = "game id"
	ti.CharLimit = 32
	ti.Width = 20

	return &List{
		username:  username,
		loading:   true,
		state:     stateList,
		textInput: ti,
	}
}

// SetGames replaces the listing. The cursor stays on the same row index when possible.
func (l *List) SetGames(games []client.GameSummary) {
	l.games = games
	l.loading = false
	if l.cursor >= len(games) {
		l.cursor = max(len(games)-1, 0)
	}
}

// SetLoading marks the listing as being reloaded
func (l *List) SetLoading() {
	l.loading = true
}

// SetBusy disables actions while a create or join is in flight
func (l *List) SetBusy(busy bool) {
	l.busy = busy
}

// SetError sets an error message to display
func (l *List) SetError(msg string) {
	l.err = msg
	l.loading = false
}

// SetSize updates the list dimensions
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Typing reports whether the game id input has focus
func (l *List) Typing() bool {
	return l.state == stateInput
}

// Games returns the current listing
func (l *List) Games() []client.GameSummary {
	return l.games
}

// Init implements tea.Model
func (l *List) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.SetSize(msg.Width, msg.Height)
		return l, nil

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		l.err = ""

		switch l.state {
		case stateList:
			return l.updateList(msg)
		case stateInput:
			return l.updateInput(msg)
		}
	}

	return l, nil
}

func (l *List) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.games)-1 {
			l.cursor++
		}
	case "enter":
		return l.selectGame()
	case "c":
		return l, func() tea.Msg { return CreateMsg{} }
	case "i":
		l.state = stateInput
		l.textInput.Focus()
		return l, textinput.Blink
	case "r":
		l.loading = true
		return l, func() tea.Msg { return RefreshMsg{} }
	case "esc", "b":
		return l, func() tea.Msg { return BackMsg{} }
	}

	return l, nil
}

func (l *List) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		l.state = stateList
		l.textInput.SetValue("")
		l.textInput.Blur()
		return l, nil
	case "enter":
		id := strings.TrimSpace(l.textInput.Value())
		if id == "" {
			l.err = "Please enter a game id"
			return l, nil
		}
		l.state = stateList
		l.textInput.SetValue("")
		l.textInput.Blur()
		return l, l.open(client.GameSummary{ID: client.GameID(strings.TrimPrefix(id, "#"))})
	}

	var cmd tea.Cmd
	l.textInput, cmd = l.textInput.Update(msg)
	return l, cmd
}

func (l *List) selectGame() (tea.Model, tea.Cmd) {
	if len(l.games) == 0 {
		return l, nil
	}
	g := l.games[l.cursor]
	if !lobby.Joinable(g, l.username) && !lobby.Resumable(g, l.username) {
		l.err = "That game cannot be joined."
		return l, nil
	}
	return l, l.open(g)
}

// open resumes games the user already plays in and joins anything else.
// A typed id with no listing row is treated as a join; the authority decides.
func (l *List) open(g client.GameSummary) tea.Cmd {
	for _, known := range l.games {
		if known.ID == g.ID {
			g = known
			break
		}
	}
	if lobby.Resumable(g, l.username) {
		return func() tea.Msg { return ResumeMsg{ID: g.ID} }
	}
	return func() tea.Msg { return JoinMsg{ID: g.ID} }
}

// View implements tea.Model
func (l *List) View() string {
	if l.state == stateInput {
		return l.viewInput()
	}
	return l.viewList()
}

func (l *List) viewList() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(icons.Game.String() + " Open games"))
	b.WriteString("\n")

	switch {
	case l.busy:
		b.WriteString(styles.Dimmed.Render(icons.Waiting.String() + " Opening game..."))
		b.WriteString("\n")
	case l.loading && len(l.games) == 0:
		b.WriteString(styles.Dimmed.Render("Loading games..."))
		b.WriteString("\n")
	case len(l.games) == 0:
		b.WriteString(styles.Dimmed.Render(lobby.EmptyMessage))
		b.WriteString("\n")
	}

	for i, g := range l.games {
		cursor := "  "
		style := styles.Normal
		if i == l.cursor {
			cursor = "> "
			style = styles.Selected
		}
		if !lobby.Joinable(g, l.username) && !lobby.Resumable(g, l.username) {
			style = styles.Dimmed
		}
		line := cursor + style.Render(lobby.Title(g)) + " " + widgets.GameStatusBadge(g.Status)
		if lobby.Resumable(g, l.username) {
			line += " " + styles.Dimmed.Render("(yours)")
		}
		b.WriteString(line + "\n")
	}

	if l.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusCritical.Render("Error: " + l.err))
	}

	return b.String()
}

func (l *List) viewInput() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(icons.Join.String() + " Join game by id"))
	b.WriteString("\n")
	b.WriteString(l.textInput.View())

	if l.err != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.StatusCritical.Render("Error: " + l.err))
	}

	return b.String()
}
