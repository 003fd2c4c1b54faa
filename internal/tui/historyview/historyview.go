// ABOUTME: History screen listing finished games with result statistics
// ABOUTME: Shows a scrollable table of recent games beside a stats sidebar

package historyview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/tui/icons"
	"github.com/markalston/tictactoe-client/internal/tui/styles"
	"github.com/markalston/tictactoe-client/internal/tui/widgets"
)

// RecentLimit caps how many games the table lists
const RecentLimit = 10

// BackMsg returns to the menu
type BackMsg struct{}

// RefreshMsg asks for history to be reloaded
type RefreshMsg struct{}

// History displays past games and statistics
type History struct {
	rows    []board.Row
	more    int
	summary board.Summary
	loaded  bool
	err     string
	table   table.Model
	width   int
}

// New creates an empty history view
func New(width int) *History {
	h := &History{width: width}
	h.table = table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(RecentLimit+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	h.table.SetStyles(s)
	return h
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Game", Width: 8},
		{Title: "Opponent", Width: 16},
		{Title: "Result", Width: 12},
	}
}

// SetGames replaces the rows and statistics
func (h *History) SetGames(rows []board.Row, summary board.Summary) {
	h.rows, h.more = board.Recent(rows, RecentLimit)
	h.summary = summary
	h.loaded = true
	h.err = ""

	tableRows := make([]table.Row, 0, len(h.rows))
	for _, r := range h.rows {
		tableRows = append(tableRows, table.Row{"#" + r.ID.String(), r.Opponent, r.Result})
	}
	h.table.SetRows(tableRows)
	h.table.GotoTop()
}

// SetError shows a load failure
func (h *History) SetError(msg string) {
	h.err = msg
	h.loaded = true
}

// SetSize updates the view width
func (h *History) SetSize(width int) {
	h.width = width
}

// Init implements tea.Model
func (h *History) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (h *History) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "b":
			return h, func() tea.Msg { return BackMsg{} }
		case "r":
			h.loaded = false
			return h, func() tea.Msg { return RefreshMsg{} }
		}
	}

	var cmd tea.Cmd
	h.table, cmd = h.table.Update(msg)
	return h, cmd
}

// View implements tea.Model
func (h *History) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.History.String() + " Game history"))
	sb.WriteString("\n")

	switch {
	case h.err != "":
		sb.WriteString(styles.StatusCritical.Render("Error: " + h.err))
		return sb.String()
	case !h.loaded:
		sb.WriteString(styles.Dimmed.Render("Loading history..."))
		return sb.String()
	}

	var left string
	if len(h.rows) == 0 {
		left = styles.Dimmed.Render("No finished games yet.")
	} else {
		left = h.table.View()
		if h.more > 0 {
			left += "\n" + styles.Dimmed.Render(fmt.Sprintf("And %d more…", h.more))
		}
	}

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", h.renderStats()))
	return sb.String()
}

func (h *History) renderStats() string {
	cfg := widgets.DefaultStatBlockConfig()
	s := h.summary
	total := fmt.Sprintf("of %d games", s.Total)

	blocks := []string{
		widgets.StatBlock(icons.Trophy, board.LabelWin, s.Win, total, cfg),
		widgets.StatBlock(icons.Critical, board.LabelLose, s.Lose, total, cfg),
		widgets.StatBlock(icons.Warning, board.LabelDraw, s.Draw, total, cfg),
	}

	rate := fmt.Sprintf("Win rate %.0f%%", widgets.WinRate(s))
	blocks = append(blocks, widgets.ResultBar(s, cfg.Width-2), styles.Dimmed.Render(rate))
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
