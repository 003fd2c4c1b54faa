// ABOUTME: Board view for the game in progress
// ABOUTME: Renders the projected grid with a cursor, turn details and request status

package gameview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/tui/icons"
	"github.com/markalston/tictactoe-client/internal/tui/styles"
	"github.com/markalston/tictactoe-client/internal/tui/widgets"
)

// Frame is everything the view draws for one render
type Frame struct {
	ID         client.GameID
	Projection board.Projection
	Status     string
	Level      widgets.StatusLevel
	Pending    bool
	Polling    bool
	Complete   bool
}

// View draws the board and tracks the cell cursor
type View struct {
	row, col int
	spinner  spinner.Model
	width    int
	height   int
}

// New creates a view with the cursor on the center cell
func New() *View {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Accent)
	return &View{row: 1, col: 1, spinner: s}
}

// SetSize updates the view dimensions
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Reset puts the cursor back on the center cell
func (v *View) Reset() {
	v.row, v.col = 1, 1
}

// Init starts the spinner
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// Update advances the spinner
func (v *View) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return cmd
}

// HandleKey moves the cursor or picks a cell. It returns the chosen move
// and true when the key selects a cell.
func (v *View) HandleKey(key string) (client.Move, bool) {
	last := client.BoardSize - 1
	switch key {
	case "up", "k":
		if v.row > 0 {
			v.row--
		}
	case "down", "j":
		if v.row < last {
			v.row++
		}
	case "left", "h":
		if v.col > 0 {
			v.col--
		}
	case "right", "l":
		if v.col < last {
			v.col++
		}
	case "enter", " ":
		return v.Cursor(), true
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(key[0] - '1')
		v.row, v.col = n/client.BoardSize, n%client.BoardSize
		return v.Cursor(), true
	}
	return client.Move{}, false
}

// Cursor returns the cell under the cursor as a move
func (v *View) Cursor() client.Move {
	return client.Move{X: v.row, Y: v.col}
}

// Render draws f
func (v *View) Render(f Frame) string {
	p := f.Projection
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s Game #%s", icons.Game, f.ID)))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(p.Headline))
	sb.WriteString("\n")

	details := v.renderDetails(f)
	grid := v.renderGrid(p, f.Complete)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, "   ", details))
	sb.WriteString("\n\n")

	if f.Pending {
		sb.WriteString(v.spinner.View() + " ")
	}
	if f.Status != "" {
		sb.WriteString(widgets.StatusText(f.Status, f.Level))
	}

	return lipgloss.NewStyle().
		Width(v.width).
		Render(sb.String())
}

func (v *View) renderGrid(p board.Projection, complete bool) string {
	rows := make([]string, 0, client.BoardSize)
	for i := 0; i < client.BoardSize; i++ {
		cells := make([]string, 0, client.BoardSize)
		for j := 0; j < client.BoardSize; j++ {
			cell := p.Cells[i][j]
			style := styles.Cell
			if i == v.row && j == v.col && !complete {
				style = styles.CursorCell
				if cell.Disabled {
					style = styles.DisabledCursorCell
				}
			}
			cells = append(cells, style.Render(styles.Mark(string(cell.Mark))))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *View) renderDetails(f Frame) string {
	p := f.Projection
	var sb strings.Builder

	mine := "-"
	if p.MyMark != client.Empty {
		mine = styles.Mark(string(p.MyMark))
	}
	sb.WriteString(fmt.Sprintf("You:      %s\n", mine))
	sb.WriteString(fmt.Sprintf("Opponent: %s\n", styles.ValueStyle.Render(p.Opponent)))

	switch {
	case f.Complete:
		sb.WriteString("Result:   " + widgets.ResultBadge(p.ResultLabel) + "\n")
	case p.IsMyTurn:
		sb.WriteString("Turn:     " + styles.StatusOK.Render("yours") + "\n")
	default:
		sb.WriteString("Turn:     " + styles.Dimmed.Render("theirs") + "\n")
	}

	if f.Polling {
		sb.WriteString(styles.Dimmed.Render(icons.Refresh.String() + " live"))
	}
	return sb.String()
}
