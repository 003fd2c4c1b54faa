// ABOUTME: Shared lipgloss palette and styles for the game screens
// ABOUTME: Groups text, panel and board styles plus colored mark rendering

package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Primary   = lipgloss.Color("#7C3AED")
	Secondary = lipgloss.Color("#10B981")
	Accent    = lipgloss.Color("#8B5CF6")
	Muted     = lipgloss.Color("#6B7280")
	Text      = lipgloss.Color("#F9FAFB")
	danger    = lipgloss.Color("#EF4444")

	colorX = lipgloss.Color("#06B6D4")
	colorO = lipgloss.Color("#F472B6")
)

// Text.
var (
	Title      = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)
	Subtitle   = lipgloss.NewStyle().Foreground(Muted).MarginBottom(1)
	Dimmed     = lipgloss.NewStyle().Foreground(Muted)
	Normal     = lipgloss.NewStyle().Foreground(Text)
	Selected   = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(Text).Bold(true)

	StatusOK       = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	StatusCritical = lipgloss.NewStyle().Foreground(danger).Bold(true)
)

// Panels. The focused side of a split view uses ActivePanel.
var (
	Panel       = panel(Muted)
	ActivePanel = panel(Primary)
)

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

// Board cells. The cursor border turns red over a cell that cannot be played.
var (
	Cell = lipgloss.NewStyle().
		Width(5).
		Align(lipgloss.Center).
		Border(lipgloss.NormalBorder()).
		BorderForeground(Muted)
	CursorCell         = Cell.BorderForeground(Accent)
	DisabledCursorCell = Cell.BorderForeground(danger)
)

var marks = map[string]lipgloss.Style{
	"X": lipgloss.NewStyle().Foreground(colorX).Bold(true),
	"O": lipgloss.NewStyle().Foreground(colorO).Bold(true),
}

// Mark renders X or O in its color and anything else as a dot.
func Mark(m string) string {
	if s, ok := marks[m]; ok {
		return s.Render(m)
	}
	return Dimmed.Render("·")
}
