// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Provides result badges, game status badges and status lines

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/client"
	"github.com/markalston/tictactoe-client/internal/tui/icons"
)

// StatusLevel is how a status line or badge is colored
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

type badgeColors struct{ bg, fg lipgloss.Color }

var levelColors = map[StatusLevel]badgeColors{
	StatusOK:       {"#10B981", "#FFFFFF"},
	StatusWarning:  {"#F59E0B", "#000000"},
	StatusCritical: {"#EF4444", "#FFFFFF"},
	StatusInfo:     {"#3B82F6", "#FFFFFF"},
}

func colors(level StatusLevel) (bg, fg lipgloss.Color) {
	c, ok := levelColors[level]
	if !ok {
		return "#6B7280", "#FFFFFF"
	}
	return c.bg, c.fg
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := colors(level)
	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// LevelForResult maps a result label to a status level
func LevelForResult(label string) StatusLevel {
	switch label {
	case board.LabelWin:
		return StatusOK
	case board.LabelLose:
		return StatusCritical
	case board.LabelDraw:
		return StatusWarning
	default:
		return StatusInfo
	}
}

// ResultBadge renders Win, Lose, Draw or In Progress
func ResultBadge(label string) string {
	return Badge(label, LevelForResult(label))
}

// GameStatusBadge renders a game's status as shown in the lobby
func GameStatusBadge(s client.Status) string {
	switch s {
	case client.StatusWaiting:
		return Badge("waiting", StatusWarning)
	case client.StatusInProgress:
		return Badge("in progress", StatusInfo)
	case client.StatusComplete:
		return Badge("complete", StatusNeutral)
	default:
		return Badge(string(s), StatusNeutral)
	}
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := colors(level)
	style := lipgloss.NewStyle().Foreground(bg)
	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := colors(level)
	textStyle := lipgloss.NewStyle().Foreground(bg)
	return fmt.Sprintf("%s %s", StatusIcon(level), textStyle.Render(text))
}
