// ABOUTME: Compact stat block and result bar widgets for the history sidebar
// ABOUTME: Draws a titled bordered count and a stacked win/draw/loss bar

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/tui/icons"
)

// StatBlockConfig holds configuration for a stat block
type StatBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultStatBlockConfig returns sensible defaults
func DefaultStatBlockConfig() StatBlockConfig {
	return StatBlockConfig{
		Width:       22,
		BorderColor: lipgloss.Color("#6B7280"), // Muted gray
		TitleColor:  lipgloss.Color("#7C3AED"), // Purple
		ValueColor:  lipgloss.Color("#F9FAFB"), // Light
	}
}

// StatBlock renders a count in a box with the title in its top border
func StatBlock(icon icons.Icon, title string, count int, label string, config StatBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	value := fmt.Sprintf("%d", count)
	label = truncate(label, innerWidth)

	top := "┌─ " + titleStyle.Render(titleStr) + " " +
		strings.Repeat("─", max(0, innerWidth-lipgloss.Width(titleStr)-1)) + "┐"
	valueLine := "│  " + valueStyle.Render(value) + strings.Repeat(" ", max(0, innerWidth-len(value))) + "│"
	labelLine := "│  " + labelStyle.Render(label) + strings.Repeat(" ", max(0, innerWidth-lipgloss.Width(label))) + "│"
	bottom := "└" + strings.Repeat("─", config.Width-2) + "┘"

	return strings.Join([]string{
		borderStyle.Render(top),
		valueLine,
		labelLine,
		borderStyle.Render(bottom),
	}, "\n")
}

// ResultBar renders wins, draws and losses as one stacked bar of the given width.
// Segment widths are proportional to complete games; an empty history renders blank.
func ResultBar(s board.Summary, width int) string {
	if width <= 0 {
		width = 20
	}
	decided := s.Win + s.Draw + s.Lose
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))
	if decided == 0 {
		return "[" + empty.Render(strings.Repeat("░", width)) + "]"
	}

	win := s.Win * width / decided
	draw := s.Draw * width / decided
	lose := width - win - draw
	if s.Lose == 0 {
		// rounding leftovers go to the largest non-empty segment
		if s.Win >= s.Draw {
			win += lose
		} else {
			draw += lose
		}
		lose = 0
	}

	okBg, _ := colors(StatusOK)
	warnBg, _ := colors(StatusWarning)
	critBg, _ := colors(StatusCritical)

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(lipgloss.NewStyle().Foreground(okBg).Render(strings.Repeat("█", win)))
	bar.WriteString(lipgloss.NewStyle().Foreground(warnBg).Render(strings.Repeat("█", draw)))
	bar.WriteString(lipgloss.NewStyle().Foreground(critBg).Render(strings.Repeat("█", lose)))
	bar.WriteString("]")
	return bar.String()
}

// WinRate returns wins as a percentage of complete games
func WinRate(s board.Summary) float64 {
	decided := s.Win + s.Draw + s.Lose
	if decided == 0 {
		return 0
	}
	return float64(s.Win) * 100 / float64(decided)
}

// truncate shortens a string to maxLen runes with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
