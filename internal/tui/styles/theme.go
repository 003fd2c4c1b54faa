// ABOUTME: huh form theme built from the shared palette
// ABOUTME: Used by the login form and the main menu

package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	formLight = lipgloss.Color("#E5E7EB")
	formError = lipgloss.Color("#F87171")
)

// FormTheme returns the huh theme shared by every form. Focused fields take
// the X mark color so forms read as part of the board screens.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	leftBar := func(b lipgloss.Border) lipgloss.Style {
		return lipgloss.NewStyle().PaddingLeft(1).BorderStyle(b).BorderLeft(true)
	}

	t.Group.Title = fg(colorX).Bold(true).MarginBottom(1)
	t.Group.Description = Subtitle

	f := &t.Focused
	f.Base = leftBar(lipgloss.ThickBorder()).BorderForeground(colorX)
	f.Title = fg(colorX).Bold(true)
	f.ErrorIndicator = fg(formError).SetString(" *")
	f.ErrorMessage = fg(formError)
	f.SelectSelector = fg(colorX).SetString("> ")
	f.Option = fg(formLight)
	f.SelectedOption = fg(colorX).Bold(true)
	f.TextInput.Prompt = fg(colorX)
	f.TextInput.Text = fg(formLight)

	t.Blurred = t.Focused
	t.Blurred.Base = leftBar(lipgloss.HiddenBorder())
	t.Blurred.Title = Dimmed
	t.Blurred.SelectSelector = Dimmed.SetString("  ")

	return t
}
