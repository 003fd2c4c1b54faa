// ABOUTME: Main menu shown after login
// ABOUTME: Lets the user choose between playing, history, logging out and quitting

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/tictactoe-client/internal/tui/styles"
)

// Choice represents a menu entry
type Choice int

const (
	ChoicePlay Choice = iota
	ChoiceHistory
	ChoiceLogout
	ChoiceQuit
)

// ChosenMsg is sent when an entry is selected
type ChosenMsg struct {
	Choice Choice
}

type option struct {
	label string
	value Choice
}

// Menu is the main menu model
type Menu struct {
	options  []option
	selected Choice
	form     *huh.Form
}

// New creates the menu with Play preselected
func New() *Menu {
	m := &Menu{
		options: []option{
			{label: "Play", value: ChoicePlay},
			{label: "Game history", value: ChoiceHistory},
			{label: "Log out", value: ChoiceLogout},
			{label: "Quit", value: ChoiceQuit},
		},
		selected: ChoicePlay,
	}
	m.form = m.createForm()
	return m
}

func (m *Menu) createForm() *huh.Form {
	var options []huh.Option[Choice]
	for _, opt := range m.options {
		options = append(options, huh.NewOption(opt.label, opt.value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Choice]().
				Title("What next?").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Reset shows the menu again after returning from another screen
func (m *Menu) Reset() tea.Cmd {
	m.form = m.createForm()
	return m.form.Init()
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
		return m, func() tea.Msg { return ChosenMsg{Choice: ChoiceQuit} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		choice := m.selected
		return m, func() tea.Msg { return ChosenMsg{Choice: choice} }
	}
	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

// String returns the string representation of a Choice
func (c Choice) String() string {
	switch c {
	case ChoicePlay:
		return "play"
	case ChoiceHistory:
		return "history"
	case ChoiceLogout:
		return "logout"
	case ChoiceQuit:
		return "quit"
	default:
		return "unknown"
	}
}
