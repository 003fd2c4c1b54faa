// ABOUTME: Login and registration form as a bubbletea model
// ABOUTME: Wraps a huh form and reports the submitted credentials as a message

package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/tictactoe-client/internal/tui/icons"
	"github.com/markalston/tictactoe-client/internal/tui/styles"
)

// Mode selects between logging in and creating an account
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// SubmittedMsg is sent when the user submits the form
type SubmittedMsg struct {
	Username string
	Password string
	Mode     Mode
}

// CancelledMsg is sent when the form is cancelled
type CancelledMsg struct{}

// Form collects credentials
type Form struct {
	form    *huh.Form
	width   int
	err     string
	pending bool

	username string
	password string
	mode     Mode
}

// New creates a form, prefilled with username when given
func New(username string) *Form {
	f := &Form{username: username, mode: ModeLogin}
	f.form = f.createForm()
	return f
}

func (f *Form) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(64).
				Value(&f.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&f.password).
				Validate(required("password")),
			huh.NewSelect[Mode]().
				Title("Action").
				Options(
					huh.NewOption("Log in", ModeLogin),
					huh.NewOption("Create account", ModeRegister),
				).
				Value(&f.mode),
		).Title(icons.Player.String() + " Sign in").
			Description("Log in or create an account to play"),
	).WithTheme(styles.FormTheme())
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f.pending {
		return f, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
		f.err = ""
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.pending = true
		submitted := SubmittedMsg{
			Username: strings.TrimSpace(f.username),
			Password: f.password,
			Mode:     f.mode,
		}
		return f, func() tea.Msg { return submitted }
	}

	return f, cmd
}

// Fail shows err and lets the user try again with the username kept
func (f *Form) Fail(message string) tea.Cmd {
	f.err = message
	f.pending = false
	f.password = ""
	f.form = f.createForm()
	return f.form.Init()
}

// Pending reports whether a submission is awaiting a reply
func (f *Form) Pending() bool {
	return f.pending
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Tic Tac Toe"))
	sb.WriteString("\n")

	if f.pending {
		label := "Logging in..."
		if f.mode == ModeRegister {
			label = "Creating account..."
		}
		sb.WriteString(styles.Dimmed.Render(icons.Waiting.String() + " " + label))
		return sb.String()
	}

	sb.WriteString(f.form.View())
	if f.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.err))
	}
	return sb.String()
}
