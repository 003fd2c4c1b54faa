// ABOUTME: Tests for the login form model
// ABOUTME: Validates prefill, cancellation, failure reset and pending view

package login

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewPrefillsUsername(t *testing.T) {
	f := New("alice")

	if f.username != "alice" {
		t.Errorf("expected username alice, got %q", f.username)
	}
	if f.mode != ModeLogin {
		t.Errorf("expected login mode by default, got %q", f.mode)
	}
	if f.form == nil {
		t.Error("expected form to be initialized")
	}
}

func TestEscCancels(t *testing.T) {
	f := New("")

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Error("expected CancelledMsg")
	}
}

func TestFailResetsForm(t *testing.T) {
	f := New("alice")
	f.pending = true
	f.password = "secret"

	f.Fail("Invalid credentials")

	if f.Pending() {
		t.Error("expected pending to be cleared")
	}
	if f.password != "" {
		t.Error("expected password to be cleared")
	}
	if f.username != "alice" {
		t.Errorf("expected username kept, got %q", f.username)
	}
	if !strings.Contains(f.View(), "Invalid credentials") {
		t.Error("expected error in view")
	}
}

func TestPendingViewAndInputIgnored(t *testing.T) {
	f := New("alice")
	f.pending = true
	f.mode = ModeRegister

	if !strings.Contains(f.View(), "Creating account...") {
		t.Errorf("expected pending label, got %q", f.View())
	}
	if _, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Error("expected input to be ignored while pending")
	}
}

func TestRequired(t *testing.T) {
	check := required("username")

	if err := check("  "); err == nil || err.Error() != "username is required" {
		t.Errorf("expected required error, got %v", err)
	}
	if err := check("bob"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
