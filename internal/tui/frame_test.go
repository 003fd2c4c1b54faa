// ABOUTME: Test to verify header/footer width alignment
// ABOUTME: Ensures frame renders at correct terminal width on every screen

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tictactoe-client/internal/tui/menu"
)

func TestFrameAlignment(t *testing.T) {
	widths := []int{60, 80, 100, 120}

	for _, targetWidth := range widths {
		t.Run(fmt.Sprintf("width_%d", targetWidth), func(t *testing.T) {
			h := newHarness(t)
			h.send(tea.WindowSizeMsg{Width: targetWidth, Height: 30})
			h.send(restoredMsg{})
			h.run(h.send(menu.ChosenMsg{Choice: menu.ChoicePlay}))

			// Frame clamps to a minimum of 80 columns for usability
			expectedWidth := max(targetWidth, minTerminalWidth)

			lines := strings.Split(h.app.View(), "\n")
			headerFound := false
			footerFound := false

			for _, line := range lines {
				if strings.HasPrefix(line, "╭─") && strings.Contains(line, "Tic Tac Toe") {
					headerFound = true
					if w := lipgloss.Width(line); w != expectedWidth {
						t.Errorf("Header width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
					}
				}
				if strings.HasPrefix(line, "╰─") && strings.HasSuffix(line, "─╯") && strings.Contains(line, "Refresh") {
					footerFound = true
					if w := lipgloss.Width(line); w != expectedWidth {
						t.Errorf("Footer width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
					}
				}
			}

			if !headerFound {
				t.Error("Header not found in output")
			}
			if !footerFound {
				t.Error("Footer not found in output")
			}
		})
	}
}

func TestHeaderShowsUserOnlyWhenSignedIn(t *testing.T) {
	h := newHarness(t)
	h.accounts.authed = false
	h.send(restoredMsg{})

	if strings.Contains(h.app.renderHeader(), "alice") {
		t.Error("expected no username on the login screen")
	}

	h.accounts.authed = true
	h.send(authedMsg{})
	if !strings.Contains(h.app.renderHeader(), "alice") {
		t.Error("expected username once signed in")
	}
}
