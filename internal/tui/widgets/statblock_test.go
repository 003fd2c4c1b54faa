// ABOUTME: Tests for stat block and result bar widgets
// ABOUTME: Validates bar proportions, win rate and block content

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/tictactoe-client/internal/board"
	"github.com/markalston/tictactoe-client/internal/tui/icons"
)

func TestResultBarWidth(t *testing.T) {
	tests := []struct {
		name    string
		summary board.Summary
	}{
		{"empty", board.Summary{}},
		{"wins only", board.Summary{Win: 3, Total: 3}},
		{"mixed", board.Summary{Win: 1, Draw: 1, Lose: 1, Total: 4}},
		{"no losses", board.Summary{Win: 1, Draw: 2, Total: 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bar := ResultBar(tc.summary, 10)
			if got := lipgloss.Width(bar); got != 12 {
				t.Errorf("expected width 12, got %d (%q)", got, bar)
			}
		})
	}
}

func TestResultBarDefaultWidth(t *testing.T) {
	if got := lipgloss.Width(ResultBar(board.Summary{}, 0)); got != 22 {
		t.Errorf("expected default width 22, got %d", got)
	}
}

func TestWinRate(t *testing.T) {
	if got := WinRate(board.Summary{}); got != 0 {
		t.Errorf("expected 0 for no games, got %v", got)
	}
	if got := WinRate(board.Summary{Win: 1, Lose: 1, Draw: 2, Total: 5}); got != 25 {
		t.Errorf("expected 25, got %v", got)
	}
}

func TestStatBlock(t *testing.T) {
	block := StatBlock(icons.Trophy, "Wins", 7, "of 10 games", DefaultStatBlockConfig())

	for _, want := range []string{"Wins", "7", "of 10 games"} {
		if !strings.Contains(block, want) {
			t.Errorf("expected block to contain %q\n%s", want, block)
		}
	}
	if lines := strings.Split(block, "\n"); len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged, got %q", got)
	}
	if got := truncate("a long label", 8); got != "a lon..." {
		t.Errorf("expected truncated, got %q", got)
	}
}
