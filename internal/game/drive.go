// ABOUTME: Runs controller commands without a bubbletea program
// ABOUTME: Used by the non-interactive commands and by tests

package game

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Drive executes cmd and every command it leads to, one at a time, feeding
// each resulting message to c.Update. It returns when no command is left,
// when done reports true after a message, or when ctx ends.
func Drive(ctx context.Context, c *Controller, cmd tea.Cmd, done func(*Controller) bool) error {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg, err := run(ctx, next)
		if err != nil {
			return err
		}

		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		default:
			queue = append(queue, c.Update(msg))
		}

		if done != nil && done(c) {
			return nil
		}
	}
	return nil
}

// run executes cmd on its own goroutine so a sleeping tick does not
// outlive ctx
func run(ctx context.Context, cmd tea.Cmd) (tea.Msg, error) {
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	select {
	case msg := <-out:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
