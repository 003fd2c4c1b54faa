// ABOUTME: Play command for the tictactoe CLI
// ABOUTME: Opens the interactive interface, logging to debug.log in the config directory

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/tictactoe-client/internal/logger"
	"github.com/markalston/tictactoe-client/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the interactive interface (default)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runPlay(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// runPlay runs the TUI until the user quits and returns exit code
func runPlay(ctx context.Context) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return 2
	}

	// The terminal belongs to the TUI; logs go to a file
	logFile, err := logger.OpenFile(cfg.ConfigDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer logFile.Close()

	rt, err := newRuntime(ctx, logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer rt.Close()

	rt.logger.Info("Starting interactive session", "api_url", rt.cfg.APIURL)
	err = tui.Run(ctx, tui.Deps{
		Accounts:   rt.store,
		Games:      rt.lobby,
		Controller: rt.controller(),
		Logger:     rt.logger,
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
