// ABOUTME: Root command for the tictactoe CLI
// ABOUTME: Handles global flags, configuration and the default interactive mode

package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/tictactoe-client/internal/config"
)

var (
	apiURL       string
	jsonOutput   bool
	configDir    string
	pollInterval time.Duration
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "tictactoe",
	Short: "Play Tic Tac Toe against other players from the terminal",
	Long: `tictactoe is a terminal client for a remote Tic Tac Toe server.

Run it without a subcommand to open the interactive interface, or use the
subcommands to script logins, lobby queries and moves.

Environment Variables:
  TICTACTOE_API_URL        Server URL (default: http://localhost:8000)
  TICTACTOE_CONFIG_DIR     Where the session token and debug log live
  TICTACTOE_TOKEN_STORE    file or redis (default: file)
  TICTACTOE_REDIS_ADDR     Redis address for the redis token store
  LOG_LEVEL, LOG_FORMAT    Logging level and format (text or json)`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runPlay(cmd.Context()))
	},
}

// Execute runs the root command
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Server URL (overrides TICTACTOE_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides TICTACTOE_CONFIG_DIR)")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "poll-interval", 0, "Delay between game refreshes (overrides TICTACTOE_POLL_INTERVAL)")
}

// loadConfig reads configuration and applies flag overrides (flag > env > file > default)
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}
	if pollInterval > 0 {
		cfg.PollInterval = pollInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

func exitWith(code int) {
	if code != 0 {
		os.Exit(code)
	}
}
