// ABOUTME: Hidden dev-authority command serving an in-memory game server
// ABOUTME: Lets the client be tried locally without the real backend

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/tictactoe-client/internal/authority"
	"github.com/markalston/tictactoe-client/internal/logger"
)

const shutdownTimeout = 5 * time.Second

var (
	authorityAddr  string
	authoritySeeds []string
)

var authorityCmd = &cobra.Command{
	Use:    "dev-authority",
	Short:  "Serve an in-memory game server for local testing",
	Hidden: true,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runAuthority(cmd.Context(), os.Stderr, authorityAddr, authoritySeeds, nil))
	},
}

func init() {
	authorityCmd.Flags().StringVar(&authorityAddr, "addr", "127.0.0.1:8000", "Listen address")
	authorityCmd.Flags().StringSliceVar(&authoritySeeds, "user", nil, "Seed an account as name:password (repeatable)")
	rootCmd.AddCommand(authorityCmd)
}

// runAuthority serves until ctx ends. ready, when set, receives the bound
// address once the listener is open.
func runAuthority(ctx context.Context, w io.Writer, addr string, seeds []string, ready chan<- string) int {
	log := logger.New(w, "info", "text")
	srv := authority.New(authority.WithLogger(log))
	for _, seed := range seeds {
		name, pass, ok := cutSeed(seed)
		if !ok {
			fmt.Fprintf(w, "Error: --user wants name:password, got %q\n", seed)
			return 2
		}
		srv.AddUser(name, pass)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.Serve(ln) }()
	log.Info("Authority listening", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(w, "Error: shutdown: %v\n", err)
			return 2
		}
		log.Info("Authority stopped")
		return 0
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
}

func cutSeed(seed string) (string, string, bool) {
	name, pass, ok := strings.Cut(seed, ":")
	return name, pass, ok && name != ""
}
