// ABOUTME: Account commands for the tictactoe CLI
// ABOUTME: Implements login, register, logout and whoami against the saved session

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/markalston/tictactoe-client/internal/session"
)

var errNotLoggedIn = errors.New("not logged in; run 'tictactoe login' first")

// logOutput receives command logs; the TUI replaces it with a file
var logOutput io.Writer = os.Stderr

var password string

var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Log in and save the session",
	Long: `Log in to the server and save the session token for later commands.

The password is read from --password, or from the first line of stdin.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runLogin(cmd.Context(), os.Stdout, cmd.InOrStdin(), false, args[0], password))
	},
}

var registerCmd = &cobra.Command{
	Use:   "register USERNAME",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runLogin(cmd.Context(), os.Stdout, cmd.InOrStdin(), true, args[0], password))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runLogout(cmd.Context(), os.Stdout))
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(runWhoami(cmd.Context(), os.Stdout))
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when omitted)")
	}
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

// runLogin logs in, or registers when register is set, and returns exit code
func runLogin(ctx context.Context, w io.Writer, in io.Reader, register bool, username, pass string) int {
	rt, err := newRuntime(ctx, logOutput)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer rt.Close()

	if pass == "" {
		pass = readLine(in)
	}

	if register {
		err = rt.store.Register(ctx, username, pass)
	} else {
		err = rt.store.Login(ctx, username, pass)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", session.Message(err))
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(map[string]string{"username": rt.store.Username()}))
	} else if register {
		fmt.Fprintf(w, "Account created. Logged in as %s\n", rt.store.Username())
	} else {
		fmt.Fprintf(w, "Logged in as %s\n", rt.store.Username())
	}
	return 0
}

// runLogout clears the saved session and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	rt, err := newRuntime(ctx, logOutput)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer rt.Close()

	if err := rt.store.Logout(ctx); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !IsJSONOutput() {
		fmt.Fprintln(w, "Logged out.")
	}
	return 0
}

// whoami is the JSON shape of the whoami command
type whoami struct {
	Username  string     `json:"username"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// runWhoami verifies the saved session with the server and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	rt, err := newRuntime(ctx, logOutput)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer rt.Close()

	if err := rt.restore(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", sessionError(err))
		return 2
	}

	info := whoami{Username: rt.store.Username()}
	if exp, ok := tokenExpiry(rt.store.Token()); ok {
		info.ExpiresAt = &exp
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(info))
	} else {
		fmt.Fprintln(w, formatWhoamiHuman(info, time.Now()))
	}
	return 0
}

func formatWhoamiHuman(info whoami, now time.Time) string {
	out := fmt.Sprintf("Logged in as %s", info.Username)
	if info.ExpiresAt != nil {
		left := info.ExpiresAt.Sub(now).Round(time.Minute)
		if left <= 0 {
			out += "\nSession token has expired"
		} else {
			out += fmt.Sprintf("\nSession expires in %s", left)
		}
	}
	return out
}

// tokenExpiry reads the exp claim without verifying the signature. Only
// the server can validate a token; this is for display.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// sessionError turns a restore failure into text for the user
func sessionError(err error) string {
	if errors.Is(err, errNotLoggedIn) {
		return err.Error()
	}
	return session.Message(err)
}

func readLine(in io.Reader) string {
	if in == nil {
		return ""
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func formatJSON(v interface{}) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}
