// ABOUTME: Entry point for the tictactoe CLI
// ABOUTME: Terminal client for playing Tic Tac Toe against a remote server

package main

import (
	"fmt"
	"os"

	"github.com/markalston/tictactoe-client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
