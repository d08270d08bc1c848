// Command tabctl drives a browser from the command line through a
// per-session background daemon.
package main

import (
	"errors"
	"fmt"
	"os"

	"tabctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if !errors.Is(err, cli.ErrSilent) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
