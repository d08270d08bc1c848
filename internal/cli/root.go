// Package cli implements the tabctl command-line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"tabctl/internal/config"
	"tabctl/internal/session"
)

// ErrSilent signals a failure that has already been reported to the user.
// main exits 1 without printing anything further.
var ErrSilent = errors.New("silent failure")

var (
	// jsonOutput is the global --json flag value.
	jsonOutput bool

	// sessionName is the global --session flag value.
	sessionName string

	// sess and cfg are resolved once in PersistentPreRunE and threaded
	// into components explicitly from there.
	sess session.Session
	cfg  *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "tabctl",
	Short:         "Browser automation from the command line",
	Long:          "tabctl drives a long-lived browser-automation daemon. The first command starts the daemon for the active session; later commands reuse it.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Flag wins over the environment; both fall back to "default".
		if sessionName != "" {
			sess = session.New(sessionName)
		} else {
			sess = session.FromEnv()
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&sessionName, "session", "", "session name (overrides "+session.EnvSession+")")
}

// Execute runs the CLI. A non-nil error means exit code 1.
func Execute() error {
	return rootCmd.Execute()
}

// exitErr converts any error into user-visible output honoring --json,
// returning ErrSilent so main does not print it twice.
func exitErr(err error) error {
	if err == nil {
		return nil
	}
	if jsonOutput {
		printJSON(map[string]any{"success": false, "error": err.Error()})
		return ErrSilent
	}
	return err
}
