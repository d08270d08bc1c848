package cli

import (
	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:     "close",
	Aliases: []string{"quit"},
	Short:   "Close the browser tab",
	Long:    "Close the browser the daemon is driving. The daemon keeps running; the next command launches a fresh browser.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, []string{"close"})
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
