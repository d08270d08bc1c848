package cli

import (
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:     "open <url>",
	Aliases: []string{"goto", "navigate"},
	Short:   "Navigate the browser to a URL",
	Long:    "Navigate the active tab to a URL. Bare hosts get an https:// prefix, so \"tabctl open example.com\" works.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"open"}, args...))
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
