package cli

import (
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot [path]",
	Short: "Capture the visible page to a PNG file",
	Long:  "Capture the visible viewport as a PNG. The file is written by the daemon process; a relative path resolves against the daemon's working directory. Defaults to screenshot.png.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"screenshot"}, args...))
	},
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
}
