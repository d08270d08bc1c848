package cli

import (
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get text|url|title [selector]",
	Short: "Read text, the current URL, or the page title",
	Long:  "Read a value from the active tab: \"get text <selector>\" for element text, \"get url\" for the location, \"get title\" for the document title.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"get"}, args...))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
