package cli

import (
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait <ms|selector>",
	Short: "Sleep for a duration or wait for an element",
	Long:  "A purely numeric argument sleeps that many milliseconds; anything else waits for a matching element to become visible.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"wait"}, args...))
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
}
