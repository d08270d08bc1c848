package cli

import (
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <script>...",
	Short: "Evaluate JavaScript in the active tab",
	Long:  "Evaluate a JavaScript expression in the page and print its result. Multiple arguments are joined with spaces.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"eval"}, args...))
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
