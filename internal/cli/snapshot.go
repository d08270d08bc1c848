package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var (
	snapshotInteractive bool
	snapshotCompact     bool
	snapshotDepth       int
	snapshotSelector    string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print an outline of the current page's DOM",
	Long:  "Print an indented outline of the current page, useful for finding selectors before clicking or filling.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Rebuilt into the same token form batch lines use, so both
		// paths go through one encoder.
		tokens := []string{"snapshot"}
		if snapshotInteractive {
			tokens = append(tokens, "-i")
		}
		if snapshotCompact {
			tokens = append(tokens, "-c")
		}
		if snapshotDepth > 0 {
			tokens = append(tokens, "-d", strconv.Itoa(snapshotDepth))
		}
		if snapshotSelector != "" {
			tokens = append(tokens, "-s", snapshotSelector)
		}
		return runTokens(cmd, tokens)
	},
}

func init() {
	snapshotCmd.Flags().BoolVarP(&snapshotInteractive, "interactive", "i", false, "only interactive elements (links, buttons, inputs)")
	snapshotCmd.Flags().BoolVarP(&snapshotCompact, "compact", "c", false, "skip wrapper elements with no text of their own")
	snapshotCmd.Flags().IntVarP(&snapshotDepth, "depth", "d", 0, "limit outline depth")
	snapshotCmd.Flags().StringVarP(&snapshotSelector, "selector", "s", "", "scope the outline to a CSS selector")
	rootCmd.AddCommand(snapshotCmd)
}
