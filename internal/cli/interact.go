package cli

import (
	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click <selector>",
	Short: "Click the element matching a CSS selector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"click"}, args...))
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill <selector> <value>...",
	Short: "Clear a field and type a value into it",
	Long:  "Clear the matched input field, then type the value. Extra arguments are joined with spaces.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"fill"}, args...))
	},
}

var typeCmd = &cobra.Command{
	Use:   "type <selector> <text>...",
	Short: "Type text into an element without clearing it",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"type"}, args...))
	},
}

var hoverCmd = &cobra.Command{
	Use:   "hover <selector>",
	Short: "Hover over the element matching a CSS selector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"hover"}, args...))
	},
}

var pressCmd = &cobra.Command{
	Use:   "press <key>",
	Short: "Press a keyboard key",
	Long:  "Press a key in the active tab. Named keys like Enter, Tab, Escape and the arrows are recognized; anything else is sent literally.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokens(cmd, append([]string{"press"}, args...))
	},
}

func init() {
	rootCmd.AddCommand(clickCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(hoverCmd)
	rootCmd.AddCommand(pressCmd)
}
