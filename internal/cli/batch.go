package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tabctl/internal/batch"
	"tabctl/internal/protocol"
)

var batchCmd = &cobra.Command{
	Use:   "batch [command]...",
	Short: "Run a sequence of commands, stopping at the first failure",
	Long: `Run commands strictly in order against the daemon. Each argument is one
whole command, quoted as needed:

  tabctl batch "open example.com" "click #login" "get title"

With no arguments, commands are read from stdin, one per line. Blank lines
and lines starting with # are skipped. The batch stops at the first command
that fails; later commands are never sent.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	commands := args
	if len(commands) == 0 {
		var err error
		commands, err = readBatchLines(cmd)
		if err != nil {
			return exitErr(err)
		}
	}
	if len(commands) == 0 {
		return exitErr(fmt.Errorf("no commands to run"))
	}

	// Unknown verbs are dropped by the encoder; the remaining commands
	// still run in order.
	requests := protocol.EncodeBatch(commands)

	tr, err := newTransportAfterEnsure(cmd.Context())
	if err != nil {
		return exitErr(err)
	}

	result := batch.Run(cmd.Context(), tr, requests)
	displayBatch(result)
	if !result.Success {
		return ErrSilent
	}
	return nil
}

// readBatchLines reads commands from the command's stdin, one per line.
func readBatchLines(cmd *cobra.Command) ([]string, error) {
	var commands []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch input: %w", err)
	}
	return commands, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
