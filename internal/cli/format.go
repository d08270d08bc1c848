package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"tabctl/internal/batch"
	"tabctl/internal/protocol"
)

var (
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// display renders one response for humans, or as raw JSON with --json.
func display(resp *protocol.Response) {
	if jsonOutput {
		printJSON(resp)
		return
	}

	if !resp.Success {
		fmt.Fprintln(os.Stderr, errStyle.Render("error:"), resp.Error)
		return
	}

	switch data := resp.Data.(type) {
	case nil:
		fmt.Println(okStyle.Render("ok"))
	case string:
		fmt.Println(data)
	case map[string]any:
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s %v\n", keyStyle.Render(k+":"), data[k])
		}
	default:
		// Numbers, booleans, arrays from eval land here.
		out, err := json.Marshal(data)
		if err != nil {
			fmt.Printf("%v\n", data)
			return
		}
		fmt.Println(string(out))
	}
}

// displayBatch renders a batch result: one line per attempted command plus
// a summary.
func displayBatch(result *batch.Result) {
	if jsonOutput {
		printJSON(result)
		return
	}

	for i, resp := range result.Results {
		prefix := dimStyle.Render(fmt.Sprintf("[%d/%d]", i+1, result.Total))
		if resp.Success {
			fmt.Println(prefix, okStyle.Render("ok"))
		} else {
			fmt.Println(prefix, errStyle.Render("failed:"), resp.Error)
		}
	}

	if result.Success {
		fmt.Println(okStyle.Render(fmt.Sprintf("batch complete (%d/%d)", result.Completed, result.Total)))
	} else {
		fmt.Fprintln(os.Stderr, errStyle.Render(
			fmt.Sprintf("batch stopped at command %d of %d", result.Completed, result.Total)))
	}
}

// printJSON writes v to stdout as a single JSON line.
func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "error encoding output:", err)
	}
}
