// ABOUTME: Search history commands
// ABOUTME: Lists recent queries most recent first, or clears them

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Args:  cobra.NoArgs,
	Run:   withApp(runHistory),
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget recent searches",
	Args:  cobra.NoArgs,
	Run:   withApp(runHistoryClear),
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistory(_ context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	history := a.store.State().SearchHistory
	if IsJSONOutput() {
		if history == nil {
			history = []string{}
		}
		return writeJSON(w, history)
	}
	if len(history) == 0 {
		fmt.Fprintln(w, "No recent searches")
		return exitOK
	}
	for i, q := range history {
		fmt.Fprintf(w, "%2d. %s\n", i+1, q)
	}
	return exitOK
}

func runHistoryClear(_ context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	if err := a.store.ClearSearchHistory(); err != nil {
		a.logger.Warn("Search history not persisted", "error", err)
	}
	fmt.Fprintln(w, "Search history cleared")
	return exitOK
}
