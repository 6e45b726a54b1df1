// ABOUTME: Browse command launching the interactive course browser
// ABOUTME: Logs go to debug.log in the data dir while the TUI owns the terminal

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/learnctl/internal/services"
	"github.com/markalston/learnctl/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse courses interactively",
	Long: `Open the full-screen course browser.

Keys: / search, Tab switch view, Enter details, b bookmark, e enroll,
+/- progress, r refresh, q quit.`,
	Args: cobra.NoArgs,
	Run:  withAppLogging(logToDataDir, runBrowse),
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(ctx context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	browser := tui.New(ctx, tui.Deps{
		Catalog:     a.catalog,
		Learning:    a.learning,
		State:       a.store,
		Logger:      a.logger,
		CatalogSize: a.cfg.CatalogSize,
	})
	if a.relay != nil {
		a.relay.Set(browser.Notifier())
	}

	if err := tui.Run(ctx, browser); err != nil {
		return fail(w, err)
	}
	if browser.SignedOut() {
		return fail(w, services.ErrNotAuthenticated)
	}
	return exitOK
}
