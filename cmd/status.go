// ABOUTME: Status command for learnctl
// ABOUTME: Summarizes the session and local learning state

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/learnctl/internal/notify"
	"github.com/markalston/learnctl/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and learning summary",
	Long:  `Display who is signed in, where state is kept, and counts of catalog, bookmarks, enrollment and completed courses.`,
	Args:  cobra.NoArgs,
	Run:   withApp(runStatus),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusSummary is the status command's view of local state
type statusSummary struct {
	APIURL        string `json:"api_url"`
	DataDir       string `json:"data_dir,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Courses       int    `json:"courses"`
	Bookmarks     int    `json:"bookmarks"`
	Enrolled      int    `json:"enrolled"`
	Completed     int    `json:"completed"`
	Searches      int    `json:"searches"`
	Reminder      string `json:"reminder,omitempty"`
}

// runStatus prints the summary; exit 1 when signed out
func runStatus(_ context.Context, a *app, w io.Writer, _ []string) int {
	summary := summarize(a)

	code := exitOK
	if !summary.Authenticated {
		code = exitAuth
	}
	if IsJSONOutput() {
		if c := writeJSON(w, summary); c != exitOK {
			return c
		}
		return code
	}
	fmt.Fprintln(w, formatStatusHuman(summary))
	return code
}

func summarize(a *app) statusSummary {
	sess := a.store.Session()
	state := a.store.State()
	s := statusSummary{
		APIURL:        a.client.BaseURL(),
		Authenticated: sess.Authenticated,
		Courses:       len(state.Catalog),
		Bookmarks:     len(state.Bookmarks),
		Enrolled:      len(state.Enrolled),
		Completed:     completed(state),
		Searches:      len(state.SearchHistory),
	}
	if !a.cfg.Ephemeral {
		s.DataDir = a.cfg.DataDir
	}
	if sess.User != nil {
		s.Username = sess.User.Username
	}
	if sess.Authenticated && a.store.ReminderDue() {
		r := notify.Reminder()
		s.Reminder = r.Title + " " + r.Body
	}
	return s
}

func completed(state store.InteractionState) int {
	n := 0
	for _, id := range state.Enrolled {
		if state.Progress[id] >= 100 {
			n++
		}
	}
	return n
}

// formatStatusHuman formats the summary for human readability
func formatStatusHuman(s statusSummary) string {
	user := "not logged in"
	if s.Authenticated {
		user = s.Username
	}
	dataDir := s.DataDir
	if dataDir == "" {
		dataDir = "(memory only)"
	}
	out := fmt.Sprintf(`User:       %s
API:        %s
Data:       %s

Courses:    %d
Bookmarks:  %d
Enrolled:   %d (%d completed)
Searches:   %d`,
		user, s.APIURL, dataDir,
		s.Courses, s.Bookmarks, s.Enrolled, s.Completed, s.Searches)
	if s.Reminder != "" {
		out += "\n\n" + s.Reminder
	}
	return out
}
