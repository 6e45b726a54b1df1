// ABOUTME: Learning commands: bookmark, bookmarks, enroll, progress, learning, recommend
// ABOUTME: Mutations go through the learning service so notifications fire

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/store"
	"github.com/markalston/learnctl/internal/tui/widgets"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <id>",
	Short: "Toggle a bookmark",
	Args:  cobra.ExactArgs(1),
	Run:   withApp(runBookmark),
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List bookmarked courses",
	Args:  cobra.NoArgs,
	Run:   withApp(runBookmarks),
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <id>",
	Short: "Enroll in a course",
	Args:  cobra.ExactArgs(1),
	Run:   withApp(runEnroll),
}

var progressCmd = &cobra.Command{
	Use:   "progress <id> <percent>",
	Short: "Record lesson progress (0-100)",
	Args:  cobra.ExactArgs(2),
	Run:   withApp(runProgress),
}

var learningCmd = &cobra.Command{
	Use:   "learning",
	Short: "List enrolled courses with progress",
	Args:  cobra.NoArgs,
	Run:   withApp(runLearning),
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest courses based on bookmarks and enrollment",
	Args:  cobra.NoArgs,
	Run:   withApp(runRecommend),
}

func init() {
	rootCmd.AddCommand(bookmarkCmd, bookmarksCmd, enrollCmd, progressCmd, learningCmd, recommendCmd)
}

func runBookmark(_ context.Context, a *app, w io.Writer, args []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	id, err := parseID(args[0])
	if err != nil {
		return fail(w, err)
	}
	bookmarked, err := a.learning.ToggleBookmark(id)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"id": id, "bookmarked": bookmarked})
	}
	if bookmarked {
		fmt.Fprintf(w, "Bookmarked %d\n", id)
	} else {
		fmt.Fprintf(w, "Removed bookmark %d\n", id)
	}
	return exitOK
}

func runBookmarks(_ context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	courses := lookup(a.store, a.store.State().Bookmarks)
	if IsJSONOutput() {
		return writeJSON(w, courses)
	}
	if len(courses) == 0 {
		fmt.Fprintln(w, "No bookmarks")
		return exitOK
	}
	fmt.Fprintln(w, formatCoursesHuman(a.store, courses))
	return exitOK
}

func runEnroll(_ context.Context, a *app, w io.Writer, args []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	id, err := parseID(args[0])
	if err != nil {
		return fail(w, err)
	}
	added, err := a.learning.Enroll(id)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"id": id, "enrolled": true, "added": added})
	}
	if !added {
		fmt.Fprintf(w, "Already enrolled in %d\n", id)
		return exitOK
	}
	fmt.Fprintf(w, "Enrolled in %d\n", id)
	return exitOK
}

func runProgress(_ context.Context, a *app, w io.Writer, args []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	id, err := parseID(args[0])
	if err != nil {
		return fail(w, err)
	}
	percent, err := strconv.Atoi(args[1])
	if err != nil {
		return fail(w, fmt.Errorf("invalid percent %q", args[1]))
	}
	if err := a.learning.SetProgress(id, percent); err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"id": id, "progress": percent})
	}
	fmt.Fprintf(w, "Progress for %d: %d%%\n", id, percent)
	return exitOK
}

// enrolledCourse is a course with its progress
type enrolledCourse struct {
	models.Course
	Progress int `json:"progress"`
}

func runLearning(_ context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	state := a.store.State()
	var out []enrolledCourse
	for _, c := range lookup(a.store, state.Enrolled) {
		out = append(out, enrolledCourse{Course: c, Progress: state.Progress[c.ID]})
	}
	if IsJSONOutput() {
		return writeJSON(w, out)
	}
	if len(out) == 0 {
		fmt.Fprintln(w, "Not enrolled in any course")
		return exitOK
	}
	for _, c := range out {
		fmt.Fprintf(w, "%4d  %-32s %s %3d%%\n", c.ID, truncate(c.Title, 32), textBar(c.Progress, 20), c.Progress)
	}
	return exitOK
}

func runRecommend(_ context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	recs := a.store.RecomputeRecommendations()
	if IsJSONOutput() {
		return writeJSON(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations. Run 'learnctl courses refresh' first.")
		return exitOK
	}
	fmt.Fprintln(w, formatCoursesHuman(a.store, recs))
	return exitOK
}

// lookup resolves ids against the catalog, skipping unknown ones
func lookup(st *store.Store, ids []int) []models.Course {
	out := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := st.Course(id); ok {
			out = append(out, c)
		}
	}
	return out
}

func textBar(percent, width int) string {
	filled := widgets.Filled(percent, width)
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = '.'
		}
	}
	return "[" + string(bar) + "]"
}
