// ABOUTME: Catalog commands: refresh, list, show and search
// ABOUTME: Listings mark bookmarked and enrolled courses

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/store"
)

var (
	refreshCount   int
	courseCategory string
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Browse the course catalog",
}

var coursesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch a fresh catalog with instructors",
	Args:  cobra.NoArgs,
	Run:   withApp(runCoursesRefresh),
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the local catalog",
	Args:  cobra.NoArgs,
	Run:   withApp(runCoursesList),
}

var coursesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show course details and instructor",
	Args:  cobra.ExactArgs(1),
	Run:   withApp(runCoursesShow),
}

var coursesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search course titles and categories",
	Args:  cobra.MinimumNArgs(1),
	Run:   withApp(runCoursesSearch),
}

func init() {
	rootCmd.AddCommand(coursesCmd)
	coursesCmd.AddCommand(coursesRefreshCmd, coursesListCmd, coursesShowCmd, coursesSearchCmd)

	coursesRefreshCmd.Flags().IntVarP(&refreshCount, "count", "n", 0, "Number of courses (default LEARN_CATALOG_SIZE)")
	coursesListCmd.Flags().StringVarP(&courseCategory, "category", "c", "", "Only this category")
	coursesSearchCmd.Flags().StringVarP(&courseCategory, "category", "c", "", "Only this category")
}

func runCoursesRefresh(ctx context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	n := refreshCount
	if n <= 0 {
		n = a.cfg.CatalogSize
	}
	courses, err := a.catalog.Refresh(ctx, n)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, courses)
	}
	fmt.Fprintf(w, "Fetched %d courses\n", len(courses))
	fmt.Fprintln(w, formatCoursesHuman(a.store, courses))
	return exitOK
}

func runCoursesList(_ context.Context, a *app, w io.Writer, _ []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	courses := a.store.Search("", courseCategory)
	if IsJSONOutput() {
		return writeJSON(w, courses)
	}
	if len(a.store.State().Catalog) == 0 {
		fmt.Fprintln(w, "No courses yet. Run 'learnctl courses refresh'.")
		return exitOK
	}
	fmt.Fprintln(w, formatCoursesHuman(a.store, courses))
	return exitOK
}

func runCoursesShow(_ context.Context, a *app, w io.Writer, args []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	id, err := parseID(args[0])
	if err != nil {
		return fail(w, err)
	}
	course, instructor, ok := a.catalog.Course(id)
	if !ok {
		fmt.Fprintf(w, "Error: course %d not in catalog\n", id)
		return exitError
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"course": course, "instructor": instructor})
	}
	fmt.Fprintln(w, formatCourseDetail(a.store, course, instructor))
	return exitOK
}

func runCoursesSearch(_ context.Context, a *app, w io.Writer, args []string) int {
	if code, ok := requireLogin(a, w); !ok {
		return code
	}
	courses := a.catalog.Search(strings.Join(args, " "), courseCategory)
	if IsJSONOutput() {
		return writeJSON(w, courses)
	}
	if len(courses) == 0 {
		fmt.Fprintln(w, "No matching courses")
		return exitOK
	}
	fmt.Fprintln(w, formatCoursesHuman(a.store, courses))
	return exitOK
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid course id %q", s)
	}
	return id, nil
}

// formatCoursesHuman renders one line per course with bookmark and enrollment markers
func formatCoursesHuman(st *store.Store, courses []models.Course) string {
	var sb strings.Builder
	for i, c := range courses {
		if i > 0 {
			sb.WriteString("\n")
		}
		mark := " "
		if st.IsBookmarked(c.ID) {
			mark = "*"
		}
		line := fmt.Sprintf("%s %4d  %-32s %-14s $%-8.2f %.1f", mark, c.ID, truncate(c.Title, 32), c.Category, c.Price, c.Rating)
		if p, ok := st.Progress(c.ID); ok && st.IsEnrolled(c.ID) {
			line += fmt.Sprintf("  [%d%%]", p)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// formatCourseDetail renders a course with its instructor
func formatCourseDetail(st *store.Store, c models.Course, instructor *models.Instructor) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", c.Title)
	fmt.Fprintf(&sb, "Category:    %s\n", c.Category)
	fmt.Fprintf(&sb, "Brand:       %s\n", c.Brand)
	fmt.Fprintf(&sb, "Price:       $%.2f (%.0f%% off)\n", c.Price, c.DiscountPercentage)
	fmt.Fprintf(&sb, "Rating:      %.1f\n", c.Rating)
	if instructor != nil {
		fmt.Fprintf(&sb, "Instructor:  %s (%s)\n", instructor.FullName(), instructor.Email)
	} else {
		sb.WriteString("Instructor:  -\n")
	}
	fmt.Fprintf(&sb, "Bookmarked:  %s\n", yesNo(st.IsBookmarked(c.ID)))
	if st.IsEnrolled(c.ID) {
		p, _ := st.Progress(c.ID)
		fmt.Fprintf(&sb, "Enrolled:    yes, %d%% complete\n", p)
	} else {
		sb.WriteString("Enrolled:    no\n")
	}
	sb.WriteString("\n")
	sb.WriteString(c.Description)
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
