// ABOUTME: Course detail pane for the browser
// ABOUTME: Shows description, pricing, instructor and the user's progress

package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/tui/icons"
	"github.com/markalston/learnctl/internal/tui/styles"
	"github.com/markalston/learnctl/internal/tui/widgets"
)

// Detail displays one course
type Detail struct {
	course     models.Course
	instructor *models.Instructor
	marks      widgets.CourseMarks
	width      int
	height     int
}

// New creates a detail view. instructor may be nil.
func New(course models.Course, instructor *models.Instructor, marks widgets.CourseMarks, width, height int) *Detail {
	return &Detail{
		course:     course,
		instructor: instructor,
		marks:      marks,
		width:      width,
		height:     height,
	}
}

// CourseID returns the id of the course shown
func (d *Detail) CourseID() int {
	return d.course.ID
}

// SetMarks updates bookmark, enrollment and progress after an action
func (d *Detail) SetMarks(marks widgets.CourseMarks) {
	d.marks = marks
}

// SetSize updates the pane dimensions
func (d *Detail) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the detail pane
func (d *Detail) View() string {
	c := d.course
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(c.Title))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("#%d  %s  %s", c.ID, c.Category, c.Brand)))
	sb.WriteString("\n")

	if badges := widgets.CourseBadges(d.marks); badges != "" {
		sb.WriteString(badges)
		sb.WriteString("\n\n")
	}

	if c.Description != "" {
		wrap := lipgloss.NewStyle().Width(max(d.width-2, 20))
		sb.WriteString(wrap.Render(c.Description))
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "%s %.1f   ", icons.Rating.String(), c.Rating)
	sb.WriteString(styles.ValueStyle.Render(fmt.Sprintf("$%.2f", c.Price)))
	if c.DiscountPercentage > 0 {
		sb.WriteString(styles.StatusOK.Render(fmt.Sprintf("  -%.0f%%", c.DiscountPercentage)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(icons.Instructor.String() + " ")
	if d.instructor != nil {
		sb.WriteString(d.instructor.FullName())
		if d.instructor.Email != "" {
			sb.WriteString(styles.Dim.Render("  " + d.instructor.Email))
		}
	} else {
		sb.WriteString(styles.Dim.Render("Instructor unavailable"))
	}
	sb.WriteString("\n\n")

	if d.marks.Enrolled {
		sb.WriteString("Progress\n")
		cfg := widgets.DefaultProgressBarConfig()
		cfg.Width = min(max(d.width-10, 10), 40)
		sb.WriteString(widgets.ProgressBarWithLabel(d.marks.Progress, cfg))
		sb.WriteString("\n")
	} else {
		sb.WriteString(styles.Dim.Render("Not enrolled"))
		sb.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(d.width).
		Height(d.height).
		Render(sb.String())
}
