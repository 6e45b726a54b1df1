// ABOUTME: Inline badges for a course's relationship to the user
// ABOUTME: Bookmarked, enrolled, completed and recommended markers

package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/learnctl/internal/tui/icons"
)

// Level selects a badge's colors
type Level int

const (
	LevelOK Level = iota
	LevelWarning
	LevelInfo
	LevelAccent
	LevelNeutral
)

var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeAccentBg  = lipgloss.Color("#8B5CF6")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeLightFg   = lipgloss.Color("#FFFFFF")
	BadgeDarkFg    = lipgloss.Color("#000000")
)

// Badge renders text on a colored background
func Badge(text string, level Level) string {
	bg, fg := BadgeNeutralBg, BadgeLightFg
	switch level {
	case LevelOK:
		bg = BadgeOKBg
	case LevelWarning:
		bg, fg = BadgeWarnBg, BadgeDarkFg
	case LevelInfo:
		bg = BadgeInfoBg
	case LevelAccent:
		bg = BadgeAccentBg
	}

	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// CourseMarks describes what the user has done with a course
type CourseMarks struct {
	Bookmarked  bool
	Enrolled    bool
	Progress    int
	Recommended bool
}

// CourseBadges renders the badges that apply, separated by spaces.
// A completed course shows Completed instead of Enrolled.
func CourseBadges(m CourseMarks) string {
	var parts []string
	if m.Bookmarked {
		parts = append(parts, Badge(icons.Bookmark.String()+" Bookmarked", LevelWarning))
	}
	switch {
	case m.Enrolled && m.Progress >= 100:
		parts = append(parts, Badge(icons.Completed.String()+" Completed", LevelOK))
	case m.Enrolled:
		parts = append(parts, Badge(icons.Enrolled.String()+" Enrolled", LevelInfo))
	}
	if m.Recommended {
		parts = append(parts, Badge(icons.Recommend.String()+" For you", LevelAccent))
	}
	return strings.Join(parts, " ")
}

// RowMarker is the one-cell marker shown in course lists
func RowMarker(m CourseMarks) string {
	switch {
	case m.Enrolled && m.Progress >= 100:
		return lipgloss.NewStyle().Foreground(BadgeOKBg).Render(icons.Completed.String())
	case m.Enrolled:
		return lipgloss.NewStyle().Foreground(BadgeInfoBg).Render(icons.Enrolled.String())
	case m.Bookmarked:
		return lipgloss.NewStyle().Foreground(BadgeWarnBg).Render(icons.Bookmark.String())
	default:
		return " "
	}
}
