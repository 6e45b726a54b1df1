// ABOUTME: Scrollable course list with an inline search prompt
// ABOUTME: Emits selection and search messages for the browser to act on

package courselist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/tui/icons"
	"github.com/markalston/learnctl/internal/tui/styles"
	"github.com/markalston/learnctl/internal/tui/widgets"
)

type state int

const (
	stateList state = iota
	stateSearch
)

// CourseSelectedMsg is sent when enter is pressed on a course
type CourseSelectedMsg struct {
	ID int
}

// SearchMsg is sent when a query is submitted. An empty query resets the list.
type SearchMsg struct {
	Query string
}

// MarksFunc reports the user's marks for a course id
type MarksFunc func(id int) widgets.CourseMarks

// List is the course list component
type List struct {
	title     string
	courses   []models.Course
	history   []string
	historyAt int
	marks     MarksFunc
	cursor    int
	offset    int
	state     state
	textInput textinput.Model
	width     int
	height    int
}

// New creates an empty list. marks may be nil.
func New(marks MarksFunc) *List {
	ti := textinput.New()
	ti.Placeholder = "title or category"
	ti.Prompt = icons.Search.String() + " "
	ti.CharLimit = 128
	ti.Width = 50

	if marks == nil {
		marks = func(int) widgets.CourseMarks { return widgets.CourseMarks{} }
	}
	return &List{
		title:     "Courses",
		marks:     marks,
		textInput: ti,
		historyAt: -1,
	}
}

// SetCourses replaces the rows and resets the cursor
func (l *List) SetCourses(title string, courses []models.Course) {
	l.title = title
	l.courses = courses
	l.cursor = 0
	l.offset = 0
}

// Reload swaps the rows in place, keeping the cursor where it can
func (l *List) Reload(courses []models.Course) {
	l.courses = courses
	l.cursor = min(l.cursor, max(len(courses)-1, 0))
	l.offset = min(l.offset, l.cursor)
	l.scroll()
}

// SetHistory sets recent queries, most recent first
func (l *List) SetHistory(history []string) {
	l.history = history
	l.historyAt = -1
}

// SetSize sets the space available for rows
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.textInput.Width = max(20, width-6)
}

// Len returns the number of rows
func (l *List) Len() int {
	return len(l.courses)
}

// Selected returns the course under the cursor
func (l *List) Selected() (models.Course, bool) {
	if l.cursor < 0 || l.cursor >= len(l.courses) {
		return models.Course{}, false
	}
	return l.courses[l.cursor], true
}

// Searching reports whether the search prompt has focus
func (l *List) Searching() bool {
	return l.state == stateSearch
}

// Init implements tea.Model
func (l *List) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.SetSize(msg.Width, msg.Height)
		return l, nil

	case tea.KeyMsg:
		if l.state == stateSearch {
			return l.updateSearch(msg)
		}
		return l.updateList(msg)
	}

	if l.state == stateSearch {
		var cmd tea.Cmd
		l.textInput, cmd = l.textInput.Update(msg)
		return l, cmd
	}
	return l, nil
}

func (l *List) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.courses)-1 {
			l.cursor++
		}
	case "home", "g":
		l.cursor = 0
	case "end", "G":
		l.cursor = max(len(l.courses)-1, 0)
	case "enter":
		if c, ok := l.Selected(); ok {
			return l, func() tea.Msg { return CourseSelectedMsg{ID: c.ID} }
		}
	case "/":
		l.state = stateSearch
		l.historyAt = -1
		l.textInput.SetValue("")
		l.textInput.Focus()
		return l, textinput.Blink
	}
	l.scroll()
	return l, nil
}

func (l *List) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		l.state = stateList
		l.textInput.Blur()
		return l, nil
	case "enter":
		query := strings.TrimSpace(l.textInput.Value())
		l.state = stateList
		l.textInput.Blur()
		return l, func() tea.Msg { return SearchMsg{Query: query} }
	case "up":
		if l.historyAt < len(l.history)-1 {
			l.historyAt++
			l.textInput.SetValue(l.history[l.historyAt])
			l.textInput.CursorEnd()
		}
		return l, nil
	case "down":
		if l.historyAt > 0 {
			l.historyAt--
			l.textInput.SetValue(l.history[l.historyAt])
		} else {
			l.historyAt = -1
			l.textInput.SetValue("")
		}
		l.textInput.CursorEnd()
		return l, nil
	}

	var cmd tea.Cmd
	l.textInput, cmd = l.textInput.Update(msg)
	return l, cmd
}

// rows is how many courses fit on screen
func (l *List) rows() int {
	// title, blank line, and the prompt or hint at the bottom
	if r := l.height - 4; r > 0 {
		return r
	}
	return 10
}

func (l *List) scroll() {
	rows := l.rows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
}

// View implements tea.Model
func (l *List) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("%s %s (%d)", icons.Course.String(), l.title, len(l.courses))))
	b.WriteString("\n")

	if len(l.courses) == 0 {
		b.WriteString(styles.Dim.Render("No courses. Press r to fetch the catalog."))
		b.WriteString("\n")
	}

	end := min(l.offset+l.rows(), len(l.courses))
	for i := l.offset; i < end; i++ {
		b.WriteString(l.row(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if l.state == stateSearch {
		b.WriteString(l.textInput.View())
		if len(l.history) > 0 {
			b.WriteString("\n")
			b.WriteString(styles.Dim.Render("Recent: " + strings.Join(l.history, ", ")))
		}
	} else if len(l.courses) > 0 {
		b.WriteString(styles.Dim.Render(fmt.Sprintf("%d/%d", l.cursor+1, len(l.courses))))
	}
	return b.String()
}

func (l *List) row(i int) string {
	c := l.courses[i]
	m := l.marks(c.ID)

	cursor := "  "
	style := styles.Normal
	if i == l.cursor {
		cursor = "> "
		style = styles.Selected
	}

	title := c.Title
	if limit := l.width - 30; limit > 10 && len(title) > limit {
		title = title[:limit-3] + "..."
	}

	line := fmt.Sprintf("%s%s %4d  %s", cursor, widgets.RowMarker(m), c.ID, style.Render(title))
	line += "  " + styles.Dim.Render(c.Category)
	if m.Enrolled {
		line += "  " + widgets.CompactProgressBar(m.Progress, 10, styles.Secondary)
	}
	return line
}
