// ABOUTME: Tests for the course list component
// ABOUTME: Covers navigation, selection, search entry and history recall

package courselist

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/tui/widgets"
)

func sampleCourses() []models.Course {
	return []models.Course{
		{ID: 1, Title: "Go Basics", Category: "programming"},
		{ID: 2, Title: "Watercolor", Category: "art"},
		{ID: 3, Title: "Go Concurrency", Category: "programming"},
	}
}

func newList() *List {
	l := New(nil)
	l.SetSize(80, 20)
	l.SetCourses("Courses", sampleCourses())
	return l
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(l *List, keys ...string) (*List, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = l.Update(key(k))
		l = model.(*List)
	}
	return l, cmd
}

func TestNavigateClampsAtEnds(t *testing.T) {
	l := newList()

	l, _ = send(l, "up")
	if l.cursor != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", l.cursor)
	}

	l, _ = send(l, "down", "j", "down", "down")
	if l.cursor != 2 {
		t.Errorf("expected cursor clamped at 2, got %d", l.cursor)
	}

	l, _ = send(l, "k")
	if c, _ := l.Selected(); c.ID != 2 {
		t.Errorf("expected course 2 selected, got %d", c.ID)
	}
}

func TestEnterSelectsCourse(t *testing.T) {
	l := newList()
	l, cmd := send(l, "down", "enter")
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	msg, ok := cmd().(CourseSelectedMsg)
	if !ok {
		t.Fatalf("expected CourseSelectedMsg, got %T", cmd())
	}
	if msg.ID != 2 {
		t.Errorf("expected id 2, got %d", msg.ID)
	}
}

func TestEnterOnEmptyListDoesNothing(t *testing.T) {
	l := New(nil)
	_, cmd := send(l, "enter")
	if cmd != nil {
		t.Error("expected no command on an empty list")
	}
	if _, ok := l.Selected(); ok {
		t.Error("expected nothing selected")
	}
}

func TestSearchSubmitsTrimmedQuery(t *testing.T) {
	l := newList()
	l, _ = send(l, "/")
	if !l.Searching() {
		t.Fatal("expected search prompt to be focused")
	}

	l, _ = send(l, " ", "g", "o", " ")
	l, cmd := send(l, "enter")
	if l.Searching() {
		t.Error("expected search prompt closed after enter")
	}
	msg, ok := cmd().(SearchMsg)
	if !ok {
		t.Fatalf("expected SearchMsg, got %T", cmd())
	}
	if msg.Query != "go" {
		t.Errorf("expected query %q, got %q", "go", msg.Query)
	}
}

func TestSearchEscapeCancels(t *testing.T) {
	l := newList()
	l, _ = send(l, "/", "x")
	l, cmd := send(l, "esc")
	if l.Searching() {
		t.Error("expected search prompt closed after esc")
	}
	if cmd != nil {
		t.Error("expected no search on esc")
	}
}

func TestSearchRecallsHistory(t *testing.T) {
	l := newList()
	l.SetHistory([]string{"newest", "older"})
	l, _ = send(l, "/", "up")
	if got := l.textInput.Value(); got != "newest" {
		t.Errorf("expected newest query, got %q", got)
	}
	l, _ = send(l, "up", "up")
	if got := l.textInput.Value(); got != "older" {
		t.Errorf("expected recall to stop at oldest, got %q", got)
	}
	l, _ = send(l, "down", "down")
	if got := l.textInput.Value(); got != "" {
		t.Errorf("expected prompt cleared past newest, got %q", got)
	}
}

func TestViewMarksCourses(t *testing.T) {
	l := New(func(id int) widgets.CourseMarks {
		return widgets.CourseMarks{Enrolled: id == 3, Progress: 40}
	})
	l.SetSize(100, 20)
	l.SetCourses("Results", sampleCourses())

	view := l.View()
	for _, want := range []string{"Results (3)", "Go Basics", "Watercolor", "programming", "1/3"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestViewEmpty(t *testing.T) {
	l := New(nil)
	if !strings.Contains(l.View(), "Press r") {
		t.Error("expected empty list hint")
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	var many []models.Course
	for i := 1; i <= 30; i++ {
		many = append(many, models.Course{ID: i, Title: "Course"})
	}
	l := New(nil)
	l.SetSize(80, 8) // four rows
	l.SetCourses("Courses", many)

	for range 10 {
		l, _ = send(l, "down")
	}
	if l.offset != 7 {
		t.Errorf("expected offset 7 with cursor 10 and 4 rows, got %d", l.offset)
	}
	l, _ = send(l, "g")
	if l.offset != 0 || l.cursor != 0 {
		t.Errorf("expected home to reset, got cursor %d offset %d", l.cursor, l.offset)
	}
}

func TestReloadClampsCursor(t *testing.T) {
	l := newList()
	l, _ = send(l, "down", "down")
	l.Reload(sampleCourses()[:1])
	if l.cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", l.cursor)
	}
	l.Reload(nil)
	if _, ok := l.Selected(); ok {
		t.Error("expected nothing selected after emptying")
	}
}
