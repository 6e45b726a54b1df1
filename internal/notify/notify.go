// ABOUTME: Learning event notifications raised by the state store
// ABOUTME: Delivers milestone, bookmark, enrollment and completion messages

package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Kind identifies a notification
type Kind string

const (
	KindBookmarked   Kind = "bookmarked"
	KindUnbookmarked Kind = "unbookmarked"
	KindMilestone    Kind = "milestone"
	KindEnrolled     Kind = "enrolled"
	KindCompleted    Kind = "completed"
	KindReminder     Kind = "reminder"
)

// MilestoneBookmarks is the bookmark count that triggers the milestone
const MilestoneBookmarks = 5

// Event is a single notification
type Event struct {
	Kind     Kind
	CourseID int
	Title    string
	Body     string
}

// Notifier receives events
type Notifier interface {
	Notify(Event)
}

// Bookmarked builds the event for a newly bookmarked course
func Bookmarked(id int, title string) Event {
	if title == "" {
		title = "this course"
	}
	return Event{
		Kind:     KindBookmarked,
		CourseID: id,
		Title:    "Course Bookmarked!",
		Body:     fmt.Sprintf("We've saved %q to your bookmarks.", title),
	}
}

// Unbookmarked builds the event for a removed bookmark
func Unbookmarked(id int) Event {
	return Event{Kind: KindUnbookmarked, CourseID: id, Title: "Bookmark removed"}
}

// Milestone builds the event for reaching MilestoneBookmarks bookmarks
func Milestone(id int) Event {
	return Event{
		Kind:     KindMilestone,
		CourseID: id,
		Title:    "Learning Milestone!",
		Body:     fmt.Sprintf("You've bookmarked %d courses! Ready to start your learning journey?", MilestoneBookmarks),
	}
}

// Enrolled builds the event for a new enrollment
func Enrolled(id int, title string) Event {
	if title == "" {
		title = "this course"
	}
	return Event{
		Kind:     KindEnrolled,
		CourseID: id,
		Title:    "Enrolled!",
		Body:     fmt.Sprintf("You have successfully enrolled in %s. Ready to start learning?", title),
	}
}

// Completed builds the event for reaching 100% progress
func Completed(id int) Event {
	return Event{
		Kind:     KindCompleted,
		CourseID: id,
		Title:    "Lesson Completed!",
		Body:     "Great job! Your progress has been updated.",
	}
}

// Reminder builds the nudge shown after a day without learning activity
func Reminder() Event {
	return Event{
		Kind:  KindReminder,
		Title: "Still learning?",
		Body:  "It's been 24 hours since your last lesson. Keep up the momentum!",
	}
}

// Nop discards events
type Nop struct{}

// Notify implements Notifier
func (Nop) Notify(Event) {}

// LogNotifier writes events to a structured logger
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier
func (n LogNotifier) Notify(e Event) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Notification", "kind", string(e.Kind), "course_id", e.CourseID, "title", e.Title)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// TerminalNotifier prints events as styled lines.
// Unbookmark events are silent.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalNotifier returns a notifier writing to w
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

// Notify implements Notifier
func (n *TerminalNotifier) Notify(e Event) {
	if e.Kind == KindUnbookmarked {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	line := titleStyle.Render(e.Title)
	if e.Body != "" {
		line += " " + bodyStyle.Render(e.Body)
	}
	fmt.Fprintln(n.w, line)
}

// Multi fans an event out to several notifiers in order
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Recorder keeps every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify implements Notifier
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Relay forwards events to a target that can be swapped at runtime
type Relay struct {
	mu     sync.RWMutex
	target Notifier
}

// NewRelay returns a relay delivering to target
func NewRelay(target Notifier) *Relay {
	return &Relay{target: target}
}

// Set replaces the target. A nil target drops events.
func (r *Relay) Set(target Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
}

// Notify implements Notifier
func (r *Relay) Notify(e Event) {
	r.mu.RLock()
	target := r.target
	r.mu.RUnlock()
	if target != nil {
		target.Notify(e)
	}
}
