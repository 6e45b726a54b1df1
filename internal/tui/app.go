// ABOUTME: Root bubbletea model for the interactive course browser
// ABOUTME: Routes keys between the course list and detail screens and runs catalog refreshes

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/notify"
	"github.com/markalston/learnctl/internal/store"
	"github.com/markalston/learnctl/internal/tui/courselist"
	"github.com/markalston/learnctl/internal/tui/detail"
	"github.com/markalston/learnctl/internal/tui/icons"
	"github.com/markalston/learnctl/internal/tui/styles"
	"github.com/markalston/learnctl/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
)

// Mode selects which courses the list shows
type Mode int

const (
	ModeAll Mode = iota
	ModeBookmarks
	ModeLearning
	ModeRecommended
	ModeSearch
)

func (m Mode) title() string {
	switch m {
	case ModeBookmarks:
		return "Bookmarks"
	case ModeLearning:
		return "My Learning"
	case ModeRecommended:
		return "Recommended"
	case ModeSearch:
		return "Results"
	default:
		return "Courses"
	}
}

// Layout constants
const (
	minTerminalWidth = 80
	panelPadding     = 4
	sidePaneWidth    = 34
	advanceStep      = 10
	toastDuration    = 4 * time.Second
	eventBuffer      = 16
)

// Catalog is the catalog workflow the browser drives
type Catalog interface {
	Refresh(ctx context.Context, n int) ([]models.Course, error)
	Course(id int) (models.Course, *models.Instructor, bool)
	Search(query, category string) []models.Course
}

// Learning is the bookmark, enrollment and progress workflow
type Learning interface {
	ToggleBookmark(id int) (bool, error)
	Enroll(id int) (bool, error)
	Advance(id, step int) (int, error)
}

// State reads the local session and interaction state
type State interface {
	Session() store.Session
	State() store.InteractionState
	Subscribe(fn func(store.Change)) (cancel func())
}

// Deps are the collaborators of the browser
type Deps struct {
	Catalog     Catalog
	Learning    Learning
	State       State
	Logger      *slog.Logger
	CatalogSize int
}

// catalogLoadedMsg is sent when a refresh finishes
type catalogLoadedMsg struct {
	count int
	err   error
}

// eventMsg carries a store notification into the update loop
type eventMsg notify.Event

// signedOutMsg reports that the session was cleared
type signedOutMsg struct{}

// toastExpiredMsg clears a toast unless a newer one replaced it
type toastExpiredMsg struct {
	seq int
}

// App is the root model for the TUI
type App struct {
	ctx      context.Context
	catalog  Catalog
	learning Learning
	state    State
	logger   *slog.Logger
	size     int

	screen  Screen
	mode    Mode
	query   string
	results []models.Course
	width   int
	height  int
	err     error

	snapshot   store.InteractionState
	user       string
	loading    bool
	lastUpdate time.Time
	toast      string
	toastSeq   int

	events      chan notify.Event
	signOut     chan struct{}
	unsubscribe func()
	signedOut   bool
	spinner     spinner.Model
	list        *courselist.List
	detail      *detail.Detail
}

// New creates the browser. ctx bounds every network call it makes.
func New(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	a := &App{
		ctx:      ctx,
		catalog:  deps.Catalog,
		learning: deps.Learning,
		state:    deps.State,
		logger:   logger,
		size:     deps.CatalogSize,
		screen:   ScreenList,
		events:   make(chan notify.Event, eventBuffer),
		signOut:  make(chan struct{}, 1),
		spinner:  s,
	}
	a.unsubscribe = deps.State.Subscribe(a.watchSession)
	a.list = courselist.New(a.marks)
	a.sync()
	a.list.SetCourses(a.mode.title(), a.courses())
	return a
}

// Notifier delivers store events to the browser.
// Events are dropped while the buffer is full.
func (a *App) Notifier() notify.Notifier {
	return chanNotifier(a.events)
}

type chanNotifier chan notify.Event

func (c chanNotifier) Notify(e notify.Event) {
	select {
	case c <- e:
	default:
	}
}

// watchSession runs on the mutating goroutine, so it only signals the update loop
func (a *App) watchSession(c store.Change) {
	if c != store.ChangeSession || a.state.Session().Authenticated {
		return
	}
	select {
	case a.signOut <- struct{}{}:
	default:
	}
}

func (a *App) waitForSignOut() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.signOut:
			return signedOutMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// SignedOut reports whether the browser quit because the session ended
func (a *App) SignedOut() bool {
	return a.signedOut
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-a.events:
			return eventMsg(e)
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForEvent(), a.waitForSignOut()}
	if len(a.snapshot.Catalog) == 0 {
		cmds = append(cmds, a.refresh())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(a.mainWidth(), a.contentHeight())
		if a.detail != nil {
			a.detail.SetSize(a.mainWidth(), a.contentHeight())
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case ScreenDetail:
			return a.updateDetail(msg)
		default:
			return a.updateList(msg)
		}

	case courselist.CourseSelectedMsg:
		a.openDetail(msg.ID)
		return a, nil

	case courselist.SearchMsg:
		a.search(msg.Query)
		return a, nil

	case catalogLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.err = msg.err
			a.logger.Warn("Catalog refresh failed", "error", msg.err)
			return a, nil
		}
		a.err = nil
		a.lastUpdate = time.Now()
		a.sync()
		a.setMode(ModeAll)
		return a, a.showToast(fmt.Sprintf("Fetched %d courses", msg.count))

	case eventMsg:
		cmd := a.showToast(toastText(notify.Event(msg)))
		return a, tea.Batch(cmd, a.waitForEvent())

	case signedOutMsg:
		if a.state.Session().Authenticated {
			return a, a.waitForSignOut()
		}
		a.signedOut = true
		a.logger.Info("Session ended, leaving browser")
		return a, tea.Quit

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.list.Searching() {
		_, cmd := a.list.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.list.Searching() {
		_, cmd := a.list.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.loading {
			return a, a.refresh()
		}
		return a, nil
	case "tab":
		a.setMode(nextMode(a.mode))
		return a, nil
	case "esc":
		if a.mode == ModeSearch {
			a.setMode(ModeAll)
		}
		return a, nil
	case "b":
		if c, ok := a.list.Selected(); ok {
			a.toggleBookmark(c.ID)
		}
		return a, nil
	case "e":
		if c, ok := a.list.Selected(); ok {
			a.enroll(c.ID)
		}
		return a, nil
	}

	_, cmd := a.list.Update(msg)
	return a, cmd
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.detail == nil {
		a.screen = ScreenList
		return a, nil
	}
	id := a.detail.CourseID()

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "backspace", "h", "left":
		a.screen = ScreenList
		a.detail = nil
		a.list.Reload(a.courses())
		return a, nil
	case "b":
		a.toggleBookmark(id)
	case "e":
		a.enroll(id)
	case "+", "l", "right":
		a.advance(id, advanceStep)
	case "-":
		a.advance(id, -advanceStep)
	case "c":
		a.advance(id, 100)
	}
	a.detail.SetMarks(a.marks(id))
	return a, nil
}

func nextMode(m Mode) Mode {
	switch m {
	case ModeAll:
		return ModeBookmarks
	case ModeBookmarks:
		return ModeLearning
	case ModeLearning:
		return ModeRecommended
	default:
		return ModeAll
	}
}

func (a *App) setMode(m Mode) {
	a.mode = m
	if m != ModeSearch {
		a.query = ""
		a.results = nil
	}
	a.list.SetCourses(a.listTitle(), a.courses())
}

func (a *App) listTitle() string {
	if a.mode == ModeSearch {
		return fmt.Sprintf("Results for %q", a.query)
	}
	return a.mode.title()
}

func (a *App) search(query string) {
	if query == "" {
		a.setMode(ModeAll)
		return
	}
	a.query = query
	a.mode = ModeSearch
	a.results = a.catalog.Search(query, "")
	a.sync()
	a.list.SetCourses(a.listTitle(), a.results)
}

func (a *App) openDetail(id int) {
	course, instructor, ok := a.catalog.Course(id)
	if !ok {
		a.err = fmt.Errorf("course %d is no longer in the catalog", id)
		return
	}
	a.err = nil
	a.detail = detail.New(course, instructor, a.marks(id), a.mainWidth(), a.contentHeight())
	a.screen = ScreenDetail
}

func (a *App) toggleBookmark(id int) {
	_, err := a.learning.ToggleBookmark(id)
	a.afterAction(err)
}

func (a *App) enroll(id int) {
	added, err := a.learning.Enroll(id)
	a.afterAction(err)
	if err == nil && !added {
		a.toast = "Already enrolled"
	}
}

func (a *App) advance(id, step int) {
	_, err := a.learning.Advance(id, step)
	a.afterAction(err)
}

// afterAction records err and re-reads state so marks and lists follow the change
func (a *App) afterAction(err error) {
	a.err = err
	a.sync()
	if a.screen == ScreenList {
		a.list.Reload(a.courses())
	}
}

// sync takes a fresh snapshot of local state
func (a *App) sync() {
	a.snapshot = a.state.State()
	a.list.SetHistory(a.snapshot.SearchHistory)
	a.user = ""
	if sess := a.state.Session(); sess.Authenticated && sess.User != nil {
		a.user = sess.User.Username
	}
}

// courses returns the rows for the current mode
func (a *App) courses() []models.Course {
	s := a.snapshot
	switch a.mode {
	case ModeBookmarks:
		return pick(s.Catalog, s.Bookmarks)
	case ModeLearning:
		return pick(s.Catalog, s.Enrolled)
	case ModeRecommended:
		return s.Recommended
	case ModeSearch:
		return a.results
	default:
		return s.Catalog
	}
}

// pick returns catalog courses whose ids are in ids, in ids order
func pick(catalog []models.Course, ids []int) []models.Course {
	out := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		for _, c := range catalog {
			if c.ID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (a *App) marks(id int) widgets.CourseMarks {
	s := a.snapshot
	return widgets.CourseMarks{
		Bookmarked:  slices.Contains(s.Bookmarks, id),
		Enrolled:    slices.Contains(s.Enrolled, id),
		Progress:    s.Progress[id],
		Recommended: slices.ContainsFunc(s.Recommended, func(c models.Course) bool { return c.ID == id }),
	}
}

func (a *App) refresh() tea.Cmd {
	a.loading = true
	a.err = nil
	ctx, n := a.ctx, a.size
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		courses, err := a.catalog.Refresh(ctx, n)
		return catalogLoadedMsg{count: len(courses), err: err}
	})
}

func (a *App) showToast(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	a.toastSeq++
	a.toast = text
	seq := a.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func toastText(e notify.Event) string {
	if e.Kind == notify.KindUnbookmarked {
		return e.Title
	}
	if e.Body == "" {
		return e.Title
	}
	return e.Title + " " + e.Body
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDetail:
		content = a.viewDetail()
	default:
		content = a.viewList()
	}
	return a.wrapWithFrame(content)
}

func (a *App) viewList() string {
	main := styles.ActivePanel.Width(a.mainWidth()).Render(a.list.View())
	if a.width < minTerminalWidth+sidePaneWidth {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, main, styles.Panel.Width(sidePaneWidth).Render(a.viewSummary()))
}

func (a *App) viewDetail() string {
	if a.detail == nil {
		return ""
	}
	main := styles.ActivePanel.Width(a.mainWidth()).Render(a.detail.View())
	if a.width < minTerminalWidth+sidePaneWidth {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, main, styles.Panel.Width(sidePaneWidth).Render(a.viewActions()))
}

// viewSummary renders counts and the top recommendations
func (a *App) viewSummary() string {
	s := a.snapshot
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("My Learning"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s Bookmarks  %d\n", icons.Bookmark.String(), len(s.Bookmarks))
	fmt.Fprintf(&sb, "%s Enrolled   %d\n", icons.Enrolled.String(), len(s.Enrolled))
	done := 0
	for _, id := range s.Enrolled {
		if s.Progress[id] >= 100 {
			done++
		}
	}
	fmt.Fprintf(&sb, "%s Completed  %d\n\n", icons.Completed.String(), done)

	sb.WriteString(styles.Title.Render(icons.Recommend.String() + " For you"))
	sb.WriteString("\n")
	if len(s.Recommended) == 0 {
		sb.WriteString(styles.Dim.Render("Bookmark or enroll to get picks"))
	}
	for i, c := range s.Recommended {
		if i == 3 {
			break
		}
		title := c.Title
		if len(title) > sidePaneWidth-8 {
			title = title[:sidePaneWidth-11] + "..."
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
	}
	return sb.String()
}

func (a *App) viewActions() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Actions"))
	sb.WriteString("\n")
	sb.WriteString(icons.Bookmark.String() + " b  Toggle bookmark\n")
	sb.WriteString(icons.Enrolled.String() + " e  Enroll\n")
	sb.WriteString(icons.Completed.String() + " +  Advance 10%\n")
	sb.WriteString("  -  Step back 10%\n")
	sb.WriteString("  c  Mark complete\n")
	sb.WriteString(icons.Back.String() + " esc Back to list\n")
	sb.WriteString(icons.Quit.String() + " q  Quit\n")
	return sb.String()
}

// mainWidth is the width of the list or detail pane
func (a *App) mainWidth() int {
	if a.width < minTerminalWidth+sidePaneWidth {
		return max(a.width-panelPadding, 20)
	}
	return a.width - sidePaneWidth - panelPadding*2
}

// contentHeight is the height left after the frame and panel borders
func (a *App) contentHeight() int {
	// header, footer, status line, and the panel's border plus padding
	return max(a.height-8, 5)
}

// renderHeader draws the top border with the app name and the signed-in user
func (a *App) renderHeader() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("learnctl"))
	user := a.user
	if user == "" {
		user = "guest"
	}
	right := " " + contextStyle.Render(user) + " "

	fill := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return borderStyle.Render("╭─" + left + strings.Repeat("─", fill) + right + "─╮")
}

// renderFooter draws the bottom border with shortcuts and refresh time
func (a *App) renderFooter() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch {
	case a.screen == ScreenDetail:
		shortcuts = []string{"b Bookmark", "e Enroll", "+/- Progress", "esc Back", "q Quit"}
	case a.list.Searching():
		shortcuts = []string{"Enter Search", "↑↓ History", "Esc Cancel"}
	default:
		shortcuts = []string{"/ Search", "Tab View", "b Bookmark", "e Enroll", "r Refresh", "q Quit"}
	}

	styled := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		k, label, _ := strings.Cut(s, " ")
		styled = append(styled, styles.KeyStyle.Render(k)+" "+labelStyle.Render(label))
	}
	left := " " + strings.Join(styled, "  ") + " "

	right := ""
	if !a.lastUpdate.IsZero() {
		right = " " + statusStyle.Render("Updated "+formatTimeSince(a.lastUpdate)) + " "
	}

	fill := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return borderStyle.Render("╰─") + left + borderStyle.Render(strings.Repeat("─", fill)) + right + borderStyle.Render("─╯")
}

// statusLine shows the spinner, the latest error, or the latest toast
func (a *App) statusLine() string {
	switch {
	case a.loading:
		return " " + a.spinner.View() + " Fetching courses..."
	case a.err != nil:
		return " " + styles.StatusCritical.Render(icons.Warning.String()+" "+a.err.Error())
	case a.toast != "":
		return " " + styles.StatusOK.Render(a.toast)
	}
	return ""
}

// formatTimeSince formats the age of t in short human form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// wrapWithFrame wraps content with header, status line and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.statusLine())
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// Run starts the browser on the alternate screen and blocks until it exits
func Run(ctx context.Context, a *App) error {
	defer a.unsubscribe()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
