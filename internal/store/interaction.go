// ABOUTME: Course interaction mutations: bookmarks, enrollment, progress, search history, catalog
// ABOUTME: Each mutation updates memory, writes its slice through, then raises events

package store

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/notify"
)

// MaxSearchHistory caps the number of remembered queries
const MaxSearchHistory = 10

// ErrInvalidProgress is returned for percentages outside 0..100
var ErrInvalidProgress = errors.New("store: progress must be between 0 and 100")

// LoadInteractions reads persisted interaction state and recomputes recommendations.
// Keys that fail to read keep their in-memory value.
func (s *Store) LoadInteractions(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		bookmarks, enrolled []int
		progress            map[int]int
		history             []string
		catalog             []models.Course
		instructors         map[int]models.Instructor
	)
	okB, errB := s.read(s.general, keyBookmarks, &bookmarks)
	okE, errE := s.read(s.general, keyEnrolled, &enrolled)
	okP, errP := s.read(s.general, keyProgress, &progress)
	okH, errH := s.read(s.general, keySearchHistory, &history)
	okC, errC := s.read(s.general, keyCatalog, &catalog)
	okI, errI := s.read(s.general, keyInstructors, &instructors)
	errA := s.loadActivity()

	s.mu.Lock()
	if okB {
		s.state.Bookmarks = bookmarks
	}
	if okE {
		s.state.Enrolled = enrolled
	}
	if okP && progress != nil {
		s.state.Progress = progress
	}
	if okH {
		s.state.SearchHistory = history
	}
	if okC {
		s.state.Catalog = catalog
	}
	if okI && instructors != nil {
		s.state.Instructors = instructors
	}
	s.mu.Unlock()

	s.emit(ChangeBookmarks, ChangeEnrolled, ChangeProgress, ChangeSearchHistory, ChangeCatalog)
	s.RecomputeRecommendations()

	return errors.Join(errB, errE, errP, errH, errC, errI, errA)
}

// ToggleBookmark adds id to the bookmarks or removes it. Calling it twice restores the prior set.
func (s *Store) ToggleBookmark(id int) (bookmarked bool, err error) {
	s.mu.Lock()
	next := slices.Clone(s.state.Bookmarks)
	if idx := slices.Index(next, id); idx >= 0 {
		next = slices.Delete(next, idx, idx+1)
	} else {
		next = append(next, id)
		bookmarked = true
	}
	s.state.Bookmarks = next
	title := s.courseTitleLocked(id)
	err = errors.Join(s.write(s.general, keyBookmarks, next), s.touchLocked())
	count := len(next)
	s.mu.Unlock()

	s.emit(ChangeBookmarks)
	s.RecomputeRecommendations()

	if bookmarked {
		if count == notify.MilestoneBookmarks {
			s.notifier.Notify(notify.Milestone(id))
		}
		s.notifier.Notify(notify.Bookmarked(id, title))
	} else {
		s.notifier.Notify(notify.Unbookmarked(id))
	}
	return bookmarked, err
}

// Enroll adds id to the enrolled set with progress 0. Enrolling twice is a no-op.
func (s *Store) Enroll(id int) (added bool, err error) {
	s.mu.Lock()
	if slices.Contains(s.state.Enrolled, id) {
		s.mu.Unlock()
		return false, nil
	}
	s.state.Enrolled = append(slices.Clone(s.state.Enrolled), id)
	progress := maps.Clone(s.state.Progress)
	if progress == nil {
		progress = make(map[int]int)
	}
	progress[id] = 0
	s.state.Progress = progress
	title := s.courseTitleLocked(id)
	err = errors.Join(
		s.write(s.general, keyEnrolled, s.state.Enrolled),
		s.write(s.general, keyProgress, progress),
		s.touchLocked(),
	)
	s.mu.Unlock()

	s.emit(ChangeEnrolled, ChangeProgress)
	s.RecomputeRecommendations()
	s.notifier.Notify(notify.Enrolled(id, title))
	return true, err
}

// SetProgress records a playback percentage for id.
// Lower values overwrite higher ones; progress is not forced to be monotonic.
func (s *Store) SetProgress(id, percent int) error {
	if percent < 0 || percent > 100 {
		return ErrInvalidProgress
	}

	s.mu.Lock()
	progress := maps.Clone(s.state.Progress)
	if progress == nil {
		progress = make(map[int]int)
	}
	progress[id] = percent
	s.state.Progress = progress
	err := errors.Join(s.write(s.general, keyProgress, progress), s.touchLocked())
	s.mu.Unlock()

	s.emit(ChangeProgress)
	if percent == 100 {
		s.notifier.Notify(notify.Completed(id))
	}
	return err
}

// PushSearchQuery records query at the front of the history.
// Blank queries are ignored; an existing identical query moves to the front.
func (s *Store) PushSearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	s.mu.Lock()
	next := make([]string, 0, MaxSearchHistory)
	next = append(next, query)
	for _, q := range s.state.SearchHistory {
		if q != query {
			next = append(next, q)
		}
	}
	if len(next) > MaxSearchHistory {
		next = next[:MaxSearchHistory]
	}
	s.state.SearchHistory = next
	err := s.write(s.general, keySearchHistory, next)
	s.mu.Unlock()

	s.emit(ChangeSearchHistory)
	return err
}

// ClearSearchHistory empties the search history
func (s *Store) ClearSearchHistory() error {
	s.mu.Lock()
	s.state.SearchHistory = []string{}
	err := s.write(s.general, keySearchHistory, s.state.SearchHistory)
	s.mu.Unlock()

	s.emit(ChangeSearchHistory)
	return err
}

// SetCatalog replaces the catalog and instructor map wholesale
func (s *Store) SetCatalog(courses []models.Course, instructors map[int]models.Instructor) error {
	if instructors == nil {
		instructors = make(map[int]models.Instructor)
	}

	s.mu.Lock()
	s.state.Catalog = slices.Clone(courses)
	s.state.Instructors = maps.Clone(instructors)
	err := errors.Join(
		s.write(s.general, keyCatalog, s.state.Catalog),
		s.write(s.general, keyInstructors, s.state.Instructors),
	)
	s.mu.Unlock()

	s.emit(ChangeCatalog)
	s.RecomputeRecommendations()
	return err
}

// Course looks up a catalog item by id
func (s *Store) Course(id int) (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.state.Catalog {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

// Instructor returns the instructor paired with course id, if one arrived
func (s *Store) Instructor(id int) (models.Instructor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.state.Instructors[id]
	return i, ok
}

// IsBookmarked reports whether id is bookmarked
func (s *Store) IsBookmarked(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.state.Bookmarks, id)
}

// IsEnrolled reports whether id is enrolled
func (s *Store) IsEnrolled(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.state.Enrolled, id)
}

// Progress returns the recorded percentage for id
func (s *Store) Progress(id int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.Progress[id]
	return p, ok
}

func (s *Store) courseTitleLocked(id int) string {
	for _, c := range s.state.Catalog {
		if c.ID == id {
			return c.Title
		}
	}
	return ""
}
