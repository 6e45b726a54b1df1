// ABOUTME: Learning workflows: bookmarks, enrollment and lesson progress
// ABOUTME: Thin layer over the store that requires catalog courses to exist

package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/markalston/learnctl/internal/store"
)

var (
	// ErrUnknownCourse is returned for ids missing from the catalog
	ErrUnknownCourse = errors.New("course not in catalog")
	// ErrNotEnrolled is returned when recording progress on a course not enrolled in
	ErrNotEnrolled = errors.New("not enrolled")
)

// LearningService manages bookmarks, enrollment and progress
type LearningService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLearningService creates a LearningService
func NewLearningService(st *store.Store, logger *slog.Logger) *LearningService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LearningService{store: st, logger: logger}
}

// ToggleBookmark flips the bookmark on a catalog course
func (s *LearningService) ToggleBookmark(id int) (bool, error) {
	if err := s.known(id); err != nil {
		return false, err
	}
	bookmarked, err := s.store.ToggleBookmark(id)
	s.persisted("bookmark", err)
	return bookmarked, nil
}

// Enroll enrolls in a catalog course. added is false when already enrolled.
func (s *LearningService) Enroll(id int) (added bool, err error) {
	if err := s.known(id); err != nil {
		return false, err
	}
	added, err = s.store.Enroll(id)
	s.persisted("enroll", err)
	return added, nil
}

// SetProgress records progress on an enrolled course
func (s *LearningService) SetProgress(id, percent int) error {
	if !s.store.IsEnrolled(id) {
		return fmt.Errorf("course %d: %w", id, ErrNotEnrolled)
	}
	err := s.store.SetProgress(id, percent)
	if errors.Is(err, store.ErrInvalidProgress) {
		return err
	}
	s.persisted("progress", err)
	return nil
}

// Advance moves progress forward by step, capped at 100, and returns the new value
func (s *LearningService) Advance(id, step int) (int, error) {
	current, _ := s.store.Progress(id)
	next := min(max(current+step, 0), 100)
	if err := s.SetProgress(id, next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *LearningService) known(id int) error {
	if _, ok := s.store.Course(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCourse, id)
	}
	return nil
}

func (s *LearningService) persisted(op string, err error) {
	if err != nil {
		s.logger.Warn("State not persisted", "op", op, "error", err)
	}
}
