// ABOUTME: Catalog workflows: refresh from the API, lookup and search
// ABOUTME: Search records non-blank queries in the search history

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/store"
)

// CatalogAPI is the subset of the API client used to build the catalog
type CatalogAPI interface {
	RandomCourses(ctx context.Context, n int) ([]models.Course, error)
	Instructors(ctx context.Context, courseIDs []int) map[int]models.Instructor
}

// CatalogService loads and queries the course catalog
type CatalogService struct {
	api    CatalogAPI
	store  *store.Store
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService
func NewCatalogService(api CatalogAPI, st *store.Store, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{api: api, store: st, logger: logger}
}

// Refresh fetches n courses and an instructor for each, replacing the catalog.
// Duplicate course ids returned by the random endpoint are collapsed.
func (s *CatalogService) Refresh(ctx context.Context, n int) ([]models.Course, error) {
	courses, err := s.api.RandomCourses(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch courses: %w", err)
	}
	courses = dedupe(courses)

	ids := make([]int, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	instructors := s.api.Instructors(ctx, ids)

	if err := s.store.SetCatalog(courses, instructors); err != nil {
		s.logger.Warn("Catalog not persisted", "error", err)
	}
	s.logger.Info("Catalog refreshed", "courses", len(courses), "instructors", len(instructors))
	return courses, nil
}

// Course returns a catalog item with its instructor, if any
func (s *CatalogService) Course(id int) (models.Course, *models.Instructor, bool) {
	course, ok := s.store.Course(id)
	if !ok {
		return models.Course{}, nil, false
	}
	if instructor, ok := s.store.Instructor(id); ok {
		return course, &instructor, true
	}
	return course, nil, true
}

// Search filters the catalog and remembers the query
func (s *CatalogService) Search(query, category string) []models.Course {
	if strings.TrimSpace(query) != "" {
		if err := s.store.PushSearchQuery(query); err != nil {
			s.logger.Warn("Search history not persisted", "error", err)
		}
	}
	return s.store.Search(query, category)
}

func dedupe(courses []models.Course) []models.Course {
	seen := make(map[int]bool, len(courses))
	out := courses[:0:0]
	for _, c := range courses {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}
