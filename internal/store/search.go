// ABOUTME: Catalog filtering by free-text query and category
// ABOUTME: Matches title or category case-insensitively

package store

import (
	"strings"

	"github.com/markalston/learnctl/internal/models"
)

// AllCategories selects every category in Search
const AllCategories = "All"

// Search filters the catalog. An empty query matches everything;
// an empty category or AllCategories disables the category filter.
func (s *Store) Search(query, category string) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterCourses(s.state.Catalog, query, category)
}

// FilterCourses is the pure form of Search
func FilterCourses(courses []models.Course, query, category string) []models.Course {
	q := strings.ToLower(query)
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		matchesQuery := strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Category), q)
		matchesCategory := category == "" || category == AllCategories || c.Category == category
		if matchesQuery && matchesCategory {
			out = append(out, c)
		}
	}
	return out
}

// Categories lists distinct catalog categories in first-seen order
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.state.Catalog {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out
}
