// ABOUTME: Recommendation derivation from bookmarks, enrollment and the catalog
// ABOUTME: Recomputed explicitly after bookmark, enroll and catalog mutations

package store

import (
	"slices"

	"github.com/markalston/learnctl/internal/models"
)

// MaxRecommendations caps the recommended list
const MaxRecommendations = 4

// RecomputeRecommendations derives the recommended courses and stores them.
// With an empty catalog the previous recommendations are kept.
func (s *Store) RecomputeRecommendations() []models.Course {
	s.mu.Lock()
	if len(s.state.Catalog) == 0 {
		out := slices.Clone(s.state.Recommended)
		s.mu.Unlock()
		return out
	}
	next := recommend(s.state.Catalog, s.state.Bookmarks, s.state.Enrolled)
	changed := !sameCourses(next, s.state.Recommended)
	s.state.Recommended = next
	s.mu.Unlock()

	if changed {
		s.emit(ChangeRecommended)
	}
	return slices.Clone(next)
}

// recommend picks up to MaxRecommendations catalog items that share a category with
// a bookmarked or enrolled item and are neither. Falls back to the head of the catalog.
func recommend(catalog []models.Course, bookmarks, enrolled []int) []models.Course {
	interested := make(map[int]bool, len(bookmarks)+len(enrolled))
	for _, id := range bookmarks {
		interested[id] = true
	}
	for _, id := range enrolled {
		interested[id] = true
	}

	categories := make(map[string]bool)
	for _, c := range catalog {
		if interested[c.ID] {
			categories[c.Category] = true
		}
	}

	fallback := slices.Clone(catalog[:min(MaxRecommendations, len(catalog))])
	if len(categories) == 0 {
		return fallback
	}

	var out []models.Course
	for _, c := range catalog {
		if categories[c.Category] && !interested[c.ID] {
			out = append(out, c)
			if len(out) == MaxRecommendations {
				break
			}
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func sameCourses(a, b []models.Course) bool {
	return slices.EqualFunc(a, b, func(x, y models.Course) bool { return x.ID == y.ID })
}
