// ABOUTME: Last learning activity tracking behind the inactivity reminder
// ABOUTME: Bookmarks, enrollment and progress stamp the time; loading restores it

package store

import (
	"time"
)

// InactivityWindow is how long without learning activity before a reminder is due
const InactivityWindow = 24 * time.Hour

// WithClock sets the time source used for activity stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// LastActive returns the time of the last bookmark, enrollment or progress change.
// The zero time means no activity was ever recorded.
func (s *Store) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// ReminderDue reports whether the last recorded activity is older than InactivityWindow
func (s *Store) ReminderDue() bool {
	last := s.LastActive()
	return !last.IsZero() && s.now().Sub(last) >= InactivityWindow
}

// touchLocked stamps the activity time; s.mu must be held
func (s *Store) touchLocked() error {
	s.lastActive = s.now().UTC()
	return s.write(s.general, keyLastActive, s.lastActive)
}

func (s *Store) loadActivity() error {
	var last time.Time
	ok, err := s.read(s.general, keyLastActive, &last)
	if ok {
		s.mu.Lock()
		s.lastActive = last
		s.mu.Unlock()
	}
	return err
}
