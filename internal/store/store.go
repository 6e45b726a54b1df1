// ABOUTME: Local application state store: session plus course interaction state
// ABOUTME: Single source of truth for the client; every mutation is written through to storage

package store

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/notify"
	"github.com/markalston/learnctl/internal/storage"
)

// Persistence keys. Tokens live in the secure tier, everything else in the general tier.
const (
	keyAccessToken   = "auth_token"
	keyRefreshToken  = "refresh_token"
	keyUser          = "user_profile"
	keyBookmarks     = "bookmarks"
	keyEnrolled      = "enrolled"
	keyProgress      = "progress"
	keySearchHistory = "search_history"
	keyCatalog       = "catalog"
	keyInstructors   = "instructors"
	keyLastActive    = "last_active"
)

// ErrPersistence marks a failed storage read or write.
// The in-memory state has already been updated when it is returned.
var ErrPersistence = errors.New("store: persistence failure")

// Change names the slice of state a mutation touched
type Change int

const (
	ChangeSession Change = iota
	ChangeBookmarks
	ChangeEnrolled
	ChangeProgress
	ChangeSearchHistory
	ChangeCatalog
	ChangeRecommended
)

func (c Change) String() string {
	switch c {
	case ChangeSession:
		return "session"
	case ChangeBookmarks:
		return "bookmarks"
	case ChangeEnrolled:
		return "enrolled"
	case ChangeProgress:
		return "progress"
	case ChangeSearchHistory:
		return "search_history"
	case ChangeCatalog:
		return "catalog"
	case ChangeRecommended:
		return "recommended"
	default:
		return fmt.Sprintf("change(%d)", int(c))
	}
}

// Session is the authenticated identity held client-side
type Session struct {
	User          *models.User
	AccessToken   string
	RefreshToken  string
	Authenticated bool
	Loading       bool
}

// InteractionState is the locally owned course interaction data
type InteractionState struct {
	Bookmarks     []int
	Enrolled      []int
	Progress      map[int]int
	SearchHistory []string
	Recommended   []models.Course
	Catalog       []models.Course
	Instructors   map[int]models.Instructor
}

// Store holds Session and InteractionState and mediates all persistence
type Store struct {
	mu      sync.RWMutex
	secure  storage.KV
	general storage.KV
	session Session
	state   InteractionState

	lastActive time.Time
	now        func() time.Time

	notifier notify.Notifier
	logger   *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option configures a Store
type Option func(*Store)

// WithNotifier sets the receiver of learning events
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger used for swallowed persistence failures
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store over a protected tier for tokens and a general tier for everything else.
// The session starts unauthenticated and loading until InitializeSession runs.
func New(secure, general storage.KV, opts ...Option) *Store {
	s := &Store{
		secure:   secure,
		general:  general,
		session:  Session{Loading: true},
		notifier: notify.Nop{},
		logger:   slog.Default(),
		now:      time.Now,
		subs:     make(map[int]func(Change)),
		state: InteractionState{
			Progress:    make(map[int]int),
			Instructors: make(map[int]models.Instructor),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns a copy of the current session
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.session)
}

// State returns a deep copy of the current interaction state
func (s *Store) State() InteractionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return InteractionState{
		Bookmarks:     slices.Clone(s.state.Bookmarks),
		Enrolled:      slices.Clone(s.state.Enrolled),
		Progress:      maps.Clone(s.state.Progress),
		SearchHistory: slices.Clone(s.state.SearchHistory),
		Recommended:   slices.Clone(s.state.Recommended),
		Catalog:       slices.Clone(s.state.Catalog),
		Instructors:   maps.Clone(s.state.Instructors),
	}
}

// Subscribe registers fn to be called after every mutation.
// Callbacks run synchronously on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) emit(changes ...Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	ids := slices.Sorted(maps.Keys(s.subs))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, c := range changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// write persists v under key, logging and wrapping any failure
func (s *Store) write(kv storage.KV, key string, v any) error {
	if err := storage.SetJSON(kv, key, v); err != nil {
		s.logger.Warn("Failed to persist state", "key", key, "error", err)
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, key, err)
	}
	return nil
}

func (s *Store) remove(kv storage.KV, key string) error {
	if err := kv.Delete(key); err != nil {
		s.logger.Warn("Failed to erase state", "key", key, "error", err)
		return fmt.Errorf("%w: delete %s: %w", ErrPersistence, key, err)
	}
	return nil
}

// read decodes key into v. A missing key reports found=false without error.
func (s *Store) read(kv storage.KV, key string, v any) (bool, error) {
	err := storage.GetJSON(kv, key, v)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.logger.Warn("Failed to read state", "key", key, "error", err)
		return false, fmt.Errorf("%w: read %s: %w", ErrPersistence, key, err)
	}
	return true, nil
}

func copySession(sess Session) Session {
	if sess.User != nil {
		u := *sess.User
		if u.Avatar != nil {
			a := *u.Avatar
			u.Avatar = &a
		}
		sess.User = &u
	}
	return sess
}
