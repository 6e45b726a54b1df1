// ABOUTME: Session mutations: login, profile update, token refresh, logout, startup restore
// ABOUTME: Tokens go to the protected tier, the user profile to the general tier

package store

import (
	"context"
	"errors"
	"time"

	"github.com/markalston/learnctl/internal/models"
)

// DefaultInitTimeout bounds how long startup waits on storage before routing anyway
const DefaultInitTimeout = 5 * time.Second

// ErrInitTimeout is returned by Initialize when storage did not answer in time
var ErrInitTimeout = errors.New("store: initialization timed out")

// SetSession records a successful login or registration
func (s *Store) SetSession(user models.User, accessToken, refreshToken string) error {
	s.mu.Lock()
	s.session = Session{
		User:          &user,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		Authenticated: accessToken != "" && refreshToken != "",
	}
	err := errors.Join(
		s.write(s.secure, keyAccessToken, accessToken),
		s.write(s.secure, keyRefreshToken, refreshToken),
		s.write(s.general, keyUser, user),
	)
	s.mu.Unlock()

	s.emit(ChangeSession)
	return err
}

// UpdateUser replaces the profile fields only; tokens are untouched
func (s *Store) UpdateUser(user models.User) error {
	s.mu.Lock()
	s.session.User = &user
	err := s.write(s.general, keyUser, user)
	s.mu.Unlock()

	s.emit(ChangeSession)
	return err
}

// Tokens returns the current access and refresh tokens
func (s *Store) Tokens() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken, s.session.RefreshToken
}

// SetTokens replaces the token pair only. Used by the refresh flow.
// The new tokens are live in memory even when persisting them fails.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	s.session.AccessToken = accessToken
	s.session.RefreshToken = refreshToken
	err := errors.Join(
		s.write(s.secure, keyAccessToken, accessToken),
		s.write(s.secure, keyRefreshToken, refreshToken),
	)
	s.mu.Unlock()

	s.emit(ChangeSession)
	return err
}

// ClearSession erases persisted credentials and resets to unauthenticated
func (s *Store) ClearSession() error {
	s.mu.Lock()
	s.session = Session{}
	err := errors.Join(
		s.remove(s.secure, keyAccessToken),
		s.remove(s.secure, keyRefreshToken),
		s.remove(s.general, keyUser),
	)
	s.mu.Unlock()

	s.emit(ChangeSession)
	return err
}

// InitializeSession restores the session persisted by a previous run.
// A stored access token plus user profile authenticate; the refresh token may be absent.
// Read failures count as absent values. Loading is cleared no matter what.
func (s *Store) InitializeSession(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		access, refresh string
		user            models.User
	)
	_, errA := s.read(s.secure, keyAccessToken, &access)
	_, errR := s.read(s.secure, keyRefreshToken, &refresh)
	hasUser, errU := s.read(s.general, keyUser, &user)

	s.mu.Lock()
	if access != "" && hasUser {
		s.session = Session{
			User:          &user,
			AccessToken:   access,
			RefreshToken:  refresh,
			Authenticated: true,
			Loading:       true,
		}
	} else {
		s.session = Session{Loading: true}
	}
	s.mu.Unlock()

	return errors.Join(errA, errR, errU)
}

// Initialize restores session and interaction state, forcing Loading=false after wait
// so that a hung storage read cannot block routing forever.
func (s *Store) Initialize(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		wait = DefaultInitTimeout
	}

	done := make(chan error, 1)
	go func() {
		err := s.InitializeSession(ctx)
		done <- errors.Join(err, s.LoadInteractions(ctx))
	}()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		s.logger.Warn("State initialization timed out", "wait", wait)
		s.setLoading(false)
		return ErrInitTimeout
	case <-ctx.Done():
		s.setLoading(false)
		return ctx.Err()
	}
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.session.Loading = loading
	s.mu.Unlock()
	s.emit(ChangeSession)
}
