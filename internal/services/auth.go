// ABOUTME: Account workflows combining validation, the API client and the session store
// ABOUTME: Persistence failures are logged and never fail a workflow

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/markalston/learnctl/internal/models"
	"github.com/markalston/learnctl/internal/store"
	"github.com/markalston/learnctl/internal/validation"
)

// ErrNotAuthenticated is returned by workflows that need a session
var ErrNotAuthenticated = errors.New("not logged in")

// AuthAPI is the subset of the API client used for account workflows
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.AuthData, error)
	Register(ctx context.Context, username, email, password string) (*models.AuthData, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*models.User, error)
}

// AuthService handles login, registration, logout and profile updates
type AuthService struct {
	api    AuthAPI
	store  *store.Store
	logger *slog.Logger
}

// NewAuthService creates an AuthService
func NewAuthService(api AuthAPI, st *store.Store, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{api: api, store: st, logger: logger}
}

// Login validates credentials, authenticates and records the session
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if err := validation.Login(validation.LoginInput{Username: username, Password: password}); err != nil {
		return nil, err
	}
	data, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.persisted("login", s.store.SetSession(data.User, data.AccessToken, data.RefreshToken))
	s.logger.Info("Logged in", "username", data.User.Username)
	return &data.User, nil
}

// Register validates the form and creates the account. When the server returns
// tokens the new account is signed in; otherwise signedIn is false and a login is needed.
func (s *AuthService) Register(ctx context.Context, in validation.RegisterInput) (user *models.User, signedIn bool, err error) {
	in, err = validation.Register(in)
	if err != nil {
		return nil, false, err
	}
	data, err := s.api.Register(ctx, in.Username, in.Email, in.Password)
	if err != nil {
		return nil, false, err
	}
	if data.AccessToken == "" || data.RefreshToken == "" {
		return &data.User, false, nil
	}
	s.persisted("register", s.store.SetSession(data.User, data.AccessToken, data.RefreshToken))
	return &data.User, true, nil
}

// Logout tells the server when a session exists, then always clears local credentials
func (s *AuthService) Logout(ctx context.Context) error {
	if s.store.Session().Authenticated {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn("Remote logout failed", "error", err)
		}
	}
	s.persisted("logout", s.store.ClearSession())
	return nil
}

// RefreshProfile fetches the current user and updates the stored profile
func (s *AuthService) RefreshProfile(ctx context.Context) (*models.User, error) {
	if !s.store.Session().Authenticated {
		return nil, ErrNotAuthenticated
	}
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.persisted("profile", s.store.UpdateUser(*user))
	return user, nil
}

// UpdateAvatar uploads the image at path and updates the stored profile
func (s *AuthService) UpdateAvatar(ctx context.Context, path string) (*models.User, error) {
	if !s.store.Session().Authenticated {
		return nil, ErrNotAuthenticated
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open avatar: %w", err)
	}
	defer f.Close()

	user, err := s.api.UpdateAvatar(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	s.persisted("avatar", s.store.UpdateUser(*user))
	return user, nil
}

func (s *AuthService) persisted(op string, err error) {
	if err != nil {
		s.logger.Warn("State not persisted", "op", op, "error", err)
	}
}
