// ABOUTME: Account endpoints: login, register, current user, logout, token refresh, avatar
// ABOUTME: Token refresh is a single attempt so it never re-enters the 401 handling

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/markalston/learnctl/internal/models"
)

const (
	pathLogin       = "/users/login"
	pathRegister    = "/users/register"
	pathCurrentUser = "/users/current-user"
	pathLogout      = "/users/logout"
	pathRefresh     = "/users/refresh-token"
	pathAvatar      = "/users/avatar"

	// RoleUser is the role requested on registration
	RoleUser = "USER"
)

// Login calls POST /users/login
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthData, error) {
	data, err := call[models.AuthData](ctx, c, "login", http.MethodPost, pathLogin,
		models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Register calls POST /users/register
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.AuthData, error) {
	data, err := call[models.AuthData](ctx, c, "register", http.MethodPost, pathRegister,
		models.RegisterRequest{Username: username, Email: email, Password: password, Role: RoleUser})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// CurrentUser calls GET /users/current-user
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := call[models.User](ctx, c, "current user", http.MethodGet, pathCurrentUser, nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout calls POST /users/logout
func (c *Client) Logout(ctx context.Context) error {
	r, err := c.newRequest("logout", http.MethodPost, pathLogout, nil)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, r)
	return err
}

// RefreshToken calls POST /users/refresh-token once, without retry or refresh handling
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	r, err := c.newRequest("refresh token", http.MethodPost, pathRefresh, models.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, c.statusError(r, resp)
	}
	pair, err := decode[models.TokenPair](r, resp)
	if err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, &Error{Kind: ErrBadResponse, Op: r.op, Method: r.method, Path: r.path, Status: resp.status, Message: "refresh response carried no access token"}
	}
	return &pair, nil
}

// UpdateAvatar calls PATCH /users/avatar with the image as multipart field "avatar"
func (c *Client) UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*models.User, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build avatar upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build avatar upload: %w", err)
	}

	r, err := c.newRequest("update avatar", http.MethodPatch, pathAvatar, nil)
	if err != nil {
		return nil, err
	}
	r.body = buf.Bytes()
	r.contentType = w.FormDataContentType()

	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	user, err := decode[models.User](r, resp)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
