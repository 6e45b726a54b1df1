// ABOUTME: Auth records exchanged with the remote user API
// ABOUTME: Defines the user profile, token pair, and login/register payloads

package models

// Avatar is the remote profile picture reference
type Avatar struct {
	URL       string `json:"url"`
	LocalPath string `json:"localPath,omitempty"`
}

// User is the authenticated account profile.
// The remote API names the identifier "_id".
type User struct {
	ID       string  `json:"_id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *Avatar `json:"avatar,omitempty"`
	Role     string  `json:"role"`
}

// TokenPair holds the bearer and refresh credentials
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthData is the data payload of login and register responses
type AuthData struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginRequest represents credentials for authentication
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a new account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// RefreshRequest carries the refresh token to the refresh endpoint
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
