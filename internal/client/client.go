// ABOUTME: HTTP client for the learning catalog API
// ABOUTME: Injects bearer tokens, refreshes once on 401 and retries once on transient failures

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/markalston/learnctl/internal/models"
)

const (
	// DefaultBaseURL is the public demo API
	DefaultBaseURL = "https://api.freeapi.app/api/v1"
	// DefaultTimeout bounds each physical attempt
	DefaultTimeout = 15 * time.Second
	// DefaultFanOut bounds concurrent catalog fetches
	DefaultFanOut = 5

	maxBodyBytes = 4 << 20
)

// TokenStore is the session state the client reads and updates
type TokenStore interface {
	Tokens() (access, refresh string)
	SetTokens(access, refresh string) error
	ClearSession() error
}

// DialContextFunc dials the network for the underlying transport
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client is the API client for the learning catalog backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *slog.Logger
	timeout    time.Duration
	dial       DialContextFunc
	fanOut     int

	refreshGroup singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithTokenStore sets the session the client authenticates with
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient replaces the underlying HTTP client (useful for testing)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-attempt timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDialContext routes the default transport through dial
func WithDialContext(dial DialContextFunc) Option {
	return func(c *Client) { c.dial = dial }
}

// WithFanOut bounds concurrent requests in RandomCourses and Instructors
func WithFanOut(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.fanOut = n
		}
	}
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  noTokens{},
		logger:  slog.Default(),
		timeout: DefaultTimeout,
		fanOut:  DefaultFanOut,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = noTokens{}
	}
	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.dial != nil {
			transport.DialContext = c.dial
		}
		c.httpClient = &http.Client{Timeout: c.timeout, Transport: transport}
	}
	return c
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request is one logical request. attempt counts physical sends.
type request struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
	requestID   string
	attempt     int
	// token overrides the store after a refresh so a failed persist cannot lose it
	token string
}

type response struct {
	status int
	body   []byte
}

func (c *Client) newRequest(op, method, path string, payload any) (*request, error) {
	r := &request{
		op:          op,
		method:      method,
		path:        path,
		contentType: "application/json",
		requestID:   uuid.NewString(),
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		r.body = body
	}
	return r, nil
}

// send performs one physical attempt
func (c *Client) send(ctx context.Context, r *request) (*response, error) {
	r.attempt++

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, c.newError(r, ErrFatal, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", r.contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", r.requestID)
	token := r.token
	if token == "" {
		token, _ = c.tokens.Tokens()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.newError(r, ErrCanceled, ctx.Err())
		}
		c.logger.Debug("API request failed", "op", r.op, "attempt", r.attempt, "request_id", r.requestID, "error", err)
		return nil, c.newError(r, ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.newError(r, ErrCanceled, ctx.Err())
		}
		return nil, c.newError(r, ErrTransient, fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("API request",
		"op", r.op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"attempt", r.attempt,
		"request_id", r.requestID,
		"duration", time.Since(start))
	return &response{status: resp.StatusCode, body: data}, nil
}

// do runs the response state machine for one logical request
func (c *Client) do(ctx context.Context, r *request) (*response, error) {
	for {
		resp, err := c.send(ctx, r)
		if err != nil {
			if errors.Is(err, ErrTransient) && r.attempt == 1 {
				c.logger.Warn("Retrying request after transport failure", "op", r.op, "request_id", r.requestID, "error", err)
				continue
			}
			return nil, err
		}

		switch {
		case resp.status >= 200 && resp.status < 300:
			return resp, nil

		case resp.status == http.StatusUnauthorized && r.attempt == 1:
			authErr := c.statusError(r, resp)
			token, err := c.refreshSession(ctx)
			if errors.Is(err, errNoRefreshToken) {
				return nil, authErr
			}
			if err != nil {
				return nil, errors.Join(authErr, err)
			}
			r.token = token
			continue

		case resp.status >= 500 && r.attempt == 1:
			c.logger.Warn("Retrying request after server error", "op", r.op, "status", resp.status, "request_id", r.requestID)
			continue

		default:
			return nil, c.statusError(r, resp)
		}
	}
}

var errNoRefreshToken = errors.New("no refresh token")

// refreshSession exchanges the stored refresh token for a new pair.
// Concurrent callers holding the same refresh token share one call.
func (c *Client) refreshSession(ctx context.Context) (string, error) {
	_, refreshToken := c.tokens.Tokens()
	if refreshToken == "" {
		c.clearSession()
		return "", errNoRefreshToken
	}

	v, err, shared := c.refreshGroup.Do(refreshToken, func() (any, error) {
		pair, err := c.RefreshToken(ctx, refreshToken)
		if err != nil {
			c.logger.Warn("Token refresh failed, clearing session", "error", err)
			c.clearSession()
			return nil, err
		}
		if err := c.tokens.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
			c.logger.Warn("Failed to persist refreshed tokens", "error", err)
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	c.logger.Debug("Access token refreshed", "shared", shared)
	return v.(string), nil
}

func (c *Client) clearSession() {
	if err := c.tokens.ClearSession(); err != nil {
		c.logger.Warn("Failed to clear session", "error", err)
	}
}

func (c *Client) newError(r *request, kind, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      r.op,
		Method:  r.method,
		Path:    r.path,
		Retried: r.attempt > 1,
		Err:     err,
	}
}

// statusError classifies a non-2xx response, keeping its status and body
func (c *Client) statusError(r *request, resp *response) *Error {
	kind := ErrFatal
	switch {
	case resp.status == http.StatusUnauthorized:
		kind = ErrAuth
	case resp.status >= 500:
		kind = ErrTransient
	}
	e := c.newError(r, kind, nil)
	e.Status = resp.status
	e.Body = string(resp.body)
	var env models.Envelope[json.RawMessage]
	if json.Unmarshal(resp.body, &env) == nil {
		e.Message = env.Message
	}
	return e
}

// decode unwraps an envelope, treating success=false as a bad response.
// Errors carry the HTTP status, not the envelope's statusCode.
func decode[T any](r *request, resp *response) (T, error) {
	var env models.Envelope[T]
	if err := json.Unmarshal(resp.body, &env); err != nil {
		var zero T
		return zero, &Error{Kind: ErrBadResponse, Op: r.op, Method: r.method, Path: r.path, Status: resp.status, Body: string(resp.body), Retried: r.attempt > 1, Err: err}
	}
	if !env.Success {
		var zero T
		return zero, &Error{Kind: ErrBadResponse, Op: r.op, Method: r.method, Path: r.path, Status: resp.status, Body: string(resp.body), Message: env.Message, Retried: r.attempt > 1}
	}
	return env.Data, nil
}

// call builds, sends and decodes a JSON request
func call[T any](ctx context.Context, c *Client, op, method, path string, payload any) (T, error) {
	var zero T
	r, err := c.newRequest(op, method, path, payload)
	if err != nil {
		return zero, err
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		return zero, err
	}
	return decode[T](r, resp)
}

type noTokens struct{}

func (noTokens) Tokens() (string, string)       { return "", "" }
func (noTokens) SetTokens(string, string) error { return nil }
func (noTokens) ClearSession() error            { return nil }
