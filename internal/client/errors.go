// ABOUTME: Error taxonomy for API calls: auth, transient, fatal, bad response, canceled
// ABOUTME: Rich Error carries status and body so callers can branch with errors.Is and errors.As

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth marks a 401 that could not be recovered by a token refresh
	ErrAuth = errors.New("api: unauthorized")
	// ErrTransient marks a 5xx, timeout or missing response
	ErrTransient = errors.New("api: transient failure")
	// ErrFatal marks a failure that will not be retried. Every failure after a retry matches it.
	ErrFatal = errors.New("api: request failed")
	// ErrBadResponse marks an undecodable body or an envelope with success=false
	ErrBadResponse = errors.New("api: invalid response")
	// ErrCanceled marks a request abandoned because the caller's context ended
	ErrCanceled = errors.New("api: request canceled")
)

// Error describes one failed logical request
type Error struct {
	Kind    error
	Op      string
	Method  string
	Path    string
	Status  int
	Body    string
	Message string
	Retried bool
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the kind, ErrFatal once retried, and the nested cause
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Retried && e.Kind != ErrFatal {
		errs = append(errs, ErrFatal)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsAuth reports whether err is an unrecovered 401
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsTransient reports whether err stems from a 5xx, timeout or missing response
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server message carried by err, falling back to err.Error()
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
