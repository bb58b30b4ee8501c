package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/hhblog/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrTimeout      = errors.New("request timeout")
	ErrUnauthorized = common.ErrorUnauthorized
	ErrForbidden    = common.ErrorForbidden
	ErrNotFound     = common.ErrorNotFound
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx response. Message is the server's own "error" or
// "message" field when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, http.StatusText(e.Status))
}

// Unwrap lets callers match the status class with errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 500:
		return ErrServer
	default:
		return nil
	}
}

// StatusOf returns the HTTP status carried by err, or 0 for transport and
// local errors.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server-provided message of err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports a 401. A 403 means the credential is valid but
// lacks the role, and does not match.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
