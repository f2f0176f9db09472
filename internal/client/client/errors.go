package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrRequestFailed = errors.New("request failed")
)

// HTTPError is a failed API call. StatusCode is 0 for network failures.
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Recoverable reports whether the same request may succeed later:
// network failures, 408, 429 and 5xx.
func (e *HTTPError) Recoverable() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// Rejected reports whether the server refused the request itself (4xx other
// than 408 and 429).
func (e *HTTPError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && !e.Recoverable()
}

func newStatusError(op string, status int, body []byte) *HTTPError {
	var sentinel error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		sentinel = ErrUnavailable
	default:
		sentinel = ErrRequestFailed
	}
	return &HTTPError{Op: op, StatusCode: status, Message: errorMessage(body), Err: sentinel}
}

func newNetworkError(op string, cause error) *HTTPError {
	return &HTTPError{Op: op, Err: fmt.Errorf("%w: %w", ErrUnavailable, cause)}
}

// errorMessage extracts {"error": "..."} from a response body, falling back
// to the trimmed body.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
