package boards

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a work item or sprint does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the backend rejects the token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited matches every *RateLimitError.
	ErrRateLimited = errors.New("rate limited")
	// ErrNetwork matches every *NetworkError.
	ErrNetwork = errors.New("network error")
)

// maxRetryAfter caps how long a single Retry-After hint is honoured.
const maxRetryAfter = time.Minute

// RateLimitError is returned when the backend throttles a request and the
// retry budget is spent.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// NetworkError wraps a transport failure (DNS, connection reset, timeout).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error        { return e.Err }
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("boards API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("boards API error (status %d): %s", e.StatusCode, e.Message)
}

// IsFatal reports whether err should end the session rather than be shown
// as a transient problem.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsTransient reports whether retrying later may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrRateLimited)
}

// parseRetryAfter reads a Retry-After header given as seconds or an HTTP date.
// Returns fallback when absent or unparsable.
func parseRetryAfter(h http.Header, now time.Time, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return fallback
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = t.Sub(now)
	} else {
		return fallback
	}
	if d < 0 {
		d = 0
	}
	return min(d, maxRetryAfter)
}
