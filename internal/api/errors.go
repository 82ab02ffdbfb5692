package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrTimeout is returned when a request exceeds its client-side deadline
	ErrTimeout = errors.New("request timed out")

	// ErrInvalidRating is returned before submitting a rating outside 0..4
	ErrInvalidRating = errors.New("invalid rating value")
)

// Error is a non-2xx response from the backend
type Error struct {
	StatusCode int
	Message    string
	Code       string
	Method     string
	Path       string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s (%s)", e.Method, e.Path, e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// errorBody covers the error shapes the backend and the dev server emit
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Code    string `json:"code"`
}

func newError(req *http.Request, status int, body []byte) *Error {
	apiErr := &Error{
		StatusCode: status,
		Method:     req.Method,
		Path:       req.URL.Path,
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Code = parsed.Code
		for _, msg := range []string{parsed.Message, parsed.Detail, parsed.Title, parsed.Error} {
			if msg != "" {
				apiErr.Message = msg
				break
			}
		}
		if parsed.Code == "" && parsed.Message != "" && parsed.Error != "" {
			apiErr.Code = parsed.Error
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		apiErr.Message = text
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func statusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports a 401 that survived session recovery
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports a role mismatch; callers suppress the feature
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsNotFound reports a missing resource; callers render an empty state
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsTimeout reports a client-side or network timeout
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransient reports errors worth retrying by user action: timeouts,
// network failures, throttling and server errors
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if IsTimeout(err) {
		return true
	}
	status := statusOf(err)
	if status == 0 {
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
