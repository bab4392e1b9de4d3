package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	pkgstrings "readinglist/pkg/strings"
)

var (
	// ErrAuthenticationExpired matches a 401 StatusError.
	ErrAuthenticationExpired = errors.New("authentication expired")

	// ErrAuthorizationDenied matches a 403 StatusError.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrSessionExpired is returned when a refresh could not recover a 401.
	ErrSessionExpired = errors.New("session expired")
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the server's "error" field, or the trimmed body.
	Message string
}

func newStatusError(req *Request, resp *Response) *StatusError {
	return &StatusError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Body),
	}
}

func (e *StatusError) Error() string {
	status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, status, e.Message)
}

// Is maps 401 and 403 onto their sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuthenticationExpired:
		return e.StatusCode == http.StatusUnauthorized
	case ErrAuthorizationDenied:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func sessionExpired(cause *StatusError) error {
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// maxErrorMessageLen caps a non-JSON error body quoted in a StatusError.
const maxErrorMessageLen = 200

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return pkgstrings.TruncateCell(string(body), maxErrorMessageLen)
}
