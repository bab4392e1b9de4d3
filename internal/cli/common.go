package cli

import (
	"fmt"
	"net/url"

	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}

// ManagedAuthError is the error reported by the managed sign-in flow
// through the code and message query parameters.
type ManagedAuthError struct {
	Code    string
	Message string
}

// ManagedAuthErrorFrom extracts the code and message parameters from u.
// It returns nil when u carries neither.
func ManagedAuthErrorFrom(u *url.URL) *ManagedAuthError {
	if u == nil {
		return nil
	}
	q := u.Query()
	code, message := q.Get("code"), q.Get("message")
	if code == "" && message == "" {
		return nil
	}
	return &ManagedAuthError{Code: code, Message: message}
}

// Error implements error.
func (e *ManagedAuthError) Error() string {
	return fmt.Sprintf("sign-in failed: %s: %s", e.Code, e.Message)
}

// FormatManagedAuthError renders e the way the sign-in page does.
func FormatManagedAuthError(e *ManagedAuthError) string {
	return fmt.Sprintf("%s\n  Error Code: %s\n  Error Message: %s",
		text.FgRed.Sprint("Something went wrong"), e.Code, e.Message)
}
