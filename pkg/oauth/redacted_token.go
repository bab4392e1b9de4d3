package oauth

import "log/slog"

// RedactedToken wraps an access token so it never reaches logs or output by accident.
//
//	token := oauth.NewRedactedToken("eyJhbGciOi...")
//	fmt.Println(token)     // [REDACTED]
//	header := token.Value() // raw value, for the Authorization header only
type RedactedToken struct {
	value string
}

// NewRedactedToken wraps value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the raw token. Never log the result.
func (t RedactedToken) Value() string {
	return t.value
}

func (t RedactedToken) String() string {
	return "[REDACTED]"
}

func (t RedactedToken) GoString() string {
	return "oauth.RedactedToken{[REDACTED]}"
}

// IsEmpty reports whether no token is held.
func (t RedactedToken) IsEmpty() bool {
	return t.value == ""
}

// LogValue keeps slog attribute output redacted as well.
func (t RedactedToken) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}

func (t RedactedToken) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
