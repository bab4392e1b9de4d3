package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when a bearer token is requested but no
	// client credentials are configured. It is terminal and never retried.
	ErrNotConfigured = errors.New("machine credentials not configured")

	// ErrPartialCredentials means only one of consumer key and secret is set.
	ErrPartialCredentials = errors.New("consumer key and consumer secret must be set together")

	// ErrIssuance matches every *IssuanceError via errors.Is.
	ErrIssuance = errors.New("token issuance failed")
)

// ConfigurationError reports machine credentials that cannot be used.
type ConfigurationError struct {
	// Field names the offending setting, if a single one is at fault.
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("oauth configuration error (%s): %v", e.Field, e.Err)
	}
	return fmt.Sprintf("oauth configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IssuanceError reports a failed client-credentials exchange.
// Nothing is cached when it is returned.
type IssuanceError struct {
	Endpoint string
	// StatusCode is zero for transport failures.
	StatusCode int
	Err        error
}

func (e *IssuanceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token issuance failed at %s (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("token issuance failed at %s: %v", e.Endpoint, e.Err)
}

func (e *IssuanceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrIssuance) match any IssuanceError.
func (e *IssuanceError) Is(target error) bool {
	return target == ErrIssuance
}
