package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"readinglist/internal/dispatch"
	"readinglist/internal/session"
	"readinglist/pkg/oauth"
)

func TestAuthRequiredError(t *testing.T) {
	t.Run("error message includes login page and guidance", func(t *testing.T) {
		err := &AuthRequiredError{LoginURL: "https://books.example.com/auth/login"}
		msg := err.Error()

		if !strings.Contains(msg, "https://books.example.com/auth/login") {
			t.Error("expected error message to contain login URL")
		}
		if !strings.Contains(msg, "readinglist auth login") {
			t.Error("expected error message to contain login command")
		}
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		wrappedErr := fmt.Errorf("wrapped: %w", &AuthRequiredError{})

		if !errors.Is(wrappedErr, &AuthRequiredError{}) {
			t.Error("expected errors.Is to find wrapped AuthRequiredError")
		}
		if errors.Is(errors.New("some error"), &AuthRequiredError{}) {
			t.Error("expected Is to return false for different type")
		}
	})
}

func TestAuthExpiredError(t *testing.T) {
	reason := dispatch.ErrSessionExpired
	err := &AuthExpiredError{LoginURL: "https://books.example.com/auth/login", Reason: reason}

	if !strings.Contains(err.Error(), "session has expired") {
		t.Error("expected error message to mention expiry")
	}
	if !errors.Is(err, dispatch.ErrSessionExpired) {
		t.Error("expected Unwrap to expose the dispatch error")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), &AuthExpiredError{}) {
		t.Error("expected errors.Is to find wrapped AuthExpiredError")
	}
}

func TestAuthFailedError(t *testing.T) {
	reason := errors.New("401 invalid_client")
	err := &AuthFailedError{Endpoint: "https://sts.example.com/oauth2/token", Reason: reason}
	msg := err.Error()

	if !strings.Contains(msg, "sts.example.com") || !strings.Contains(msg, "invalid_client") {
		t.Errorf("unexpected message: %s", msg)
	}
	if !strings.Contains(msg, "CONSUMERKEY") {
		t.Error("expected guidance naming the credential variables")
	}
	if err.Unwrap() != reason {
		t.Error("expected Unwrap to return reason")
	}
}

func TestTranslate(t *testing.T) {
	const (
		login = "https://books.example.com/auth/login"
		token = "https://sts.example.com/oauth2/token"
		api   = "https://books.example.com"
	)

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"not signed in", fmt.Errorf("list: %w", session.ErrNotAuthenticated), &AuthRequiredError{}},
		{"session expired", dispatch.ErrSessionExpired, &AuthExpiredError{}},
		{"bearer 401", &dispatch.StatusError{StatusCode: 401}, &AuthExpiredError{}},
		{"forbidden", &dispatch.StatusError{StatusCode: 403}, &AccessDeniedError{}},
		{"token issuance", &oauth.IssuanceError{Endpoint: token, StatusCode: 401}, &AuthFailedError{}},
		{"transport", &dispatch.TransportError{Method: "GET", Path: "/reading-list/books", Err: errors.New("dial tcp: connect: connection refused")}, &ConnectionError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.err, login, token, api)
			if !errors.Is(got, tt.target) {
				t.Errorf("Translate(%v) = %T, want %T", tt.err, got, tt.target)
			}
		})
	}

	t.Run("passes through unknown errors", func(t *testing.T) {
		plain := errors.New("boom")
		if Translate(plain, login, token, api) != plain {
			t.Error("expected unknown error to pass through")
		}
		if Translate(nil, login, token, api) != nil {
			t.Error("expected nil to stay nil")
		}
	})
}

func TestConnectionErrorType(t *testing.T) {
	tests := []struct {
		name     string
		errType  ConnectionErrorType
		expected string
	}{
		{"unknown type", ConnectionErrorUnknown, "Connection error"},
		{"TLS type", ConnectionErrorTLS, "TLS certificate error"},
		{"network type", ConnectionErrorNetwork, "Network error"},
		{"timeout type", ConnectionErrorTimeout, "Connection timeout"},
		{"DNS type", ConnectionErrorDNS, "DNS resolution error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.errType.String()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestConnectionError(t *testing.T) {
	t.Run("TLS error message includes certificate guidance", func(t *testing.T) {
		err := &ConnectionError{
			Endpoint: "https://books.example.com",
			Type:     ConnectionErrorTLS,
			Reason:   errors.New("x509: certificate is not valid for hostname"),
		}
		msg := err.Error()

		if !strings.Contains(msg, "TLS certificate verification failed") {
			t.Error("expected error message to mention TLS verification")
		}
		if !strings.Contains(msg, "books.example.com") {
			t.Error("expected error message to contain endpoint")
		}
		if !strings.Contains(msg, "Self-signed") {
			t.Error("expected error message to mention self-signed certificates")
		}
	})

	t.Run("Network error message includes connectivity guidance", func(t *testing.T) {
		err := &ConnectionError{
			Endpoint: "https://books.example.com",
			Type:     ConnectionErrorNetwork,
			Reason:   errors.New("connection refused"),
		}
		msg := err.Error()

		if !strings.Contains(msg, "Connection failed") {
			t.Error("expected error message to mention connection failed")
		}
		if !strings.Contains(msg, "books.example.com") {
			t.Error("expected error message to contain endpoint")
		}
		if !strings.Contains(msg, "Server is not running") {
			t.Error("expected error message to mention server not running")
		}
	})

	t.Run("Timeout error message includes timeout guidance", func(t *testing.T) {
		err := &ConnectionError{
			Endpoint: "https://books.example.com",
			Type:     ConnectionErrorTimeout,
			Reason:   errors.New("context deadline exceeded"),
		}
		msg := err.Error()

		if !strings.Contains(msg, "timed out") {
			t.Error("expected error message to mention timeout")
		}
		if !strings.Contains(msg, "books.example.com") {
			t.Error("expected error message to contain endpoint")
		}
	})

	t.Run("DNS error message includes resolution guidance", func(t *testing.T) {
		err := &ConnectionError{
			Endpoint: "https://books.example.com",
			Type:     ConnectionErrorDNS,
			Reason:   errors.New("no such host"),
		}
		msg := err.Error()

		if !strings.Contains(msg, "DNS resolution failed") {
			t.Error("expected error message to mention DNS resolution")
		}
		if !strings.Contains(msg, "books.example.com") {
			t.Error("expected error message to contain endpoint")
		}
	})

	t.Run("Unknown error message shows basic info", func(t *testing.T) {
		err := &ConnectionError{
			Endpoint: "https://books.example.com",
			Type:     ConnectionErrorUnknown,
			Reason:   errors.New("some unknown error"),
		}
		msg := err.Error()

		if !strings.Contains(msg, "Connection failed") {
			t.Error("expected error message to mention connection failed")
		}
		if !strings.Contains(msg, "some unknown error") {
			t.Error("expected error message to contain reason")
		}
	})

	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		reason := errors.New("connection refused")
		err := &ConnectionError{
			Endpoint: "https://example.com",
			Type:     ConnectionErrorNetwork,
			Reason:   reason,
		}

		unwrapped := err.Unwrap()
		if unwrapped != reason {
			t.Errorf("expected unwrapped error to be %v, got %v", reason, unwrapped)
		}
	})

	t.Run("Is returns true for same type", func(t *testing.T) {
		err1 := &ConnectionError{Endpoint: "https://example.com", Type: ConnectionErrorTLS}
		err2 := &ConnectionError{Endpoint: "https://other.com", Type: ConnectionErrorNetwork}

		if !err1.Is(err2) {
			t.Error("expected Is to return true for same type")
		}
	})

	t.Run("Is returns false for different type", func(t *testing.T) {
		err1 := &ConnectionError{Endpoint: "https://example.com", Type: ConnectionErrorTLS}
		err2 := errors.New("some error")

		if err1.Is(err2) {
			t.Error("expected Is to return false for different type")
		}
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		connErr := &ConnectionError{Endpoint: "https://example.com", Type: ConnectionErrorTLS}
		wrappedErr := fmt.Errorf("wrapped: %w", connErr)

		if !errors.Is(wrappedErr, &ConnectionError{}) {
			t.Error("expected errors.Is to find wrapped ConnectionError")
		}
	})
}

func TestClassifyConnectionError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		result := ClassifyConnectionError(nil, "https://example.com")
		if result != nil {
			t.Error("expected nil for nil error")
		}
	})

	t.Run("x509 certificate error is classified as TLS", func(t *testing.T) {
		// Simulate an x509 error message
		err := errors.New("Get https://example.com: x509: certificate is not valid for hostname")
		result := ClassifyConnectionError(err, "https://example.com")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorTLS {
			t.Errorf("expected TLS error type, got %v", result.Type)
		}
	})

	t.Run("x509 HostnameError is classified as TLS", func(t *testing.T) {
		// Create a real x509.HostnameError
		cert := &x509.Certificate{}
		hostErr := x509.HostnameError{Certificate: cert, Host: "example.com"}
		err := fmt.Errorf("connection failed: %w", &hostErr)
		result := ClassifyConnectionError(err, "https://example.com")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorTLS {
			t.Errorf("expected TLS error type, got %v", result.Type)
		}
	})

	t.Run("connection refused is classified as network", func(t *testing.T) {
		err := errors.New("dial tcp 127.0.0.1:443: connect: connection refused")
		result := ClassifyConnectionError(err, "https://localhost")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorNetwork {
			t.Errorf("expected Network error type, got %v", result.Type)
		}
	})

	t.Run("timeout error is classified as timeout", func(t *testing.T) {
		err := errors.New("context deadline exceeded")
		result := ClassifyConnectionError(err, "https://example.com")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorTimeout {
			t.Errorf("expected Timeout error type, got %v", result.Type)
		}
	})

	t.Run("DNS error is classified as DNS", func(t *testing.T) {
		dnsErr := &net.DNSError{
			Err:  "no such host",
			Name: "nonexistent.example.com",
		}
		err := fmt.Errorf("lookup failed: %w", dnsErr)
		result := ClassifyConnectionError(err, "https://nonexistent.example.com")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorDNS {
			t.Errorf("expected DNS error type, got %v", result.Type)
		}
	})

	t.Run("unknown error is classified as unknown", func(t *testing.T) {
		err := errors.New("some random error")
		result := ClassifyConnectionError(err, "https://example.com")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorUnknown {
			t.Errorf("expected Unknown error type, got %v", result.Type)
		}
	})

	t.Run("TLS handshake error is classified as TLS", func(t *testing.T) {
		err := errors.New("TLS handshake error: remote error: tls: bad certificate")
		result := ClassifyConnectionError(err, "https://example.com")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorTLS {
			t.Errorf("expected TLS error type, got %v", result.Type)
		}
	})

	t.Run("certificate signed by unknown authority is TLS", func(t *testing.T) {
		err := errors.New("x509: certificate signed by unknown authority")
		result := ClassifyConnectionError(err, "https://example.com")

		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if result.Type != ConnectionErrorTLS {
			t.Errorf("expected TLS error type, got %v", result.Type)
		}
	})
}

func TestIsTLSError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"x509 certificate invalid", errors.New("x509: certificate is invalid"), true},
		{"certificate signed by unknown authority", errors.New("certificate signed by unknown authority"), true},
		{"TLS handshake error", errors.New("TLS handshake failed"), true},
		{"certificate has expired", errors.New("certificate has expired"), true},
		{"connection refused", errors.New("connection refused"), false},
		{"timeout", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isTLSError(tt.err)
			if result != tt.expected {
				t.Errorf("isTLSError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}
