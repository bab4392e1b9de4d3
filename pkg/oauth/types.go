package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"readinglist/pkg/logging"
)

const (
	// DefaultTokenURL is the token endpoint used when none is configured.
	DefaultTokenURL = "https://sts.choreo.dev/oauth2/token"

	// DefaultAPIKeyHeader is the service-identifying header sent alongside
	// the token request and bearer-mode API calls when an API key is set.
	DefaultAPIKeyHeader = "Choreo-API-Key"

	// ExpirySafetyFactor is the share of the declared token lifetime we trust.
	// The remaining 10% absorbs clock skew and request latency.
	ExpirySafetyFactor = 0.9
)

// Credentials is the static client identity used for machine-to-machine auth.
// It is built once from configuration and never mutated afterwards.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	TokenEndpoint  string

	// APIKey is optional. When set it is sent in APIKeyHeader.
	APIKey       string
	APIKeyHeader string
}

// Configured reports whether both halves of the client credential pair are present.
// This is the switch between bearer mode and cookie mode.
func (c Credentials) Configured() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != ""
}

// Validate rejects a half-configured credential pair.
func (c Credentials) Validate() error {
	if (c.ConsumerKey == "") != (c.ConsumerSecret == "") {
		field := "consumerSecret"
		if c.ConsumerKey == "" {
			field = "consumerKey"
		}
		return &ConfigurationError{Field: field, Err: ErrPartialCredentials}
	}
	return nil
}

// Endpoint returns the configured token endpoint or DefaultTokenURL.
func (c Credentials) Endpoint() string {
	if c.TokenEndpoint == "" {
		return DefaultTokenURL
	}
	return c.TokenEndpoint
}

// ApplyAPIKey sets the service-identifying header on h when an API key is configured.
func (c Credentials) ApplyAPIKey(h http.Header) {
	if c.APIKey == "" {
		return
	}
	name := c.APIKeyHeader
	if name == "" {
		name = DefaultAPIKeyHeader
	}
	h.Set(name, c.APIKey)
}

// basicAuth returns base64(consumerKey:consumerSecret).
// The pair is not URL-escaped first; token endpoints expect the raw values.
func (c Credentials) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.ConsumerKey + ":" + c.ConsumerSecret))
}

// String keeps secrets out of logs and %v output.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{consumerKey: %s, consumerSecret: %s, tokenEndpoint: %s, apiKey: %s}",
		logging.Mask(c.ConsumerKey), logging.Mask(c.ConsumerSecret), c.Endpoint(), logging.Mask(c.APIKey))
}

// CachedToken is an access token held by the CredentialStore.
// ExpiresAt is IssuedAt plus ExpirySafetyFactor of the declared lifetime.
type CachedToken struct {
	Value     RedactedToken
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the token may still be used at instant now.
func (t *CachedToken) ValidAt(now time.Time) bool {
	if t == nil || t.Value.IsEmpty() {
		return false
	}
	return now.Before(t.ExpiresAt)
}

// OAuth2 converts the token for use with golang.org/x/oauth2.
// The type is always Bearer, whatever the endpoint echoed back.
func (t *CachedToken) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: t.Value.Value(),
		TokenType:   "Bearer",
		Expiry:      t.ExpiresAt,
	}
}

// expiresAtFor computes the trusted expiry for a token issued at issuedAt
// with a declared lifetime of expiresIn seconds.
func expiresAtFor(issuedAt time.Time, expiresIn int64) time.Time {
	lifetime := time.Duration(float64(expiresIn) * ExpirySafetyFactor * float64(time.Second))
	return issuedAt.Add(lifetime)
}

// tokenResponse is the token endpoint's JSON body. Some providers send
// expires_in as a quoted number, which json.Number accepts.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// lifetime returns expires_in in whole seconds; absent means 0.
func (r tokenResponse) lifetime() (int64, error) {
	if r.ExpiresIn == "" {
		return 0, nil
	}
	if n, err := r.ExpiresIn.Int64(); err == nil {
		return n, nil
	}
	f, err := r.ExpiresIn.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid expires_in %q: %w", r.ExpiresIn, err)
	}
	return int64(f), nil
}
