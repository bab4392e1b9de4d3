package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultHTTPTimeout is the default timeout for token endpoint requests.
const DefaultHTTPTimeout = 30 * time.Second

// TokenIssuer obtains bearer tokens with the client-credentials grant and
// caches them in a CredentialStore until ExpirySafetyFactor of their lifetime
// has passed.
type TokenIssuer struct {
	creds      Credentials
	store      *CredentialStore
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time

	// issuing deduplicates concurrent exchanges for the same credentials
	issuing singleflight.Group
}

// IssuerOption configures a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(httpClient *http.Client) IssuerOption {
	return func(i *TokenIssuer) {
		i.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) IssuerOption {
	return func(i *TokenIssuer) {
		i.logger = logger
	}
}

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

// WithCredentialStore shares an existing store instead of creating one.
func WithCredentialStore(store *CredentialStore) IssuerOption {
	return func(i *TokenIssuer) {
		i.store = store
	}
}

// WithTracer sets the tracer used for issuance spans.
func WithTracer(tracer trace.Tracer) IssuerOption {
	return func(i *TokenIssuer) {
		i.tracer = tracer
	}
}

// NewTokenIssuer creates an issuer for creds.
func NewTokenIssuer(creds Credentials, opts ...IssuerOption) *TokenIssuer {
	i := &TokenIssuer{
		creds: creds,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.store == nil {
		i.store = NewCredentialStore()
	}
	if i.httpClient == nil {
		i.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	if i.tracer == nil {
		i.tracer = otel.Tracer("readinglist/oauth")
	}
	if i.now == nil {
		i.now = time.Now
	}
	return i
}

// Credentials returns the static credentials the issuer was built with.
func (i *TokenIssuer) Credentials() Credentials {
	return i.creds
}

// Store returns the backing CredentialStore.
func (i *TokenIssuer) Store() *CredentialStore {
	return i.store
}

// GetValidToken returns the cached token while it is valid, otherwise performs
// a client-credentials exchange and caches the result.
//
// Without configured credentials it fails with a *ConfigurationError wrapping
// ErrNotConfigured and makes no network call. A failed exchange returns an
// *IssuanceError and leaves the cache untouched.
func (i *TokenIssuer) GetValidToken(ctx context.Context) (*CachedToken, error) {
	if tok, ok := i.store.Valid(i.now()); ok {
		return tok, nil
	}

	if !i.creds.Configured() {
		return nil, &ConfigurationError{Err: ErrNotConfigured}
	}

	result, err, shared := i.issuing.Do(i.creds.ConsumerKey, func() (interface{}, error) {
		// Another caller may have filled the cache while we waited.
		if tok, ok := i.store.Valid(i.now()); ok {
			return tok, nil
		}
		return i.issue(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		i.logger.Debug("Shared in-flight token issuance")
	}

	tok := *result.(*CachedToken)
	return &tok, nil
}

// Token implements oauth2.TokenSource.
func (i *TokenIssuer) Token() (*oauth2.Token, error) {
	tok, err := i.GetValidToken(context.Background())
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}

// Invalidate drops the cached token so the next call issues a new one.
func (i *TokenIssuer) Invalidate() {
	i.store.Clear()
}

func (i *TokenIssuer) issue(ctx context.Context) (tok *CachedToken, err error) {
	endpoint := i.creds.Endpoint()

	ctx, span := i.tracer.Start(ctx, "oauth.issue_token",
		trace.WithAttributes(attribute.String("oauth.token_endpoint", endpoint)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &IssuanceError{Endpoint: endpoint, Err: fmt.Errorf("failed to create token request: %w", err)}
	}

	req.Header.Set("Authorization", "Basic "+i.creds.basicAuth())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	i.creds.ApplyAPIKey(req.Header)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, &IssuanceError{Endpoint: endpoint, Err: fmt.Errorf("token request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &IssuanceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		i.logger.Debug("Token request failed",
			"status", resp.StatusCode,
			"body", string(body))
		return nil, &IssuanceError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("token endpoint returned %s", http.StatusText(resp.StatusCode)),
		}
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &IssuanceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if payload.AccessToken == "" {
		return nil, &IssuanceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.New("token response has no access_token")}
	}
	expiresIn, err := payload.lifetime()
	if err != nil {
		return nil, &IssuanceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	issuedAt := i.now()
	tok = &CachedToken{
		Value:     NewRedactedToken(payload.AccessToken),
		TokenType: payload.TokenType,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAtFor(issuedAt, expiresIn),
	}
	i.store.Put(tok)

	span.SetAttributes(attribute.Int64("oauth.expires_in", expiresIn))
	i.logger.Info("Access token obtained",
		"expires_at", tok.ExpiresAt.Format(time.RFC3339),
		"token", tok.Value)

	return tok, nil
}
