package dispatch

import (
	"bytes"
	"context"
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
)

const (
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 30 * time.Second

	DefaultRefreshPath = "/auth/refresh"
	DefaultLoginPath   = "/auth/login"
)

// IdentityClearer removes the persisted user identity after a 403.
type IdentityClearer interface {
	ClearIdentity(ctx context.Context) error
}

// Dispatcher sends API requests with the configured AuthStrategy and applies
// the failure policy.
//
// In cookie mode a 401 triggers one session refresh and one retry. If either
// is rejected with 401 the caller is redirected to login. A 403 clears the
// persisted identity and redirects to login unless the user is already on an
// auth page. In bearer mode every failure is returned as-is.
type Dispatcher struct {
	baseURL    *url.URL
	strategy   AuthStrategy
	httpClient *http.Client
	identity   IdentityClearer
	refreshURL *url.URL
	loginURL   *url.URL
	location   func() *url.URL
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets the HTTP client. In cookie mode its Jar supplies the session cookies.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = c
	}
}

// WithIdentityClearer sets what is cleared on a 403.
func WithIdentityClearer(c IdentityClearer) Option {
	return func(d *Dispatcher) {
		d.identity = c
	}
}

// WithRefreshURL overrides the session refresh endpoint.
func WithRefreshURL(u *url.URL) Option {
	return func(d *Dispatcher) {
		d.refreshURL = u
	}
}

// WithLoginURL overrides the login page redirected to on auth failure.
func WithLoginURL(u *url.URL) Option {
	return func(d *Dispatcher) {
		d.loginURL = u
	}
}

// WithLocation supplies the caller's current location, used to avoid
// redirecting away from an auth page.
func WithLocation(location func() *url.URL) Option {
	return func(d *Dispatcher) {
		d.location = location
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = tracer
	}
}

// New creates a dispatcher for the API at baseURL. Refresh and login
// endpoints default to the base URL's origin.
func New(baseURL *url.URL, strategy AuthStrategy, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		baseURL:  baseURL,
		strategy: strategy,
	}
	for _, opt := range opts {
		opt(d)
	}

	origin := &url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host, Path: "/"}
	if d.refreshURL == nil {
		d.refreshURL = origin.JoinPath(DefaultRefreshPath)
	}
	if d.loginURL == nil {
		d.loginURL = origin.JoinPath(DefaultLoginPath)
	}
	if d.httpClient == nil {
		d.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer("readinglist/dispatch")
	}
	return d
}

// Strategy returns the strategy chosen at construction.
func (d *Dispatcher) Strategy() AuthStrategy {
	return d.strategy
}

// LoginURL returns the login page URL.
func (d *Dispatcher) LoginURL() *url.URL {
	u := *d.loginURL
	return &u
}

// Dispatch sends req and applies the failure policy.
//
// On error the Outcome may still be non-nil, carrying the last response and
// a navigation intent the caller should apply.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (outcome *Outcome, err error) {
	ctx, span := d.tracer.Start(ctx, "dispatch.request", trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
		attribute.String("auth.mode", d.strategy.Mode()),
	))
	defer func() {
		if outcome != nil && outcome.Response != nil {
			span.SetAttributes(attribute.Int("http.status_code", outcome.Response.StatusCode))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	switch s := d.strategy.(type) {
	case Bearer:
		return d.dispatchBearer(ctx, req, s)
	case Cookie:
		return d.dispatchCookie(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported auth strategy %T", d.strategy)
	}
}

func (d *Dispatcher) dispatchBearer(ctx context.Context, req *Request, s Bearer) (*Outcome, error) {
	tok, err := s.Issuer.GetValidToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := d.send(ctx, req, func(h *http.Request) {
		tok.OAuth2().SetAuthHeader(h)
		s.Credentials.ApplyAPIKey(h.Header)
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Response: resp, Navigation: Continue()}
	if !resp.Success() {
		return outcome, newStatusError(req, resp)
	}
	return outcome, nil
}

func (d *Dispatcher) dispatchCookie(ctx context.Context, req *Request) (*Outcome, error) {
	resp, err := d.send(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		d.logger.Debug("Authentication expired, refreshing session", "path", req.Path)
		return d.refreshAndRetry(ctx, req, resp)
	case resp.StatusCode == http.StatusForbidden:
		return d.forbidden(ctx, req, resp)
	case !resp.Success():
		return &Outcome{Response: resp, Navigation: Continue()}, newStatusError(req, resp)
	}
	return &Outcome{Response: resp, Navigation: Continue()}, nil
}

func (d *Dispatcher) refreshAndRetry(ctx context.Context, req *Request, first *Response) (*Outcome, error) {
	refreshed, err := d.refresh(ctx)
	if err != nil {
		return &Outcome{Response: first, Navigation: Continue()}, err
	}

	refreshReq := &Request{Method: http.MethodPost, Path: d.refreshURL.Path}
	switch {
	case refreshed.StatusCode == http.StatusUnauthorized:
		d.logger.Debug("Session refresh rejected, redirecting to login")
		return &Outcome{Response: refreshed, Navigation: RedirectTo(d.loginURL)},
			sessionExpired(newStatusError(refreshReq, refreshed))
	case !refreshed.Success():
		d.logger.Warn("Session refresh failed", "status", refreshed.StatusCode)
		return &Outcome{Response: refreshed, Navigation: Continue()}, newStatusError(refreshReq, refreshed)
	}

	d.logger.Debug("Session refreshed, retrying request", "path", req.Path)
	resp, err := d.send(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		d.logger.Debug("Retry rejected, redirecting to login")
		return &Outcome{Response: resp, Navigation: RedirectTo(d.loginURL)},
			sessionExpired(newStatusError(req, resp))
	case resp.StatusCode == http.StatusForbidden:
		return d.forbidden(ctx, req, resp)
	case !resp.Success():
		return &Outcome{Response: resp, Navigation: Continue()}, newStatusError(req, resp)
	}
	return &Outcome{Response: resp, Navigation: Continue()}, nil
}

// forbidden clears the identity and decides whether to leave the current page.
// The 403 is always returned to the caller.
func (d *Dispatcher) forbidden(ctx context.Context, req *Request, resp *Response) (*Outcome, error) {
	if d.identity != nil {
		if err := d.identity.ClearIdentity(ctx); err != nil {
			d.logger.Warn("Failed to clear identity after 403", "error", err.Error())
		}
	}

	nav := Continue()
	if !d.onAuthPage() {
		d.logger.Debug("Access denied, redirecting to login", "path", req.Path)
		nav = RedirectTo(d.loginURL)
	}
	return &Outcome{Response: resp, Navigation: nav}, newStatusError(req, resp)
}

func (d *Dispatcher) onAuthPage() bool {
	if d.location == nil {
		return false
	}
	loc := d.location()
	if loc == nil {
		return false
	}
	return strings.Contains(loc.Path, "/auth/") || strings.Contains(loc.RawQuery, "code=")
}

func (d *Dispatcher) refresh(ctx context.Context) (*Response, error) {
	ctx, span := d.tracer.Start(ctx, "dispatch.refresh")
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.refreshURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}

	resp, err := d.do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Method: http.MethodPost, Path: d.refreshURL.Path, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

// send performs one exchange. authorize, when set, adds credentials.
func (d *Dispatcher) send(ctx context.Context, req *Request, authorize func(*http.Request)) (*Response, error) {
	target := d.resolve(req)

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if authorize != nil {
		authorize(httpReq)
	}
	for name, values := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}

	resp, err := d.do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	d.logger.Debug("API response", "method", req.Method, "path", req.Path, "status", resp.StatusCode)
	return resp, nil
}

func (d *Dispatcher) do(httpReq *http.Request) (*Response, error) {
	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (d *Dispatcher) resolve(req *Request) *url.URL {
	u := *d.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + req.Path
	u.RawPath = ""
	u.RawQuery = req.Query.Encode()
	return &u
}
