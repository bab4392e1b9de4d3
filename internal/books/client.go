package books

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"readinglist/internal/dispatch"
)

const booksPath = "/reading-list/books"

// Dispatcher sends API requests. *dispatch.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *dispatch.Request) (*dispatch.Outcome, error)
}

// AuthGate refuses calls until the user may reach the API.
// *session.Manager implements it.
type AuthGate interface {
	RequireAuthenticated() error
}

// Client is the typed reading-list API client.
type Client struct {
	dispatcher Dispatcher
	auth       AuthGate
	navigator  dispatch.Navigator
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithNavigator applies redirects returned by the dispatcher.
func WithNavigator(n dispatch.Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client. auth may be nil to skip the gate.
func NewClient(d Dispatcher, auth AuthGate, opts ...ClientOption) *Client {
	c := &Client{dispatcher: d, auth: auth}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// List returns every complete book record.
func (c *Client) List(ctx context.Context) ([]Book, error) {
	resp, err := c.call(ctx, http.MethodGet, booksPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(resp.Body)
}

// Get returns one book.
func (c *Client) Get(ctx context.Context, id string) (*Book, error) {
	resp, err := c.call(ctx, http.MethodGet, bookPath(id), nil)
	if err != nil {
		return nil, err
	}
	var b Book
	if err := resp.DecodeJSON(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Add creates a book and returns it with its server-assigned UUID.
func (c *Client) Add(ctx context.Context, nb NewBook) (*Book, error) {
	resp, err := c.call(ctx, http.MethodPost, booksPath, nb)
	if err != nil {
		return nil, err
	}
	var b Book
	if err := resp.DecodeJSON(&b); err != nil {
		return nil, err
	}
	if b.Status == "" {
		b.Status = nb.Status
	}
	return &b, nil
}

// UpdateStatus changes a book's status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status Status) (*Book, error) {
	resp, err := c.call(ctx, http.MethodPut, bookPath(id), map[string]Status{"status": status})
	if err != nil {
		return nil, err
	}
	var b Book
	if err := resp.DecodeJSON(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a book.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, bookPath(id), nil)
	return err
}

func (c *Client) call(ctx context.Context, method, path string, body any) (*dispatch.Response, error) {
	if c.auth != nil {
		if err := c.auth.RequireAuthenticated(); err != nil {
			return nil, err
		}
	}

	req, err := dispatch.NewJSONRequest(method, path, body)
	if err != nil {
		return nil, err
	}

	outcome, err := c.dispatcher.Dispatch(ctx, req)
	if outcome != nil {
		if navErr := dispatch.Apply(ctx, outcome.Navigation, c.navigator); navErr != nil {
			c.logger.Warn("Failed to navigate", "target", outcome.Navigation.String(), "error", navErr.Error())
		}
	}
	if err != nil {
		return nil, err
	}
	return outcome.Response, nil
}

func bookPath(id string) string {
	return booksPath + "/" + url.PathEscape(id)
}

// decodeList accepts the list as an array of books, a map of UUID to book,
// or a map of status to an array of books. Incomplete records are dropped.
func decodeList(body []byte) ([]Book, error) {
	var asArray []Book
	if err := json.Unmarshal(body, &asArray); err == nil {
		return completeOnly(asArray), nil
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(body, &asMap); err != nil {
		return nil, fmt.Errorf("failed to decode book list: %w", err)
	}

	var out []Book
	for key, raw := range asMap {
		var b Book
		if err := json.Unmarshal(raw, &b); err == nil {
			if b.UUID == "" {
				b.UUID = key
			}
			out = append(out, b)
			continue
		}

		var group []Book
		if err := json.Unmarshal(raw, &group); err != nil {
			continue
		}
		for _, gb := range group {
			if gb.Status == "" {
				gb.Status = Status(key)
			}
			out = append(out, gb)
		}
	}
	return completeOnly(out), nil
}

func completeOnly(list []Book) []Book {
	out := make([]Book, 0, len(list))
	for _, b := range list {
		if b.complete() {
			out = append(out, b)
		}
	}
	return out
}
