package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request is an API call relative to the service base URL.
// Body is kept as bytes so a retry resends it unchanged.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// NewJSONRequest builds a request whose body is v encoded as JSON.
// A nil v produces a request without a body.
func NewJSONRequest(method, path string, v any) (*Request, error) {
	req := &Request{Method: method, Path: path, Header: http.Header{}}
	if v == nil {
		return req, nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	req.Body = body
	return req, nil
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Outcome is the result of a dispatch: the final response, if any, and what
// the caller should do next.
type Outcome struct {
	Response   *Response
	Navigation Navigation
}
