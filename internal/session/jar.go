package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	cookieFileName = "cookies.json"

	// ArtifactCookie carries the one-time login artifact set by the gateway.
	ArtifactCookie = "userinfo"

	// SessionHintCookie is passed back to the gateway on logout.
	SessionHintCookie = "session_hint"
)

// CookieSource exposes the ambient cookies held for the API origin.
type CookieSource interface {
	Cookie(name string) (string, bool)
	ClearCookie(name string) error
}

// Jar is an http.CookieJar for the API origin that survives between CLI runs.
// Cookies set by the server, or imported by `auth login`, are mirrored into
// cookies.json in the state directory with 0600 permissions.
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	origin  *url.URL
	path    string
	entries map[string]*persistedCookie
	now     func() time.Time
}

type persistedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

func (c *persistedCookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
}

// NewJar loads the persisted cookies for origin from dir.
// An empty dir keeps cookies in memory only.
func NewJar(origin *url.URL, dir string) (*Jar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	j := &Jar{
		inner:   inner,
		origin:  &url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: "/"},
		entries: make(map[string]*persistedCookie),
		now:     time.Now,
	}
	if dir == "" {
		return j, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	j.path = filepath.Join(dir, cookieFileName)

	data, err := os.ReadFile(j.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return j, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var stored []*persistedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		slog.Warn("Ignoring corrupt cookie file", "path", j.path, "error", err.Error())
		return j, nil
	}

	restored := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if !c.Expires.IsZero() && !c.Expires.After(j.now()) {
			continue
		}
		j.entries[c.Name] = c
		restored = append(restored, c.httpCookie())
	}
	j.inner.SetCookies(j.origin, restored)

	return j, nil
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// SetCookies implements http.CookieJar. Cookies for the API origin are persisted.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	if u.Host != j.origin.Host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.record(cookies)
	if err := j.save(); err != nil {
		slog.Warn("Failed to persist cookies", "error", err.Error())
	}
}

// Import adds cookies copied from a browser session to the jar.
func (j *Jar) Import(cookies []*http.Cookie) error {
	for _, c := range cookies {
		if c.Path == "" {
			c.Path = "/"
		}
	}
	j.inner.SetCookies(j.origin, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.record(cookies)
	return j.save()
}

// Cookie returns the value of the named cookie for the API origin.
func (j *Jar) Cookie(name string) (string, bool) {
	for _, c := range j.inner.Cookies(j.origin) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// ClearCookie expires the named cookie locally and on disk.
func (j *Jar) ClearCookie(name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	path := "/"
	if c, ok := j.entries[name]; ok && c.Path != "" {
		path = c.Path
	}
	j.inner.SetCookies(j.origin, []*http.Cookie{{Name: name, Path: path, MaxAge: -1}})
	delete(j.entries, name)
	return j.save()
}

// Clear drops every cookie held for the API origin.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	expired := make([]*http.Cookie, 0, len(j.entries))
	for name, c := range j.entries {
		expired = append(expired, &http.Cookie{Name: name, Path: c.Path, MaxAge: -1})
	}
	j.inner.SetCookies(j.origin, expired)
	j.entries = make(map[string]*persistedCookie)
	return j.save()
}

// record mirrors cookie updates into entries. Callers hold j.mu.
func (j *Jar) record(cookies []*http.Cookie) {
	now := j.now()
	for _, c := range cookies {
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
			delete(j.entries, c.Name)
			continue
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		j.entries[c.Name] = &persistedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Expires:  expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
	}
}

// save writes entries to disk. Callers hold j.mu.
func (j *Jar) save() error {
	if j.path == "" {
		return nil
	}

	list := make([]*persistedCookie, 0, len(j.entries))
	for _, c := range j.entries {
		list = append(list, c)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	if err := writeFileAtomic(j.path, data); err != nil {
		return fmt.Errorf("failed to persist cookies: %w", err)
	}
	return nil
}
