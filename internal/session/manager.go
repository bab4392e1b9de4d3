package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
)

var (
	// ErrNotResolved means the AuthState was read before Resolve ran.
	ErrNotResolved = errors.New("authentication state not resolved")

	// ErrNotAuthenticated means no identity source was found.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Manager owns the process-wide AuthState. It resolves it once and is the
// only writer afterwards.
type Manager struct {
	resolver  *Resolver
	store     Store
	cookies   CookieSource
	logoutURL *url.URL
	logger    *slog.Logger

	once  sync.Once
	mu    sync.RWMutex
	state AuthState
}

// NewManager creates a manager. logoutURL is the gateway logout endpoint.
func NewManager(resolver *Resolver, store Store, cookies CookieSource, logoutURL *url.URL, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		resolver:  resolver,
		store:     store,
		cookies:   cookies,
		logoutURL: logoutURL,
		logger:    logger,
	}
}

// Resolve runs the resolver on first call and returns the state.
func (m *Manager) Resolve(ctx context.Context) AuthState {
	m.once.Do(func() {
		state := m.resolver.Resolve(ctx)
		m.mu.Lock()
		m.state = state
		m.mu.Unlock()
	})
	return m.State()
}

// State returns a copy of the current state.
func (m *Manager) State() AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// RequireAuthenticated fails unless the state is resolved and authenticated.
func (m *Manager) RequireAuthenticated() error {
	state := m.State()
	if !state.Resolved {
		return ErrNotResolved
	}
	if !state.Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// ClearIdentity removes the persisted identity. The in-process state drops
// its identity and stays authenticated only on machine credentials.
func (m *Manager) ClearIdentity(ctx context.Context) error {
	if err := m.store.Delete(UserInfoKey); err != nil {
		return fmt.Errorf("failed to clear session identity: %w", err)
	}

	m.mu.Lock()
	if m.state.Identity != nil {
		m.state.Identity = nil
		m.state.Authenticated = m.resolver != nil && m.resolver.machineCreds
	}
	m.mu.Unlock()

	m.logger.Info("Cleared session identity")
	return nil
}

// Logout clears the session and returns the gateway logout URL to navigate to.
// The session_hint cookie, when present, is forwarded to the gateway.
func (m *Manager) Logout(ctx context.Context) (*url.URL, error) {
	if err := m.store.Delete(UserInfoKey); err != nil {
		return nil, fmt.Errorf("failed to clear session identity: %w", err)
	}

	m.mu.Lock()
	m.state = AuthState{Resolved: true}
	m.mu.Unlock()

	target := *m.logoutURL
	if m.cookies != nil {
		if hint, ok := m.cookies.Cookie(SessionHintCookie); ok {
			q := target.Query()
			q.Set("session_hint", hint)
			target.RawQuery = q.Encode()
		}
	}

	m.logger.Info("Logged out", "redirect", target.Path)
	return &target, nil
}
