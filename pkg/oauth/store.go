package oauth

import (
	"sync"
	"time"
)

// CredentialStore holds the single cached bearer token and its expiry.
// It does no I/O. The token is replaced wholesale and never mutated in place.
type CredentialStore struct {
	mu    sync.RWMutex
	token *CachedToken
}

// NewCredentialStore returns an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Valid returns a copy of the cached token if it is still usable at now.
func (s *CredentialStore) Valid(now time.Time) (*CachedToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.token.ValidAt(now) {
		return nil, false
	}
	cp := *s.token
	return &cp, true
}

// Peek returns a copy of the cached token regardless of expiry, or nil.
func (s *CredentialStore) Peek() *CachedToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil
	}
	cp := *s.token
	return &cp
}

// Put replaces the cached token.
func (s *CredentialStore) Put(token *CachedToken) {
	if token == nil {
		return
	}
	cp := *token

	s.mu.Lock()
	s.token = &cp
	s.mu.Unlock()
}

// Clear drops the cached token.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}
