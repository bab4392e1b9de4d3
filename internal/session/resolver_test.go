package session

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks Store

import (
	"context"
	"encoding/base64"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"readinglist/internal/session/mocks"
)

// fakeCookies is an in-memory CookieSource.
type fakeCookies struct {
	values  map[string]string
	cleared []string
}

func newFakeCookies(kv ...string) *fakeCookies {
	c := &fakeCookies{values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		c.values[kv[i]] = kv[i+1]
	}
	return c
}

func (c *fakeCookies) Cookie(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

func (c *fakeCookies) ClearCookie(name string) error {
	delete(c.values, name)
	c.cleared = append(c.cleared, name)
	return nil
}

func encode(t *testing.T, id Identity) string {
	t.Helper()
	raw, err := EncodeIdentity(id)
	require.NoError(t, err)
	return raw
}

func TestResolver_ArtifactThenPersistedSession(t *testing.T) {
	alice := Identity{Subject: "u-1", Email: "alice@example.com", Organization: "acme"}
	cookies := newFakeCookies(ArtifactCookie, encode(t, alice))
	store := NewMemoryStore()
	r := NewResolver(cookies, store, false, nil)

	first := r.Resolve(context.Background())
	require.True(t, first.Resolved)
	require.True(t, first.Authenticated)
	require.NotNil(t, first.Identity)
	assert.Equal(t, alice, *first.Identity)

	_, stillThere := cookies.Cookie(ArtifactCookie)
	assert.False(t, stillThere, "artifact must be consumed")
	persisted, ok := store.Get(UserInfoKey)
	require.True(t, ok)
	assert.Equal(t, encode(t, alice), persisted)

	// A reload sees only the persisted session.
	second := r.Resolve(context.Background())
	assert.True(t, second.Authenticated)
	assert.Equal(t, first.Identity, second.Identity)
}

func TestResolver_PersistedSession(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(UserInfoKey, encode(t, Identity{Subject: "u-2"})))

	state := NewResolver(newFakeCookies(), store, false, nil).Resolve(context.Background())

	assert.True(t, state.Authenticated)
	assert.Equal(t, "u-2", state.Identity.Subject)
	assert.Equal(t, "session", state.Source())
}

func TestResolver_MachineCredentialsAreTrusted(t *testing.T) {
	state := NewResolver(nil, NewMemoryStore(), true, nil).Resolve(context.Background())

	assert.True(t, state.Resolved)
	assert.True(t, state.Authenticated)
	assert.Nil(t, state.Identity)
	assert.Equal(t, "machine credentials", state.Source())
}

func TestResolver_Unauthenticated(t *testing.T) {
	state := NewResolver(newFakeCookies(), NewMemoryStore(), false, nil).Resolve(context.Background())

	assert.True(t, state.Resolved)
	assert.False(t, state.Authenticated)
	assert.Equal(t, "none", state.Source())
}

func TestResolver_MalformedArtifactIsDroppedNotPersisted(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	store.EXPECT().Get(UserInfoKey).Return("", false)
	store.EXPECT().Set(gomock.Any(), gomock.Any()).Times(0)

	cookies := newFakeCookies(ArtifactCookie, "%%%not-base64%%%")
	state := NewResolver(cookies, store, false, nil).Resolve(context.Background())

	assert.False(t, state.Authenticated)
	assert.Equal(t, []string{ArtifactCookie}, cookies.cleared)
}

func TestResolver_MalformedPersistedSessionFallsThrough(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(UserInfoKey, base64.StdEncoding.EncodeToString([]byte("not json"))))

	state := NewResolver(nil, store, true, nil).Resolve(context.Background())

	assert.True(t, state.Authenticated)
	assert.Nil(t, state.Identity)
}

func TestResolver_PersistFailureStillAuthenticates(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Set(UserInfoKey, gomock.Any()).Return(errors.New("disk full"))

	cookies := newFakeCookies(ArtifactCookie, encode(t, Identity{Email: "bob@example.com"}))
	state := NewResolver(cookies, store, false, nil).Resolve(context.Background())

	assert.True(t, state.Authenticated)
	assert.Equal(t, "bob@example.com", state.Identity.DisplayName())
}

func TestDecodeIdentity(t *testing.T) {
	payload := []byte(`{"sub":"u-3","email":"c@example.com","org_name":"org"}`)

	for name, raw := range map[string]string{
		"std":     base64.StdEncoding.EncodeToString(payload),
		"url":     base64.URLEncoding.EncodeToString(payload),
		"raw std": base64.RawStdEncoding.EncodeToString(payload),
		"raw url": base64.RawURLEncoding.EncodeToString(payload),
	} {
		t.Run(name, func(t *testing.T) {
			id, err := DecodeIdentity(raw)
			require.NoError(t, err)
			assert.Equal(t, "u-3", id.Subject)
			assert.Equal(t, "org", id.Organization)
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		for _, raw := range []string{"", "!!!", base64.StdEncoding.EncodeToString([]byte("null"))} {
			_, err := DecodeIdentity(raw)
			assert.ErrorIs(t, err, ErrMalformedIdentity, raw)
		}
	})
}

func TestManager(t *testing.T) {
	logoutURL, _ := url.Parse("https://app.example.com/auth/logout")

	t.Run("state is unresolved before Resolve", func(t *testing.T) {
		m := NewManager(NewResolver(nil, NewMemoryStore(), false, nil), NewMemoryStore(), nil, logoutURL, nil)
		assert.ErrorIs(t, m.RequireAuthenticated(), ErrNotResolved)
	})

	t.Run("resolves once", func(t *testing.T) {
		store := NewMemoryStore()
		cookies := newFakeCookies(ArtifactCookie, encode(t, Identity{Subject: "u-4"}))
		m := NewManager(NewResolver(cookies, store, false, nil), store, cookies, logoutURL, nil)

		first := m.Resolve(context.Background())
		require.NoError(t, store.Delete(UserInfoKey))
		second := m.Resolve(context.Background())

		assert.Equal(t, first, second)
		assert.NoError(t, m.RequireAuthenticated())
	})

	t.Run("state copies are independent", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(UserInfoKey, encode(t, Identity{Subject: "u-5"})))
		m := NewManager(NewResolver(nil, store, false, nil), store, nil, logoutURL, nil)
		m.Resolve(context.Background())

		s := m.State()
		s.Identity.Subject = "mutated"
		assert.Equal(t, "u-5", m.State().Identity.Subject)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		m := NewManager(NewResolver(nil, NewMemoryStore(), false, nil), NewMemoryStore(), nil, logoutURL, nil)
		m.Resolve(context.Background())
		assert.ErrorIs(t, m.RequireAuthenticated(), ErrNotAuthenticated)
	})

	t.Run("clear identity keeps machine trust", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(UserInfoKey, encode(t, Identity{Subject: "u-6"})))
		m := NewManager(NewResolver(nil, store, true, nil), store, nil, logoutURL, nil)
		m.Resolve(context.Background())

		require.NoError(t, m.ClearIdentity(context.Background()))

		state := m.State()
		assert.True(t, state.Authenticated)
		assert.Nil(t, state.Identity)
		_, ok := store.Get(UserInfoKey)
		assert.False(t, ok)
	})

	t.Run("logout forwards session hint", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(UserInfoKey, encode(t, Identity{Subject: "u-7"})))
		cookies := newFakeCookies(SessionHintCookie, "hint-123")
		m := NewManager(NewResolver(cookies, store, false, nil), store, cookies, logoutURL, nil)
		m.Resolve(context.Background())

		target, err := m.Logout(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "https://app.example.com/auth/logout?session_hint=hint-123", target.String())
		assert.False(t, m.State().Authenticated)
		_, ok := store.Get(UserInfoKey)
		assert.False(t, ok)
	})

	t.Run("logout without hint", func(t *testing.T) {
		m := NewManager(NewResolver(nil, NewMemoryStore(), false, nil), NewMemoryStore(), newFakeCookies(), logoutURL, nil)
		target, err := m.Logout(context.Background())
		require.NoError(t, err)
		assert.Empty(t, target.RawQuery)
	})
}
