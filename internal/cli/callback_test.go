package cli

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startCallbackServer(t *testing.T) (*CallbackServer, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := NewCallbackServer("")
	callbackURL, err := s.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	assert.True(t, strings.HasSuffix(callbackURL, "/callback"))
	return s, callbackURL
}

func waitResult(t *testing.T, s *CallbackServer) *CallbackResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := s.WaitForCallback(ctx)
	require.NoError(t, err)
	return result
}

func TestCallbackServer_Artifact(t *testing.T) {
	s, callbackURL := startCallbackServer(t)

	resp, err := http.Get(callbackURL + "?userinfo=" + url.QueryEscape("eyJlbWFpbCI6ImFAYi5jIn0="))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Contains(t, string(body), "You are signed in")

	result := waitResult(t, s)
	assert.Equal(t, "eyJlbWFpbCI6ImFAYi5jIn0=", result.Artifact)
	assert.Nil(t, result.Err)
}

func TestCallbackServer_Error(t *testing.T) {
	s, callbackURL := startCallbackServer(t)

	resp, err := http.Get(callbackURL + "?code=invalid_request&message=" + url.QueryEscape("<b>bad</b>"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Something went wrong")
	assert.Contains(t, string(body), "invalid_request")
	assert.NotContains(t, string(body), "<b>bad</b>")

	result := waitResult(t, s)
	require.NotNil(t, result.Err)
	assert.Equal(t, "<b>bad</b>", result.Err.Message)
	assert.Empty(t, result.Artifact)
}

func TestCallbackServer_MissingArtifact(t *testing.T) {
	s, callbackURL := startCallbackServer(t)

	resp, err := http.Get(callbackURL)
	require.NoError(t, err)
	resp.Body.Close()

	result := waitResult(t, s)
	require.NotNil(t, result.Err)
	assert.Equal(t, "missing_userinfo", result.Err.Code)
}

func TestCallbackServer_HandledOnce(t *testing.T) {
	s, callbackURL := startCallbackServer(t)

	resp, err := http.Get(callbackURL + "?userinfo=first")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(callbackURL + "?userinfo=second")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, "first", waitResult(t, s).Artifact)
}

func TestCallbackServer_ContextCancelled(t *testing.T) {
	s := NewCallbackServer("")
	_, err := s.Start(context.Background())
	require.NoError(t, err)
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.WaitForCallback(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
