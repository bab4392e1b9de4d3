package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"readinglist/internal/bookservice"
	"readinglist/internal/cli"
)

// syncBuffer is a bytes.Buffer safe for a command writing while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// resetFlags restores every flag to its default between executions of the
// shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Value.Type() != "stringArray" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
	loginCookies = nil
}

type testEnv struct {
	t         *testing.T
	configDir string
	api       *fakeAPI
}

// newTestEnv isolates configuration and points the CLI at a fake gateway.
func newTestEnv(t *testing.T, machineCreds bool) *testEnv {
	t.Helper()

	api := newFakeAPI(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SERVICEURL", api.server.URL)
	t.Setenv("TOKENURL", api.server.URL+"/oauth2/token")
	t.Setenv("CHOREOAPIKEY", "")
	if machineCreds {
		t.Setenv("CONSUMERKEY", "client-id")
		t.Setenv("CONSUMERSECRET", "client-secret")
	} else {
		t.Setenv("CONSUMERKEY", "")
		t.Setenv("CONSUMERSECRET", "")
	}

	opened := &[]string{}
	orig := cli.OpenBrowser
	cli.OpenBrowser = func(u string) error {
		*opened = append(*opened, u)
		return nil
	}
	t.Cleanup(func() { cli.OpenBrowser = orig })

	return &testEnv{t: t, configDir: t.TempDir(), api: api}
}

// run executes the root command with args and returns stdout and stderr.
func (e *testEnv) run(args ...string) (string, string, error) {
	return e.runContext(context.Background(), args...)
}

func (e *testEnv) runContext(ctx context.Context, args ...string) (string, string, error) {
	e.t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr syncBuffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--config-path", e.configDir, "--no-browser"))
	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// fakeAPI serves the book API behind a gateway that accepts a bearer
// token or a session cookie.
type fakeAPI struct {
	server      *httptest.Server
	tokenCalls  atomic.Int32
	forbidAll   atomic.Bool
	sessionName string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{sessionName: "session"}

	handler := bookservice.NewHandler(bookservice.NewMemoryRepository(), nil, nil)
	api := bookservice.NewRouter(handler, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		if user, pass, ok := r.BasicAuth(); !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "machine-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, bookservice.BooksPath) {
			http.NotFound(w, r)
			return
		}
		if f.forbidAll.Load() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		api.ServeHTTP(w, r)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	if r.Header.Get("Authorization") == "Bearer machine-token" {
		return true
	}
	c, err := r.Cookie(f.sessionName)
	return err == nil && c.Value == "abc"
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, getExitCode(err), "error: %v", err)
}
