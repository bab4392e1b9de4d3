package cli

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"readinglist/internal/session"
)

// DefaultCallbackAddr lets the OS pick a free loopback port.
const DefaultCallbackAddr = "127.0.0.1:0"

// CallbackTimeout is how long login waits for the browser to come back.
const CallbackTimeout = 10 * time.Minute

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var (
	successTmpl = template.Must(template.New("success").Parse(callbackSuccessHTML))
	errorTmpl   = template.Must(template.New("error").Parse(callbackErrorHTML))
)

// CallbackResult is what the sign-in flow sent back. Exactly one of
// Artifact and Err is set.
type CallbackResult struct {
	// Artifact is the raw userinfo value.
	Artifact string
	Err      *ManagedAuthError
}

// CallbackServer is a temporary loopback server that receives a single
// sign-in redirect and then shuts down.
type CallbackServer struct {
	addr     string
	server   *http.Server
	listener net.Listener
	resultCh chan *CallbackResult
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
}

// NewCallbackServer listens on addr once started. An empty addr means
// DefaultCallbackAddr.
func NewCallbackServer(addr string) *CallbackServer {
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	return &CallbackServer{
		addr:     addr,
		resultCh: make(chan *CallbackResult, 1),
		errorCh:  make(chan error, 1),
	}
}

// Start begins listening and returns the callback URL. The server stops
// when ctx is cancelled.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("http://localhost:%d/callback", port), nil
}

// WaitForCallback blocks until the redirect arrives, the server fails or
// ctx is done.
func (s *CallbackServer) WaitForCallback(ctx context.Context) (*CallbackResult, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})
	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	result := &CallbackResult{}
	if mae := ManagedAuthErrorFrom(r.URL); mae != nil {
		result.Err = mae
	} else if raw := r.URL.Query().Get(session.ArtifactCookie); raw != "" {
		result.Artifact = raw
	} else {
		result.Err = &ManagedAuthError{Code: "missing_userinfo", Message: "the sign-in response carried no user information"}
	}

	var err error
	if result.Err != nil {
		w.WriteHeader(http.StatusBadRequest)
		err = errorTmpl.Execute(w, result.Err)
	} else {
		err = successTmpl.Execute(w, nil)
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}

	select {
	case s.resultCh <- result:
	default:
	}

	go func() {
		time.Sleep(time.Second)
		s.Stop()
	}()
}

// Stop shuts the server down. It is safe to call more than once.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		if s.server == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	})
}
