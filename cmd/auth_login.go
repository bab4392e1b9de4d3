package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"readinglist/internal/cli"
	"readinglist/internal/session"
)

// Login-specific flags
var (
	loginArtifact    string
	loginCookies     []string
	loginCallbackURL string
	loginListen      bool
	loginListenAddr  string
)

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the managed-auth gateway",
	Long: `Sign in through the managed-auth gateway.

Without flags the sign-in page is opened and you finish by pasting the
URL you land on with --callback-url. With --listen a local server
receives the redirect instead.

A failed sign-in arrives as code and message query parameters and is
reported as "Something went wrong".

Examples:
  readinglist auth login
  readinglist auth login --listen
  readinglist auth login --callback-url 'http://localhost:3000/?userinfo=eyJ...'
  readinglist auth login --artifact eyJ... --cookie 'session_hint=abc'`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().StringVar(&loginArtifact, "artifact", "", "userinfo value copied from the browser")
	authLoginCmd.Flags().StringArrayVar(&loginCookies, "cookie", nil, "Gateway cookie as name=value (repeatable)")
	authLoginCmd.Flags().StringVar(&loginCallbackURL, "callback-url", "", "URL the gateway redirected the browser to")
	authLoginCmd.Flags().BoolVar(&loginListen, "listen", false, "Receive the sign-in redirect on a local server")
	authLoginCmd.Flags().StringVar(&loginListenAddr, "listen-addr", cli.DefaultCallbackAddr, "Address for --listen")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	svc := application.Services()
	ctx := commandContext(cmd)
	navigator := cli.NewBrowserNavigator(cmd.ErrOrStderr(), !rootNoBrowser)
	loginURL := svc.LoginURL.String()

	artifact := loginArtifact
	switch {
	case loginCallbackURL != "":
		u, err := url.Parse(loginCallbackURL)
		if err != nil {
			return fmt.Errorf("invalid --callback-url: %w", err)
		}
		if mae := cli.ManagedAuthErrorFrom(u); mae != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatManagedAuthError(mae))
			return &cli.AuthFailedError{Endpoint: loginURL, Reason: mae}
		}
		artifact = u.Query().Get(session.ArtifactCookie)
		if artifact == "" {
			return fmt.Errorf("--callback-url has no %s parameter", session.ArtifactCookie)
		}
	case loginListen:
		artifact, err = waitForSignIn(ctx, cmd, svc.LoginURL, navigator)
		if err != nil {
			return err
		}
	}

	var cookies []*http.Cookie
	for _, raw := range loginCookies {
		parsed, err := http.ParseCookie(raw)
		if err != nil {
			return fmt.Errorf("invalid --cookie %q: %w", raw, err)
		}
		cookies = append(cookies, parsed...)
	}

	if artifact == "" && len(cookies) == 0 {
		if err := navigator.Navigate(ctx, svc.LoginURL); err != nil {
			return err
		}
		authPrintf(cmd, "After signing in, run:\n  readinglist auth login --callback-url '<the URL you land on>'\n")
		return nil
	}

	if artifact != "" {
		cookies = append(cookies, &http.Cookie{Name: session.ArtifactCookie, Value: artifact})
	}
	if err := svc.Jar.Import(cookies); err != nil {
		return fmt.Errorf("failed to store cookies: %w", err)
	}

	state := svc.Session.Resolve(ctx)
	if artifact != "" && state.Identity == nil {
		return &cli.AuthFailedError{Endpoint: loginURL, Reason: session.ErrMalformedIdentity}
	}

	if state.Identity != nil {
		authPrintf(cmd, "%s\n", cli.FormatSuccess("Signed in as "+describeIdentity(state.Identity)))
	} else {
		authPrintf(cmd, "%s\n", cli.FormatSuccess("Stored gateway cookies"))
	}
	return nil
}

// waitForSignIn opens the sign-in page with a redirect to a local callback
// server and returns the artifact it receives.
func waitForSignIn(ctx context.Context, cmd *cobra.Command, loginURL *url.URL, navigator *cli.BrowserNavigator) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cli.CallbackTimeout)
	defer cancel()

	server := cli.NewCallbackServer(loginListenAddr)
	callbackURL, err := server.Start(ctx)
	if err != nil {
		return "", err
	}
	defer server.Stop()

	target := *loginURL
	q := target.Query()
	q.Set("redirect_uri", callbackURL)
	target.RawQuery = q.Encode()

	if err := navigator.Navigate(ctx, &target); err != nil {
		return "", err
	}
	authPrintf(cmd, "Waiting for sign-in on %s ...\n", callbackURL)

	result, err := server.WaitForCallback(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return "", &cli.AuthFailedError{Endpoint: loginURL.String(), Reason: fmt.Errorf("no sign-in redirect within %s", cli.CallbackTimeout)}
	}
	if err != nil {
		return "", err
	}
	if result.Err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatManagedAuthError(result.Err))
		return "", &cli.AuthFailedError{Endpoint: loginURL.String(), Reason: result.Err}
	}
	return result.Artifact, nil
}
