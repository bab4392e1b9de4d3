package app

import (
	"fmt"
	"net/http"
	"net/url"

	"readinglist/internal/books"
	"readinglist/internal/config"
	"readinglist/internal/dispatch"
	"readinglist/internal/session"
	"readinglist/pkg/logging"
	"readinglist/pkg/oauth"
)

// Services holds the client-side request pipeline, wired once per process.
//
// Dependencies are built bottom-up:
//  1. Credentials, CredentialStore and TokenIssuer
//  2. Cookie jar and persisted session store under the state directory
//  3. Resolver and session Manager
//  4. Dispatcher with the auth strategy chosen from the credentials
//  5. Books client gated on the session
type Services struct {
	BaseURL     *url.URL
	LoginURL    *url.URL
	LogoutURL   *url.URL
	Credentials oauth.Credentials
	Issuer      *oauth.TokenIssuer
	Jar         *session.Jar
	Store       session.Store
	Session     *session.Manager
	Dispatcher  *dispatch.Dispatcher
	Books       *books.Client
}

// InitializeServices builds the pipeline from settings.
func InitializeServices(cfg *Config, settings *config.Config) (*Services, error) {
	logger := logging.Logger()

	baseURL, err := url.Parse(settings.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api.baseURL: %w", err)
	}
	origin := &url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host, Path: "/"}
	loginURL := origin.JoinPath(settings.API.LoginPath)
	logoutURL := origin.JoinPath(settings.API.LogoutPath)
	refreshURL := origin.JoinPath(settings.API.RefreshPath)

	creds := settings.MachineAuth.Credentials()
	timeout := settings.API.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	issuer := oauth.NewTokenIssuer(creds,
		oauth.WithHTTPClient(&http.Client{Timeout: timeout}),
		oauth.WithLogger(logger),
	)

	jar, err := session.NewJar(origin, settings.Session.StateDir)
	if err != nil {
		return nil, err
	}
	store, err := session.NewFileStore(settings.Session.StateDir)
	if err != nil {
		return nil, err
	}

	resolver := session.NewResolver(jar, store, creds.Configured(), logger)
	manager := session.NewManager(resolver, store, jar, logoutURL, logger)

	strategy := dispatch.StrategyFor(creds, issuer)
	logging.Debug("Bootstrap", "Request mode: %s, API: %s", strategy.Mode(), baseURL)

	opts := []dispatch.Option{
		dispatch.WithHTTPClient(&http.Client{Timeout: timeout, Jar: jar}),
		dispatch.WithIdentityClearer(manager),
		dispatch.WithRefreshURL(refreshURL),
		dispatch.WithLoginURL(loginURL),
		dispatch.WithLogger(logger),
	}
	dispatcher := dispatch.New(baseURL, strategy, opts...)

	var clientOpts []books.ClientOption
	clientOpts = append(clientOpts, books.WithLogger(logger))
	if cfg.Navigator != nil {
		clientOpts = append(clientOpts, books.WithNavigator(cfg.Navigator))
	}

	return &Services{
		BaseURL:     baseURL,
		LoginURL:    loginURL,
		LogoutURL:   logoutURL,
		Credentials: creds,
		Issuer:      issuer,
		Jar:         jar,
		Store:       store,
		Session:     manager,
		Dispatcher:  dispatcher,
		Books:       books.NewClient(dispatcher, manager, clientOpts...),
	}, nil
}
