// Package oauth implements machine-to-machine authentication for readinglist.
//
// When a consumer key and secret are configured, requests to the reading-list
// API carry a bearer token obtained with the OAuth 2.0 client-credentials grant.
//
// # Core Components
//
//   - Credentials: the static client identity (key, secret, token endpoint, API key)
//   - CredentialStore: the single cached token and its trusted expiry
//   - TokenIssuer: performs the exchange and serves tokens from the store
//   - RedactedToken: keeps token values out of logs
//
// # Expiry
//
// A token declared to live N seconds is trusted for 0.9*N seconds from the
// moment it was received. Until then GetValidToken returns it without any
// network call. Concurrent callers that find the cache empty share one exchange.
//
// # Usage
//
//	issuer := oauth.NewTokenIssuer(oauth.Credentials{
//		ConsumerKey:    key,
//		ConsumerSecret: secret,
//		TokenEndpoint:  oauth.DefaultTokenURL,
//	}, oauth.WithLogger(logging.Logger()))
//
//	tok, err := issuer.GetValidToken(ctx)
//
// TokenIssuer also satisfies oauth2.TokenSource, so it can back an
// oauth2.Transport directly.
package oauth
