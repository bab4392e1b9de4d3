package dispatch

import (
	"context"

	"readinglist/pkg/oauth"
)

// TokenProvider supplies bearer tokens. *oauth.TokenIssuer implements it.
type TokenProvider interface {
	GetValidToken(ctx context.Context) (*oauth.CachedToken, error)
}

// AuthStrategy selects how requests are authenticated.
// It is either Bearer or Cookie and is chosen once at startup.
type AuthStrategy interface {
	Mode() string
	authStrategy()
}

// Bearer authenticates with a client-credentials token.
type Bearer struct {
	Issuer      TokenProvider
	Credentials oauth.Credentials
}

func (Bearer) Mode() string  { return "bearer" }
func (Bearer) authStrategy() {}

// Cookie relies on ambient session cookies held by the HTTP client's jar.
type Cookie struct{}

func (Cookie) Mode() string  { return "cookie" }
func (Cookie) authStrategy() {}

// StrategyFor returns Bearer when creds are configured and Cookie otherwise.
func StrategyFor(creds oauth.Credentials, issuer TokenProvider) AuthStrategy {
	if creds.Configured() && issuer != nil {
		return Bearer{Issuer: issuer, Credentials: creds}
	}
	return Cookie{}
}
