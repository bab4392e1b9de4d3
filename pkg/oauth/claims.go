package oauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by InspectClaims for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims is the informational subset of a machine token's payload.
// The signature is not verified; the API gateway does that.
type Claims struct {
	Subject   string
	Issuer    string
	ClientID  string
	Scopes    []string
	ExpiresAt time.Time
}

// InspectClaims decodes a JWT access token without verifying it.
// It is used for status output only and must not drive authorization.
func InspectClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}

	for _, key := range []string{"azp", "client_id"} {
		if v, ok := mc[key].(string); ok && v != "" {
			c.ClientID = v
			break
		}
	}
	if scope, ok := mc["scope"].(string); ok {
		c.Scopes = strings.Fields(scope)
	}

	return c, nil
}
