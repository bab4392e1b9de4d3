package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedIdentity is returned when a login artifact or persisted session
// value cannot be decoded into an Identity.
var ErrMalformedIdentity = errors.New("malformed identity")

// Identity describes the signed-in user as reported by the managed-auth gateway.
type Identity struct {
	Subject      string `json:"sub,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"org_name,omitempty"`
}

// DisplayName returns the email, falling back to the subject.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.Email != "" {
		return i.Email
	}
	return i.Subject
}

// DecodeIdentity decodes a base64-encoded JSON identity.
// Standard padded base64 is tried first, then the URL-safe and unpadded variants.
func DecodeIdentity(raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty value", ErrMalformedIdentity)
	}

	payload, err := decodeBase64(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}

	var id *Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}
	if id == nil {
		return nil, fmt.Errorf("%w: null payload", ErrMalformedIdentity)
	}
	return id, nil
}

// EncodeIdentity produces the artifact form DecodeIdentity accepts.
func EncodeIdentity(id Identity) (string, error) {
	payload, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

func decodeBase64(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
