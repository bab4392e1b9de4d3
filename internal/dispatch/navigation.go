package dispatch

import (
	"context"
	"net/url"
)

// Navigation is what the caller should do after a dispatch.
// The zero value means continue.
type Navigation struct {
	target *url.URL
}

// Continue leaves the caller where it is.
func Continue() Navigation {
	return Navigation{}
}

// RedirectTo asks the caller to send the user to target.
func RedirectTo(target *url.URL) Navigation {
	if target == nil {
		return Navigation{}
	}
	u := *target
	return Navigation{target: &u}
}

// IsRedirect reports whether the caller should navigate away.
func (n Navigation) IsRedirect() bool {
	return n.target != nil
}

// Target returns the redirect URL, or nil.
func (n Navigation) Target() *url.URL {
	if n.target == nil {
		return nil
	}
	u := *n.target
	return &u
}

func (n Navigation) String() string {
	if n.target == nil {
		return "continue"
	}
	return "redirect:" + n.target.String()
}

// Navigator carries out a redirect, for example by opening a browser.
type Navigator interface {
	Navigate(ctx context.Context, target *url.URL) error
}

// Apply performs nav with n. Continue is a no-op.
func Apply(ctx context.Context, nav Navigation, n Navigator) error {
	if !nav.IsRedirect() || n == nil {
		return nil
	}
	return n.Navigate(ctx, nav.Target())
}
