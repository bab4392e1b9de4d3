package session

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Resolver reconciles the login artifact, the persisted session and the
// presence of machine credentials into an AuthState.
//
// Sources are consulted in order:
//  1. the one-time artifact cookie, which is persisted and then removed
//  2. the identity persisted in the session store
//  3. configured machine credentials, trusted without an identity
//
// Resolve has no effect beyond consuming the artifact, so running it again
// yields the same state from the persisted session.
type Resolver struct {
	cookies      CookieSource
	store        Store
	machineCreds bool
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewResolver creates a resolver. cookies may be nil when no jar is in use.
// machineCreds reports whether client credentials are configured.
func NewResolver(cookies CookieSource, store Store, machineCreds bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cookies:      cookies,
		store:        store,
		machineCreds: machineCreds,
		logger:       logger,
		tracer:       otel.Tracer("readinglist/session"),
	}
}

// Resolve computes the current AuthState. It never fails: undecodable
// sources are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context) AuthState {
	_, span := r.tracer.Start(ctx, "session.resolve")
	defer span.End()

	state := r.resolve()
	span.SetAttributes(
		attribute.Bool("session.authenticated", state.Authenticated),
		attribute.String("session.source", state.Source()),
	)
	return state
}

func (r *Resolver) resolve() AuthState {
	if id, ok := r.fromArtifact(); ok {
		return AuthState{Resolved: true, Authenticated: true, Identity: id}
	}

	if raw, ok := r.store.Get(UserInfoKey); ok {
		id, err := DecodeIdentity(raw)
		if err == nil {
			r.logger.Debug("Resolved identity from persisted session")
			return AuthState{Resolved: true, Authenticated: true, Identity: id}
		}
		r.logger.Warn("Ignoring undecodable persisted session", "error", err.Error())
	}

	if r.machineCreds {
		r.logger.Debug("No user identity, machine credentials present")
		return AuthState{Resolved: true, Authenticated: true}
	}

	return AuthState{Resolved: true}
}

// fromArtifact consumes the one-time artifact. It is removed even when it
// cannot be decoded, but only a decodable artifact is persisted.
func (r *Resolver) fromArtifact() (*Identity, bool) {
	if r.cookies == nil {
		return nil, false
	}
	raw, ok := r.cookies.Cookie(ArtifactCookie)
	if !ok {
		return nil, false
	}

	defer func() {
		if err := r.cookies.ClearCookie(ArtifactCookie); err != nil {
			r.logger.Warn("Failed to remove login artifact", "error", err.Error())
		}
	}()

	id, err := DecodeIdentity(raw)
	if err != nil {
		r.logger.Warn("Ignoring undecodable login artifact", "error", err.Error())
		return nil, false
	}

	if err := r.store.Set(UserInfoKey, raw); err != nil {
		r.logger.Warn("Failed to persist identity", "error", err.Error())
	}
	r.logger.Debug("Resolved identity from login artifact")
	return id, true
}
