package auth

import (
	"context"

	"gooey-backend/domain/config"
)

// Identity is the caller a request acts for
type Identity struct {
	UserID string
	Guest  bool
}

// GuestIdentity is the shared anonymous identity every unauthenticated caller gets
func GuestIdentity() Identity {
	return Identity{UserID: config.GuestUserID, Guest: true}
}

type identityKey struct{}

// WithIdentity returns a context carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the caller identity, falling back to the guest
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return GuestIdentity()
}
