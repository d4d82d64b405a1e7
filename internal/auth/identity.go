package auth

import "context"

// Identity is the authenticated caller extracted from a validated bearer
// token. It is threaded explicitly through the request context by the
// authentication middleware; no global state holds the current user.
type Identity struct {
	UserID string
}

type identityKey struct{}

// WithIdentity stores the caller identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the caller identity, reporting whether the
// request was authenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
