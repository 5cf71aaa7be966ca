package identity

import (
	"context"
	"errors"
)

// Principal is the authenticated caller, produced once at the boundary and
// passed explicitly into operations.
type Principal struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == "admin"
}

// Verifier authenticates a bearer token and yields the principal behind it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

var (
	// ErrUnauthorized is returned when no valid credential accompanies the request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the principal lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

type contextKey struct{}

// WithPrincipal attaches the principal to the context at the boundary.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext retrieves the principal placed by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
