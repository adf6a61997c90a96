// Package auth defines the caller identity and the admin pass/fail check
// applied to every catalog mutation.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated means the caller presented no usable identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the caller is authenticated but lacks the admin role.
	ErrForbidden = errors.New("admin role required")
)

// RoleAdmin is the role allowed to mutate the catalog.
const RoleAdmin = "admin"

// Principal is an authenticated caller.
type Principal struct {
	Subject string
	Role    string
}

// IsAdmin reports whether p holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// RequireAdmin passes only for an admin principal.
func RequireAdmin(p *Principal) error {
	if p == nil || p.Subject == "" {
		return ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
