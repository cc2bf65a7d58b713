// Package shared holds cross-cutting request context, errors and audit
// helpers used by every domain module.
package shared

import (
	"context"

	"github.com/topline-app/topline/internal/policy"
)

// Principal describes the authenticated actor extracted from a verified
// bearer token.
type Principal struct {
	UserID string
	OrgID  string
	Name   string
	Role   policy.Role
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, nil when the
// request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
