package auth

import (
	"context"

	"github.com/vevey/vevey/internal/server/models"
)

type principalCtxKey struct{}

// WithPrincipal attaches the verified caller identity to the context.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFrom returns the caller identity, or nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalCtxKey{}).(*models.Principal)
	return p
}
