// Package userctx carries the authenticated user from auth middleware to handlers.
package userctx

import (
	"context"

	"github.com/nkiryanov/quill/internal/models"
)

type ctxKey struct{}

// Context with the user resolved from audience tokens
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// User resolved by auth middleware, if any
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(models.User)
	return u, ok
}

// User for handlers mounted behind auth middleware
// Panics if there is no user: the route is wired without authentication
func MustFromContext(ctx context.Context) models.User {
	u, ok := FromContext(ctx)
	if !ok {
		panic("userctx: no authenticated user in context, route is not behind auth middleware")
	}
	return u
}
