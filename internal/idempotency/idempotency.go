package idempotency

import (
	"context"

	"github.com/google/uuid"
)

// Header carries the client's key; it becomes the settlement reference of the
// request, so a replayed request cannot charge twice.
const Header = "Idempotency-Key"

type ctxKey struct{}

func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// Ensure returns ctx with a key, generating one when none is present.
func Ensure(ctx context.Context, key string) context.Context {
	if key == "" {
		if _, ok := ctx.Value(ctxKey{}).(string); ok {
			return ctx
		}
		key = uuid.NewString()
	}
	return WithKey(ctx, key)
}

func HasKey(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKey{}).(string)
	return ok
}

func GetKey(ctx context.Context) string {
	key, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return uuid.NewString()
	}

	return key
}
