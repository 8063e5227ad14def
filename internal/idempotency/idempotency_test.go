package idempotency_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fairtickets/internal/idempotency"
)

func TestEnsure(t *testing.T) {
	ctx := idempotency.Ensure(context.Background(), "")
	key := idempotency.GetKey(ctx)
	assert.NotEmpty(t, key)
	assert.Equal(t, key, idempotency.GetKey(ctx), "generated key must be stable within the context")

	assert.Equal(t, key, idempotency.GetKey(idempotency.Ensure(ctx, "")))
	assert.Equal(t, "client-key", idempotency.GetKey(idempotency.Ensure(ctx, "client-key")))
}

func TestGetKey_WithoutKey(t *testing.T) {
	assert.NotEqual(t, idempotency.GetKey(context.Background()), idempotency.GetKey(context.Background()))
}

func TestHasKey(t *testing.T) {
	assert.False(t, idempotency.HasKey(context.Background()))
	assert.True(t, idempotency.HasKey(idempotency.WithKey(context.Background(), "k")))
}
