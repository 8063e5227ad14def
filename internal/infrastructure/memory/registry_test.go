package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtickets/internal/infrastructure/memory"
)

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r := memory.NewRegistry("alice")

	ok, err := r.IsVerified(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = r.IsVerified(ctx, "bob")
	assert.False(t, ok)

	require.NoError(t, r.VerifyBatch(ctx, []string{"bob", "carol", ""}))
	ok, _ = r.IsVerified(ctx, "carol")
	assert.True(t, ok)
	ok, _ = r.IsVerified(ctx, "")
	assert.False(t, ok)

	require.NoError(t, r.Unverify(ctx, "alice"))
	ok, _ = r.IsVerified(ctx, "alice")
	assert.False(t, ok)
}
