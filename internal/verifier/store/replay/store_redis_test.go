//go:build integration

package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/pkg/platform/sentinel"
	"proofgate/pkg/testutil/containers"
)

func TestRedisStoreConsumeOnce(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := NewRedisStore(rc.Client, time.Minute)

	require.NoError(t, store.Consume(ctx, "nullifier-a"))
	assert.ErrorIs(t, store.Consume(ctx, "nullifier-a"), sentinel.ErrAlreadyUsed)
	assert.NoError(t, store.Consume(ctx, "nullifier-b"))
}

func TestRedisStoreEntriesExpire(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	store := NewRedisStore(rc.Client, 100*time.Millisecond)

	require.NoError(t, store.Consume(ctx, "short-lived"))
	assert.ErrorIs(t, store.Consume(ctx, "short-lived"), sentinel.ErrAlreadyUsed)

	time.Sleep(200 * time.Millisecond)

	assert.NoError(t, store.Consume(ctx, "short-lived"))
}
