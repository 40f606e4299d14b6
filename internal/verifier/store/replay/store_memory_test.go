package replay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofgate/pkg/platform/sentinel"
)

func TestInMemoryStoreConsumeOnce(t *testing.T) {
	store := NewInMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Consume(ctx, "nullifier-a"))

	err := store.Consume(ctx, "nullifier-a")
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	// A different nullifier is unaffected.
	require.NoError(t, store.Consume(ctx, "nullifier-b"))
}

func TestInMemoryStoreConcurrentConsume(t *testing.T) {
	store := NewInMemoryStore(0)
	ctx := context.Background()

	const attempts = 50
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Consume(ctx, "contested")
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, replayed int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed):
			replayed++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one submission may consume a nullifier")
	assert.Equal(t, attempts-1, replayed)
}

func TestInMemoryStoreExpiredEntryCanBeReused(t *testing.T) {
	store := NewInMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Consume(ctx, "short-lived"))
	assert.ErrorIs(t, store.Consume(ctx, "short-lived"), sentinel.ErrAlreadyUsed)

	time.Sleep(20 * time.Millisecond)

	assert.NoError(t, store.Consume(ctx, "short-lived"))
}

func TestInMemoryStoreSweepsExpiredEntries(t *testing.T) {
	store := NewInMemoryStore(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Consume(ctx, "first"))
	require.NoError(t, store.Consume(ctx, "second"))
	require.Equal(t, 2, store.Len())

	time.Sleep(100 * time.Millisecond)

	// The next consume sweeps the expired entries, so only the fresh
	// nullifier remains tracked.
	require.NoError(t, store.Consume(ctx, "third"))
	assert.Equal(t, 1, store.Len())
}
