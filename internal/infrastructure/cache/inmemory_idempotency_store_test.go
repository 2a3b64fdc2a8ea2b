package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("first mark succeeds", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "recurring:2026-09-01", time.Hour)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("second mark reports already processed", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "recurring:2026-09-01", time.Hour)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("different key is independent", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "recurring:2026-09-02", time.Hour)
		require.NoError(t, err)
		assert.True(t, marked)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "known", time.Hour)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "known")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_Expiration(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "short-lived", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	processed, err := store.IsProcessed(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, processed)

	// An expired marker can be re-marked
	marked, err := store.MarkProcessed(ctx, "short-lived", time.Hour)
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 20

	var wg sync.WaitGroup
	var winners int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			marked, err := store.MarkProcessed(ctx, "contested", time.Hour)
			require.NoError(t, err)
			if marked {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly one goroutine wins the mark
	assert.Equal(t, int64(1), winners)
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := store.MarkProcessed(ctx, fmt.Sprintf("key-%d", i), time.Hour)
		require.NoError(t, err)
	}

	assert.Equal(t, 5, store.Size())
}
