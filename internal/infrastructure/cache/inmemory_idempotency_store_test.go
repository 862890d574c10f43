package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new notification as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "notification-1", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew, "new notification should return true")
	})

	t.Run("returns false for already processed notification", func(t *testing.T) {
		notificationID := "notification-2"
		ttl := 1 * time.Hour

		isNew, err := store.MarkProcessed(ctx, notificationID, ttl)
		require.NoError(t, err)
		assert.True(t, isNew)

		// Second delivery of the same notification
		isNew, err = store.MarkProcessed(ctx, notificationID, ttl)
		require.NoError(t, err)
		assert.False(t, isNew, "already processed notification should return false")
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		notificationID := "notification-3"
		ttl := 10 * time.Millisecond

		isNew, err := store.MarkProcessed(ctx, notificationID, ttl)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, notificationID, ttl)
		require.NoError(t, err)
		assert.True(t, isNew, "expired notification should be reprocessable")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns false for unprocessed notification", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "unknown-notification")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("returns true for processed notification", func(t *testing.T) {
		notificationID := "processed-notification"
		_, err := store.MarkProcessed(ctx, notificationID, 1*time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, notificationID)
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("returns false for expired notification", func(t *testing.T) {
		notificationID := "expired-notification"
		_, err := store.MarkProcessed(ctx, notificationID, 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, notificationID)
		require.NoError(t, err)
		assert.False(t, processed, "expired notification should return false")
	})
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	assert.Equal(t, 0, store.Size(), "empty store should have size 0")

	store.MarkProcessed(ctx, "notification-1", 1*time.Hour)
	assert.Equal(t, 1, store.Size())

	store.MarkProcessed(ctx, "notification-2", 1*time.Hour)
	assert.Equal(t, 2, store.Size())

	// Marking the same notification again shouldn't increase size
	store.MarkProcessed(ctx, "notification-1", 1*time.Hour)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	store.MarkProcessed(ctx, "short-lived-1", 10*time.Millisecond)
	store.MarkProcessed(ctx, "short-lived-2", 10*time.Millisecond)
	store.MarkProcessed(ctx, "long-lived", 1*time.Hour)

	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)

	store.cleanup()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "long-lived")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "short-lived-1")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const numGoroutines = 100
	const notificationID = "concurrent-notification"

	results := make(chan bool, numGoroutines)

	// Concurrent redeliveries of the same notification
	for i := 0; i < numGoroutines; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, notificationID, 1*time.Hour)
			if err != nil {
				results <- false
			} else {
				results <- isNew
			}
		}()
	}

	newCount := 0
	duplicateCount := 0
	for i := 0; i < numGoroutines; i++ {
		if <-results {
			newCount++
		} else {
			duplicateCount++
		}
	}

	// Exactly one goroutine should have marked it as new
	assert.Equal(t, 1, newCount, "exactly one goroutine should mark as new")
	assert.Equal(t, numGoroutines-1, duplicateCount, "all others should be duplicates")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	err := store.Close()
	assert.NoError(t, err)

	// Multiple closes should be safe
	err = store.Close()
	assert.NoError(t, err)
}
