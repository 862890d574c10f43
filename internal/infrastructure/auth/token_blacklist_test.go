package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesti/backend/internal/infrastructure/auth"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked token is reported", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()

		revoked, err := blacklist.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))

		revoked, err = blacklist.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("lapsed entries stop matching", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()

		require.NoError(t, blacklist.Revoke(ctx, "jti-2", 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		revoked, err := blacklist.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revocations are independent per JTI", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()

		require.NoError(t, blacklist.Revoke(ctx, "jti-3", time.Hour))

		revoked, err := blacklist.IsRevoked(ctx, "jti-4")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
