package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/backend/internal/infrastructure/auth"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	err := blacklist.Revoke(ctx, "test-jti-1", 1*time.Hour)
	require.NoError(t, err)

	revoked, err := blacklist.IsRevoked(ctx, "test-jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "test-jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_ExpiredEntriesAreDropped(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	err := blacklist.Revoke(ctx, "short-lived", 1*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	revoked, err := blacklist.IsRevoked(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeAllForUser(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedEarlier := time.Now().Add(-1 * time.Hour)

	revoked, err := blacklist.IsUserRevoked(ctx, "user-1", issuedEarlier)
	require.NoError(t, err)
	assert.False(t, revoked)

	err = blacklist.RevokeAllForUser(ctx, "user-1", 1*time.Hour)
	require.NoError(t, err)

	// Tokens issued before the revocation are rejected
	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", issuedEarlier)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Tokens issued after the revocation stay valid
	futureToken := time.Now().Add(1 * time.Second)
	time.Sleep(2 * time.Millisecond)
	revoked, err = blacklist.IsUserRevoked(ctx, "user-1", futureToken)
	require.NoError(t, err)
	assert.False(t, revoked)

	// Other users are unaffected
	revoked, err = blacklist.IsUserRevoked(ctx, "user-2", issuedEarlier)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_MultipleTokens(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		jti := "test-jti-" + string(rune('a'+i))
		err := blacklist.Revoke(ctx, jti, 1*time.Hour)
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		jti := "test-jti-" + string(rune('a'+i))
		revoked, err := blacklist.IsRevoked(ctx, jti)
		require.NoError(t, err)
		assert.True(t, revoked, "token %s should be revoked", jti)
	}

	revoked, err := blacklist.IsRevoked(ctx, "never-revoked")
	require.NoError(t, err)
	assert.False(t, revoked)
}
