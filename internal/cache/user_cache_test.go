package cache

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quickshop/storefront/internal/database/testutil"
	"github.com/quickshop/storefront/internal/models"
)

func newTestUserCache(t *testing.T) (*UserCache, Store) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)
	uc, err := NewUserCache(store, DefaultFreshness)
	require.NoError(t, err)
	return uc, store
}

func sampleUser() models.UserProfile {
	return models.UserProfile{
		ID:              42,
		Email:           "jo@example.com",
		FirstName:       "Jo",
		IsVerifiedEmail: true,
	}
}

func TestUserCacheRoundTrip(t *testing.T) {
	uc, _ := newTestUserCache(t)
	ctx := context.Background()

	user := sampleUser()
	require.NoError(t, uc.Set(ctx, user))

	got, ok := uc.Get(ctx)
	require.True(t, ok)
	require.Equal(t, user, *got)
	require.False(t, uc.IsExpired(ctx))
}

func TestUserCacheMissWhenEmpty(t *testing.T) {
	uc, _ := newTestUserCache(t)

	got, ok := uc.Get(context.Background())
	require.False(t, ok)
	require.Nil(t, got)
	require.True(t, uc.IsExpired(context.Background()))
}

func TestUserCacheTamperDetection(t *testing.T) {
	uc, store := newTestUserCache(t)
	ctx := context.Background()

	require.NoError(t, uc.Set(ctx, sampleUser()))

	// Mutate the payload inside the blob without updating the stored hash.
	blob, ok, err := store.Get(ctx, userSlotKey)
	require.NoError(t, err)
	require.True(t, ok)

	raw, err := base64.StdEncoding.DecodeString(string(blob))
	require.NoError(t, err)
	tampered := bytes.Replace(raw, []byte("jo@example.com"), []byte("ha@example.com"), 1)
	require.NotEqual(t, raw, tampered)

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(tampered)))
	base64.StdEncoding.Encode(encoded, tampered)
	require.NoError(t, store.Set(ctx, userSlotKey, encoded, DefaultFreshness))

	got, ok := uc.Get(ctx)
	require.False(t, ok)
	require.Nil(t, got)

	// The slot is cleared, not just skipped.
	_, ok, err = store.Get(ctx, userSlotKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserCacheMalformedBlobIsClearedOnRead(t *testing.T) {
	uc, store := newTestUserCache(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, userSlotKey, []byte("not base64!!"), DefaultFreshness))

	got, ok := uc.Get(ctx)
	require.False(t, ok)
	require.Nil(t, got)

	_, ok, err := store.Get(ctx, userSlotKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserCacheExpiryBoundary(t *testing.T) {
	uc, store := newTestUserCache(t)
	ctx := context.Background()

	base := time.Now()
	uc.now = func() time.Time { return base }
	require.NoError(t, uc.Set(ctx, sampleUser()))

	uc.now = func() time.Time { return base.Add(DefaultFreshness - time.Millisecond) }
	_, ok := uc.Get(ctx)
	require.True(t, ok)
	require.False(t, uc.IsExpired(ctx))

	uc.now = func() time.Time { return base.Add(DefaultFreshness + time.Millisecond) }
	require.True(t, uc.IsExpired(ctx))

	_, ok = uc.Get(ctx)
	require.False(t, ok)

	// Expired entry is evicted from persistent storage as a side effect.
	_, ok, err := store.Get(ctx, userSlotKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserCacheClear(t *testing.T) {
	uc, _ := newTestUserCache(t)
	ctx := context.Background()

	require.NoError(t, uc.Set(ctx, sampleUser()))
	require.NoError(t, uc.Clear(ctx))

	_, ok := uc.Get(ctx)
	require.False(t, ok)
}
