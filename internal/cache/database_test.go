package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quickshop/storefront/internal/database/testutil"
	"github.com/quickshop/storefront/internal/models"
)

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	value, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, value)

	require.NoError(t, store.Set(ctx, "slot", []byte("payload"), time.Minute))

	value, ok, err = store.Get(ctx, "slot")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), value)

	require.NoError(t, store.Delete(ctx, "slot"))

	_, ok, err = store.Get(ctx, "slot")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDatabaseStoreSetOverwrites(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "slot", []byte("old"), time.Minute))
	require.NoError(t, store.Set(ctx, "slot", []byte("new"), time.Minute))

	value, ok, err := store.Get(ctx, "slot")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("new"), value)
}

func TestDatabaseStoreExpiredEntryIsDeletedOnRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "slot", []byte("payload"), time.Minute))

	// Age the entry past its expiry directly in the table.
	require.NoError(t, db.Model(&models.CacheEntry{}).
		Where("key = ?", "slot").
		Update("expires_at", time.Now().Add(-time.Second)).Error)

	_, ok, err := store.Get(ctx, "slot")
	require.NoError(t, err)
	require.False(t, ok)

	var count int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Where("key = ?", "slot").Count(&count).Error)
	require.Zero(t, count)
}

func TestDatabaseStoreZeroTTLNeverExpires(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "slot", []byte("payload"), 0))

	_, ok, err := store.Get(ctx, "slot")
	require.NoError(t, err)
	require.True(t, ok)
}
