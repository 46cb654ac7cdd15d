package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quickshop/storefront/internal/database/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)
	return svc
}

func populate(t *testing.T, svc *Service) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, svc.Products.Set(ctx, sampleProducts()))
	require.NoError(t, svc.Users.Set(ctx, sampleUser()))
}

func TestInvalidateProductsLeavesUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	populate(t, svc)

	require.NoError(t, svc.Invalidate(ctx, ScopeProducts))

	_, ok := svc.Products.Get(ctx)
	require.False(t, ok)

	_, ok = svc.Users.Get(ctx)
	require.True(t, ok)
}

func TestInvalidateUserLeavesProducts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	populate(t, svc)

	require.NoError(t, svc.Invalidate(ctx, ScopeUser))

	_, ok := svc.Users.Get(ctx)
	require.False(t, ok)

	_, ok = svc.Products.Get(ctx)
	require.True(t, ok)
}

func TestInvalidateAllClearsBoth(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	populate(t, svc)

	require.NoError(t, svc.Invalidate(ctx, ScopeAll))

	_, ok := svc.Products.Get(ctx)
	require.False(t, ok)
	_, ok = svc.Users.Get(ctx)
	require.False(t, ok)
}

func TestInvalidateUnknownScope(t *testing.T) {
	svc := newTestService(t)

	err := svc.Invalidate(context.Background(), Scope("sessions"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown invalidation scope")
}

func TestNewServiceAppliesOptions(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewService(db, WithFreshness(time.Minute))
	require.NoError(t, err)
	require.Equal(t, time.Minute, svc.Products.freshness)
	require.Equal(t, time.Minute, svc.Users.freshness)
}
