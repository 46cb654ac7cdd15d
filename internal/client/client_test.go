package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/quickshop/storefront/internal/cache"
	"github.com/quickshop/storefront/internal/database/testutil"
	"github.com/quickshop/storefront/internal/models"
)

type fakeBackend struct {
	*httptest.Server

	mu    sync.Mutex
	hits  map[string]int
	serve map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	backend := &fakeBackend{
		hits:  map[string]int{},
		serve: map[string]http.HandlerFunc{},
	}
	backend.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		backend.mu.Lock()
		backend.hits[key]++
		handler := backend.serve[key]
		backend.mu.Unlock()

		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(backend.Close)

	return backend
}

func (b *fakeBackend) on(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.serve[method+" "+path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (b *fakeBackend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

func newTestClient(t *testing.T, backend *fakeBackend) *Client {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	cacheSvc, err := cache.NewService(db)
	require.NoError(t, err)

	transport, err := NewTransport(backend.URL)
	require.NoError(t, err)

	c, err := New(transport, cacheSvc)
	require.NoError(t, err)
	return c
}

func catalog() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Mug", Price: 9.5, Stock: 12},
		{ID: 2, Name: "Poster", Price: 14, Stock: 3},
	}
}

func TestGetProductsReadThrough(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/", http.StatusOK, map[string]any{"products": catalog()})
	c := newTestClient(t, backend)
	ctx := context.Background()

	first, err := c.GetProducts(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, catalog(), first)
	require.Equal(t, 1, backend.count(http.MethodGet, "/products/"))

	second, err := c.GetProducts(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, catalog(), second)
	require.Equal(t, 1, backend.count(http.MethodGet, "/products/"), "second read must be served from cache")
}

func TestGetProductsBackendErrorPropagates(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/", http.StatusInternalServerError, map[string]string{"detail": "down"})
	c := newTestClient(t, backend)

	_, err := c.GetProducts(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestGetProductServedFromSnapshot(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/", http.StatusOK, map[string]any{"products": catalog()})
	c := newTestClient(t, backend)
	ctx := context.Background()

	_, err := c.GetProducts(ctx)
	require.NoError(t, err)

	product, err := c.GetProduct(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Mug", product.Name)
	require.Zero(t, backend.count(http.MethodGet, "/products/1"))
}

func TestGetProductNeverSeedsCache(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/5", http.StatusOK, map[string]any{
		"product": models.Product{ID: 5, Name: "Lamp", Price: 30, Stock: 1},
	})
	c := newTestClient(t, backend)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		product, err := c.GetProduct(ctx, 5)
		require.NoError(t, err)
		require.Equal(t, "Lamp", product.Name)
	}

	require.Equal(t, 2, backend.count(http.MethodGet, "/products/5"), "individual fetches must not seed the snapshot")
}

func TestGetCurrentUserReadThrough(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/accounts/me", http.StatusOK, map[string]any{
		"user": models.UserProfile{ID: 9, Email: "jo@example.com"},
	})
	c := newTestClient(t, backend)
	ctx := context.Background()

	first, err := c.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "jo@example.com", first.Email)

	second, err := c.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, *first, *second)
	require.Equal(t, 1, backend.count(http.MethodGet, "/accounts/me"))
}

func TestCheckoutInvalidatesProductSnapshot(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/", http.StatusOK, map[string]any{"products": catalog()})
	backend.on(http.MethodGet, "/accounts/me", http.StatusOK, map[string]any{
		"user": models.UserProfile{ID: 9, Email: "jo@example.com"},
	})
	backend.on(http.MethodPost, "/cart/checkout", http.StatusOK, map[string]any{
		"order": models.Order{ID: 31, TotalAmount: 23.5, Status: "paid", CreatedAt: time.Now().UTC()},
	})
	c := newTestClient(t, backend)
	ctx := context.Background()

	_, err := c.GetProducts(ctx)
	require.NoError(t, err)
	_, err = c.GetCurrentUser(ctx)
	require.NoError(t, err)

	order, err := c.Checkout(ctx, 3)
	require.NoError(t, err)
	require.EqualValues(t, 31, order.ID)

	_, err = c.GetProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, backend.count(http.MethodGet, "/products/"), "checkout must force a catalog refetch")

	// The user scope is untouched by a checkout.
	_, err = c.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, backend.count(http.MethodGet, "/accounts/me"))
}

func TestFailedCheckoutKeepsSnapshot(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/", http.StatusOK, map[string]any{"products": catalog()})
	backend.on(http.MethodPost, "/cart/checkout", http.StatusConflict, map[string]string{"detail": "out of stock"})
	c := newTestClient(t, backend)
	ctx := context.Background()

	_, err := c.GetProducts(ctx)
	require.NoError(t, err)

	_, err = c.Checkout(ctx, 3)
	require.Error(t, err)

	_, err = c.GetProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, backend.count(http.MethodGet, "/products/"), "failed checkout must not invalidate")
}

func TestLogoutClearsAllCaches(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/", http.StatusOK, map[string]any{"products": catalog()})
	backend.on(http.MethodGet, "/accounts/me", http.StatusOK, map[string]any{
		"user": models.UserProfile{ID: 9, Email: "jo@example.com"},
	})
	backend.on(http.MethodPost, "/accounts/logout", http.StatusOK, map[string]bool{"success": true})
	c := newTestClient(t, backend)
	ctx := context.Background()

	_, err := c.GetProducts(ctx)
	require.NoError(t, err)
	_, err = c.GetCurrentUser(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))

	_, err = c.GetProducts(ctx)
	require.NoError(t, err)
	_, err = c.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, backend.count(http.MethodGet, "/products/"))
	require.Equal(t, 2, backend.count(http.MethodGet, "/accounts/me"))
}

func TestAdminProductUpdateDoesNotInvalidate(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/products/", http.StatusOK, map[string]any{"products": catalog()})
	backend.on(http.MethodPut, "/products/1", http.StatusOK, map[string]any{
		"product": models.Product{ID: 1, Name: "Mug v2", Price: 11, Stock: 12},
	})
	c := newTestClient(t, backend)
	ctx := context.Background()

	_, err := c.GetProducts(ctx)
	require.NoError(t, err)

	_, err = c.UpdateProduct(ctx, 1, models.Product{ID: 1, Name: "Mug v2", Price: 11, Stock: 12})
	require.NoError(t, err)

	products, err := c.GetProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, backend.count(http.MethodGet, "/products/"), "admin edits rely on the freshness window")
	require.Equal(t, "Mug", products[0].Name)
}

func TestLoginStoresToken(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodPost, "/accounts/login", http.StatusOK, map[string]any{
		"access_token": "abc123",
		"user":         models.UserProfile{ID: 9, Email: "jo@example.com"},
	})
	c := newTestClient(t, backend)

	user, err := c.Login(context.Background(), "jo@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "jo@example.com", user.Email)
	require.Equal(t, "abc123", c.Transport().Token())
}

func TestTokenExpired(t *testing.T) {
	transport, err := NewTransport("http://localhost:1")
	require.NoError(t, err)

	require.True(t, transport.TokenExpired(), "empty token counts as expired")

	sign := func(exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "9",
			"exp": exp.Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return signed
	}

	transport.SetToken(sign(time.Now().Add(time.Hour)))
	require.False(t, transport.TokenExpired())

	transport.SetToken(sign(time.Now().Add(-time.Hour)))
	require.True(t, transport.TokenExpired())
}

func TestAdminUserManagementPassthrough(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/admin/users", http.StatusOK, map[string]any{
		"users": []models.UserProfile{{ID: 1, Email: "a@example.com"}, {ID: 2, Email: "b@example.com"}},
		"total": 2,
	})
	backend.on(http.MethodPatch, "/admin/users/2", http.StatusOK, map[string]any{
		"user": models.UserProfile{ID: 2, Email: "b@example.com", FirstName: "Blair"},
	})
	backend.on(http.MethodDelete, "/admin/users/2", http.StatusOK, map[string]any{"success": true})
	c := newTestClient(t, backend)
	ctx := context.Background()

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	updated, err := c.UpdateUser(ctx, 2, map[string]any{"first_name": "Blair"})
	require.NoError(t, err)
	require.Equal(t, "Blair", updated.FirstName)

	require.NoError(t, c.DeleteUser(ctx, 2))
	require.Equal(t, 1, backend.count(http.MethodDelete, "/admin/users/2"))
}

func TestAdminOrderSurfacePassthrough(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodGet, "/orders/admin/allorders", http.StatusOK, map[string]any{
		"orders": []models.Order{{ID: 7, Status: "success", TotalAmount: 42}},
	})
	backend.on(http.MethodGet, "/orders/admin/7", http.StatusOK, map[string]any{
		"order": models.Order{ID: 7, Status: "success", TotalAmount: 42},
	})
	backend.on(http.MethodPatch, "/orders/admin/7/status", http.StatusOK, map[string]any{
		"order": models.Order{ID: 7, Status: "shipped", TotalAmount: 42},
	})
	backend.on(http.MethodGet, "/payments/admin/all", http.StatusOK, map[string]any{
		"payments": []map[string]any{{"id": 1, "order_id": 7, "status": "captured"}},
	})
	c := newTestClient(t, backend)
	ctx := context.Background()

	orders, err := c.ListAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order, err := c.AdminGetOrder(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), order.ID)

	updated, err := c.AdminUpdateOrderStatus(ctx, 7, "shipped")
	require.NoError(t, err)
	require.Equal(t, "shipped", updated.Status)

	payments, err := c.ListAllPayments(ctx)
	require.NoError(t, err)
	require.Contains(t, string(payments), "captured")
}

func TestCreatePaymentPath(t *testing.T) {
	backend := newFakeBackend(t)
	backend.on(http.MethodPost, "/payments/create/7", http.StatusOK, map[string]any{"payment_id": "pay_1"})
	c := newTestClient(t, backend)

	result, err := c.CreatePayment(context.Background(), 7)
	require.NoError(t, err)
	require.Contains(t, string(result), "pay_1")
	require.Equal(t, 1, backend.count(http.MethodPost, "/payments/create/7"))
}
