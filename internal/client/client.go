package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/quickshop/storefront/internal/cache"
	"github.com/quickshop/storefront/internal/models"
	"github.com/quickshop/storefront/pkg/logger"
)

// Client is the storefront API client. Catalog and profile reads go through
// the local cache first; every other call is a plain pass-through. Backend
// failures always propagate to the caller, while cache failures never do.
type Client struct {
	transport *Transport
	cache     *cache.Service
	log       *zap.Logger
}

// New wires the client over a transport and a cache service.
func New(transport *Transport, cacheSvc *cache.Service) (*Client, error) {
	if transport == nil {
		return nil, errors.New("client: transport is required")
	}
	if cacheSvc == nil {
		return nil, errors.New("client: cache service is required")
	}
	return &Client{
		transport: transport,
		cache:     cacheSvc,
		log:       logger.WithModule("client"),
	}, nil
}

// Transport exposes the underlying transport for session management.
func (c *Client) Transport() *Transport {
	return c.transport
}

// GetProducts returns the catalog, serving the cached snapshot when it is
// fresh and populating it after a successful full fetch.
func (c *Client) GetProducts(ctx context.Context) ([]models.Product, error) {
	if products, ok := c.cache.Products.Get(ctx); ok {
		return products, nil
	}

	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, "/products/", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Products *[]models.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode products: %w", err)
	}
	if resp.Products == nil {
		return nil, fmt.Errorf("client: products response missing products field")
	}

	if err := c.cache.Products.Set(ctx, *resp.Products); err != nil {
		// Cache population failing must not fail the fetch.
		c.log.Warn("product snapshot population failed", zap.Error(err))
	}

	return *resp.Products, nil
}

// GetProduct returns one product. A cached snapshot record satisfies the
// lookup; otherwise the product is fetched from the backend without seeding
// the cache, so the snapshot stays all-or-nothing.
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if product, ok := c.cache.Products.GetByID(ctx, id); ok {
		return product, nil
	}

	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Product *models.Product `json:"product"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode product: %w", err)
	}
	if resp.Product == nil {
		return nil, fmt.Errorf("client: product response missing product field")
	}
	return resp.Product, nil
}

// GetCurrentUser returns the signed-in profile, cached when fresh.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.UserProfile, error) {
	if user, ok := c.cache.Users.Get(ctx); ok {
		return user, nil
	}

	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, "/accounts/me", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		User *models.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode user: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("client: user response missing user field")
	}

	if err := c.cache.Users.Set(ctx, *resp.User); err != nil {
		c.log.Warn("user cache population failed", zap.Error(err))
	}

	return resp.User, nil
}

// Login authenticates against the backend and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.UserProfile, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPost, "/accounts/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		AccessToken string              `json:"access_token"`
		User        *models.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode login response: %w", err)
	}
	if resp.AccessToken != "" {
		c.transport.SetToken(resp.AccessToken)
	}
	return resp.User, nil
}

// Register creates a new account. The backend issues no token until the
// address is verified, so nothing is cached here.
func (c *Client) Register(ctx context.Context, email, password string) (*models.UserProfile, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPost, "/accounts/register", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		User *models.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode register response: %w", err)
	}
	return resp.User, nil
}

// Logout signs out of the backend and evicts every local cache. The caches
// are cleared even when the backend call fails, so a half-completed logout
// can never leave stale profile data behind.
func (c *Client) Logout(ctx context.Context) error {
	_, backendErr := c.transport.FetchJSON(ctx, http.MethodPost, "/accounts/logout", nil)
	c.transport.SetToken("")

	if err := c.cache.Invalidate(ctx, cache.ScopeAll); err != nil {
		c.log.Warn("logout invalidation failed", zap.Error(err))
	}
	return backendErr
}

// Checkout places the order for the active cart. When the backend confirms
// success the product snapshot is invalidated, because stock levels changed
// server-side and the cached catalog is now provably stale.
func (c *Client) Checkout(ctx context.Context, addressID int64) (*models.Order, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPost, "/cart/checkout", map[string]int64{
		"address_id": addressID,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Order   *models.Order `json:"order"`
		Success *bool         `json:"success"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode checkout response: %w", err)
	}

	if resp.Order != nil || (resp.Success != nil && *resp.Success) {
		if err := c.cache.Invalidate(ctx, cache.ScopeProducts); err != nil {
			c.log.Warn("checkout invalidation failed", zap.Error(err))
		}
	}

	return resp.Order, nil
}

// GetCart returns the active cart.
func (c *Client) GetCart(ctx context.Context) (*models.Cart, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, "/cart/", nil)
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// AddToCart adds a product (optionally a specific variant) to the cart.
func (c *Client) AddToCart(ctx context.Context, productID int64, variantID *int64, quantity int) (*models.Cart, error) {
	payload := map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	}
	if variantID != nil {
		payload["variant_id"] = *variantID
	}

	raw, err := c.transport.FetchJSON(ctx, http.MethodPost, "/cart/add", payload)
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// UpdateCartItem changes the quantity of one cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*models.Cart, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPut, fmt.Sprintf("/cart/item/%d", itemID), map[string]int{
		"quantity": quantity,
	})
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// RemoveCartItem deletes one cart line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) (*models.Cart, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodDelete, fmt.Sprintf("/cart/item/%d", itemID), nil)
	if err != nil {
		return nil, err
	}
	return decodeCart(raw)
}

// ListOrders returns the signed-in user's order history.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, "/orders/", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode orders: %w", err)
	}
	return resp.Orders, nil
}

// GetOrder returns one of the user's orders.
func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// UpdateOrderStatus changes the status of one of the user's own orders; the
// backend only honours cancellation requests on this path.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/status", id), map[string]string{
		"status": status,
	})
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// ListAllOrders returns every order across all users. Admin only.
func (c *Client) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, "/orders/admin/allorders", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode orders: %w", err)
	}
	return resp.Orders, nil
}

// AdminGetOrder returns any user's order. Admin only.
func (c *Client) AdminGetOrder(ctx context.Context, id int64) (*models.Order, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/admin/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// AdminUpdateOrderStatus sets any order to any status. Admin only.
func (c *Client) AdminUpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPatch, fmt.Sprintf("/orders/admin/%d/status", id), map[string]string{
		"status": status,
	})
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// ListAddresses returns the user's address book.
func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, "/accounts/addresses", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Addresses []models.Address `json:"addresses"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode addresses: %w", err)
	}
	return resp.Addresses, nil
}

// CreatePayment starts payment processing for an order. The backend mocks
// the actual capture.
func (c *Client) CreatePayment(ctx context.Context, orderID int64) (json.RawMessage, error) {
	return c.transport.FetchJSON(ctx, http.MethodPost, fmt.Sprintf("/payments/create/%d", orderID), nil)
}

// ListUsers returns all users. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodGet, "/admin/users", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Users []models.UserProfile `json:"users"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode users: %w", err)
	}
	return resp.Users, nil
}

// Analytics returns the admin dashboard aggregates as raw JSON; the shape is
// owned by the backend.
func (c *Client) Analytics(ctx context.Context) (json.RawMessage, error) {
	return c.transport.FetchJSON(ctx, http.MethodGet, "/admin/analytics", nil)
}

// ListAllPayments returns every payment record with its order attached, as
// raw JSON; the gateway-specific fields are owned by the backend. Admin only.
func (c *Client) ListAllPayments(ctx context.Context) (json.RawMessage, error) {
	return c.transport.FetchJSON(ctx, http.MethodGet, "/payments/admin/all", nil)
}

// GetUserDetails returns the extended profile of any user, as raw JSON; this
// endpoint uses a wider shape than the signed-in profile. Admin only.
func (c *Client) GetUserDetails(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.transport.FetchJSON(ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d", id), nil)
}

// UpdateUser patches another user's account. Admin only.
func (c *Client) UpdateUser(ctx context.Context, id int64, fields map[string]any) (*models.UserProfile, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/users/%d", id), fields)
	if err != nil {
		return nil, err
	}

	var resp struct {
		User *models.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode user: %w", err)
	}
	return resp.User, nil
}

// DeleteUser removes a user account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.transport.FetchJSON(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil)
	return err
}

// CreateProduct creates a catalog product. Admin only. Catalog mutations do
// not touch the product snapshot; readers see the change once the freshness
// window lapses or a checkout forces a refetch.
func (c *Client) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPost, "/products/", product)
	if err != nil {
		return nil, err
	}
	return decodeProduct(raw)
}

// UpdateProduct updates a catalog product. Admin only; no snapshot
// invalidation, same as CreateProduct.
func (c *Client) UpdateProduct(ctx context.Context, id int64, product models.Product) (*models.Product, error) {
	raw, err := c.transport.FetchJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), product)
	if err != nil {
		return nil, err
	}
	return decodeProduct(raw)
}

// DeleteProduct removes a catalog product. Admin only; no snapshot
// invalidation.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	_, err := c.transport.FetchJSON(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil)
	return err
}

func decodeCart(raw json.RawMessage) (*models.Cart, error) {
	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("client: decode cart: %w", err)
	}
	return &cart, nil
}

func decodeOrder(raw json.RawMessage) (*models.Order, error) {
	var resp struct {
		Order *models.Order `json:"order"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode order: %w", err)
	}
	return resp.Order, nil
}

func decodeProduct(raw json.RawMessage) (*models.Product, error) {
	var resp struct {
		Product *models.Product `json:"product"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("client: decode product: %w", err)
	}
	return resp.Product, nil
}
