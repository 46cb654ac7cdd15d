package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickshop/storefront/internal/client"
	apperrors "github.com/quickshop/storefront/pkg/errors"
	"github.com/quickshop/storefront/pkg/response"
	"github.com/quickshop/storefront/pkg/validator"
)

// CartHandler serves the cart and checkout endpoints.
type CartHandler struct {
	client *client.Client
}

// NewCartHandler constructs the handler.
func NewCartHandler(c *client.Client) (*CartHandler, error) {
	if c == nil {
		return nil, errors.New("cart handler: client is required")
	}
	return &CartHandler{client: c}, nil
}

// Get returns the active cart.
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.client.GetCart(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

type addToCartPayload struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	VariantID *int64 `json:"variant_id" validate:"omitempty,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=99"`
}

// Add adds a product to the cart.
func (h *CartHandler) Add(c *gin.Context) {
	var payload addToCartPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid cart payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	cart, err := h.client.AddToCart(c.Request.Context(), payload.ProductID, payload.VariantID, payload.Quantity)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

type updateItemPayload struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=99"`
}

// UpdateItem changes the quantity of a cart line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid cart item id"))
		return
	}

	var payload updateItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid cart payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	cart, err := h.client.UpdateCartItem(c.Request.Context(), id, payload.Quantity)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// RemoveItem deletes a cart line.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid cart item id"))
		return
	}

	cart, err := h.client.RemoveCartItem(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

type checkoutPayload struct {
	AddressID int64 `json:"address_id" validate:"required,gt=0"`
}

// Checkout places the order for the active cart.
func (h *CartHandler) Checkout(c *gin.Context) {
	var payload checkoutPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid checkout payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	order, err := h.client.Checkout(c.Request.Context(), payload.AddressID)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": order})
}
