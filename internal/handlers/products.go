package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quickshop/storefront/internal/client"
	"github.com/quickshop/storefront/internal/models"
	apperrors "github.com/quickshop/storefront/pkg/errors"
	"github.com/quickshop/storefront/pkg/response"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	client *client.Client
}

// NewProductHandler constructs the handler.
func NewProductHandler(c *client.Client) (*ProductHandler, error) {
	if c == nil {
		return nil, errors.New("product handler: client is required")
	}
	return &ProductHandler{client: c}, nil
}

// List returns the full catalog.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.client.GetProducts(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"products": products})
}

// Get returns a single product.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid product id"))
		return
	}

	product, err := h.client.GetProduct(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": product})
}

// Create creates a product. Admin only.
func (h *ProductHandler) Create(c *gin.Context) {
	var payload models.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid product payload"))
		return
	}

	product, err := h.client.CreateProduct(c.Request.Context(), payload)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"product": product})
}

// Update updates a product. Admin only.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid product id"))
		return
	}

	var payload models.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid product payload"))
		return
	}

	product, err := h.client.UpdateProduct(c.Request.Context(), id, payload)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": product})
}

// Delete removes a product. Admin only.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid product id"))
		return
	}

	if err := h.client.DeleteProduct(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
