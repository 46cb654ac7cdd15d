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

// OrderHandler serves the order history endpoints.
type OrderHandler struct {
	client *client.Client
}

// NewOrderHandler constructs the handler.
func NewOrderHandler(c *client.Client) (*OrderHandler, error) {
	if c == nil {
		return nil, errors.New("order handler: client is required")
	}
	return &OrderHandler{client: c}, nil
}

// List returns the signed-in user's orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.client.ListOrders(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"orders": orders})
}

// Get returns one order.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid order id"))
		return
	}

	order, err := h.client.GetOrder(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": order})
}

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus changes the status of one of the user's own orders.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid order id"))
		return
	}

	var payload orderStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid status payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	order, err := h.client.UpdateOrderStatus(c.Request.Context(), id, payload.Status)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": order})
}

// ListAll returns every order across all users. Admin only.
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.client.ListAllOrders(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"orders": orders})
}

// AdminGet returns any user's order. Admin only.
func (h *OrderHandler) AdminGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid order id"))
		return
	}

	order, err := h.client.AdminGetOrder(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": order})
}

// AdminUpdateStatus sets any order to any status. Admin only.
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid order id"))
		return
	}

	var payload orderStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid status payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	order, err := h.client.AdminUpdateOrderStatus(c.Request.Context(), id, payload.Status)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": order})
}

// ListPayments returns all payment records. Admin only.
func (h *OrderHandler) ListPayments(c *gin.Context) {
	payments, err := h.client.ListAllPayments(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, payments)
}

// Pay starts payment processing for an order.
func (h *OrderHandler) Pay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid order id"))
		return
	}

	result, err := h.client.CreatePayment(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
