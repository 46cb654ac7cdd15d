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

// AccountHandler serves profile, session, and admin user endpoints.
type AccountHandler struct {
	client *client.Client
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(c *client.Client) (*AccountHandler, error) {
	if c == nil {
		return nil, errors.New("account handler: client is required")
	}
	return &AccountHandler{client: c}, nil
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Login authenticates against the backend.
func (h *AccountHandler) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid login payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	user, err := h.client.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Register creates a new account.
func (h *AccountHandler) Register(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid registration payload"))
		return
	}
	if err := validator.ValidateStruct(payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	user, err := h.client.Register(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Logout signs out and evicts all local caches.
func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.client.Logout(c.Request.Context()); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// Me returns the signed-in user's profile, cached when fresh.
func (h *AccountHandler) Me(c *gin.Context) {
	if h.client.Transport().TokenExpired() {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.client.GetCurrentUser(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Addresses returns the user's address book.
func (h *AccountHandler) Addresses(c *gin.Context) {
	addresses, err := h.client.ListAddresses(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"addresses": addresses})
}

// ListUsers returns all users. Admin only.
func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.client.ListUsers(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// GetUser returns the extended profile of any user. Admin only.
func (h *AccountHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid user id"))
		return
	}

	details, err := h.client.GetUserDetails(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, details)
}

// UpdateUser patches a user account. Admin only.
func (h *AccountHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid user id"))
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid user payload"))
		return
	}

	user, err := h.client.UpdateUser(c.Request.Context(), id, fields)
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes a user account. Admin only.
func (h *AccountHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, apperrors.NewBadRequest("invalid user id"))
		return
	}

	if err := h.client.DeleteUser(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// Analytics returns dashboard aggregates. Admin only.
func (h *AccountHandler) Analytics(c *gin.Context) {
	analytics, err := h.client.Analytics(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, analytics)
}
