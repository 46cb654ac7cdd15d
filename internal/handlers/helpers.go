package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quickshop/storefront/internal/client"
	"github.com/quickshop/storefront/pkg/response"
)

// renderError maps client failures to the local response envelope. Backend
// errors keep their original status and body so the UI sees exactly what the
// backend said.
func renderError(c *gin.Context, err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		var body any
		if len(apiErr.Body) > 0 && json.Valid(apiErr.Body) {
			body = json.RawMessage(apiErr.Body)
		}
		c.JSON(apiErr.Status, gin.H{"success": false, "error": body})
		return
	}

	response.Error(c, err)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
