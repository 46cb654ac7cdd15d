package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/quickshop/storefront/pkg/errors"
	"github.com/quickshop/storefront/pkg/logger"
	"github.com/quickshop/storefront/pkg/response"
)

// Recovery converts panics into the standard 500 envelope. The panic value
// stays in the log; clients only see the generic message.
func Recovery() gin.HandlerFunc {
	log := logger.WithModule("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", RequestID(c)),
					zap.Any("panic", r),
				)
				response.Error(c, apperrors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}
