package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/litihq/liti-server/internal/common"
)

const RequestIDKey = "request_id"

// RequestID tags every request with a ULID, honoring one supplied by a
// proxy in X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			if id, err := common.NewULID(); err == nil {
				rid = id
			}
		}
		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}
