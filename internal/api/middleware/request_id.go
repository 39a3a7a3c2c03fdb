package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"okulpazar/backend/pkg/response"
)

const (
	requestIDKey = response.RequestIDKey
	// longer inbound ids are replaced to keep them out of log lines
	requestIDMaxLen = 64
)

// RequestID propagates X-Request-ID, generating a UUID when absent
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
