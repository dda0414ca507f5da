package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/utils"
)

// TraceID returns Gin middleware that reuses the caller's X-Trace-Id or mints one,
// stores it on the context and echoes it on the response.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.Request.Header.Get(pkg.HeaderTraceId)
		if utils.IsEmpty(traceID) {
			traceID = uuid.New().String()
		}
		c.Set(pkg.TraceId, traceID)
		c.Writer.Header().Set(pkg.HeaderTraceId, traceID)
		c.Next()
	}
}
