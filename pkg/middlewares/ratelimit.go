package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"go.uber.org/zap"
)

// Limiter decides whether one more request may proceed.
type Limiter interface {
	Allow(ctx context.Context) bool
}

// RateLimit rejects requests with 429 once the limiter is exhausted.
func RateLimit(logger *zap.Logger, limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limiter.Allow(c.Request.Context()) {
			c.Next()
			return
		}
		traceID := c.GetString(pkg.TraceId)
		resp := pkg.ToErrorResponse(logger, traceID,
			pkg.NewAppError(pkg.ErrRateLimitedCode, pkg.ErrRateLimitedCode.Message, pkg.ErrRateLimitExceeded))
		c.AbortWithStatusJSON(resp.Status, resp)
	}
}
