package pkg

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DistributedLimiter combines a local rate.Limiter with an optional Redis window
// counter shared by every replica.
type DistributedLimiter struct {
	localLimiter *rate.Limiter
	redisClient  *redis.Client // nil: local only
	key          string        // e.g: "upi_fraud:rate"
	window       time.Duration // length of the shared counting window
	windowLimit  int64
	logger       *zap.Logger
}

// NewDistributedLimiter creates a limiter; if globalRate=0, it's unlimited.
func NewDistributedLimiter(redisClient *redis.Client, key string, globalRate, burst int, window time.Duration, logger *zap.Logger) *DistributedLimiter {
	var local *rate.Limiter
	var windowLimit int64
	if globalRate > 0 {
		if burst <= 0 {
			burst = globalRate
		}
		if window <= 0 {
			window = time.Second
		}
		local = rate.NewLimiter(rate.Limit(globalRate), burst)
		windowLimit = max(int64(float64(globalRate)*window.Seconds()), int64(burst))
	}
	return &DistributedLimiter{
		localLimiter: local,
		redisClient:  redisClient,
		key:          key,
		window:       window,
		windowLimit:  windowLimit,
		logger:       logger,
	}
}

// Allow checks if a token is available; uses Redis for distributed increment.
func (d *DistributedLimiter) Allow(ctx context.Context) bool {
	if d.localLimiter == nil {
		return true // Unlimited
	}

	// Local check first (fast path)
	if !d.localLimiter.Allow() {
		return false
	}
	if d.redisClient == nil {
		return true
	}

	// the first increment of a window starts its expiry; later ones leave it alone
	pipe := d.redisClient.Pipeline()
	incr := pipe.Incr(ctx, d.key)
	pipe.ExpireNX(ctx, d.key, d.window)
	if _, err := pipe.Exec(ctx); err != nil {
		d.logger.Error("redis rate limit error; falling back to local", zap.Error(err))
		return true
	}

	if count := incr.Val(); count > d.windowLimit {
		d.logger.Warn("global rate limit exceeded", zap.Int64("count", count), zap.Int64("limit", d.windowLimit))
		return false
	}
	return true
}
