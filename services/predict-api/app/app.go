package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/cache"
	middleware "github.com/nimeshabuddhika/upi-fraud-detection/pkg/middlewares"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/scoring"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/configs"
	_ "github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/docs"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/handlers"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/observability"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const rateLimitKey = "upi_fraud:predict_rate"

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load. Missing model
// artifacts do not fail startup; the server comes up with prediction routes answering 503.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, *configs.Config, func(), error) {
	// Load config
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, nil, err
	}

	// Load model and encoders once; shared read-only by every request
	ic := artifacts.Load(logger, artifacts.Paths{Model: cfg.ModelPath, Encoders: cfg.EncodersPath},
		scoring.WithChunkSize(cfg.ScorerChunkSize))
	if ic.Ready() {
		observability.ModelReady.Set(1)
	} else {
		observability.ModelReady.Set(0)
	}

	cleanup := func() {}
	limiter := pkg.NewDistributedLimiter(nil, rateLimitKey, cfg.RateLimitPerSec, cfg.RateLimitBurst, cfg.RateLimitWindow, logger)
	if cfg.RedisAddr != "" && cfg.RateLimitPerSec > 0 {
		client, closer, err := cache.New(ctx, logger, cache.Config{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("redis unavailable, rate limit enforced per instance only",
				zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			limiter = pkg.NewDistributedLimiter(client, rateLimitKey, cfg.RateLimitPerSec, cfg.RateLimitBurst, cfg.RateLimitWindow, logger)
			cleanup = closer
		}
	}

	r := NewRouter(logger, cfg, ic, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return srv, cfg, cleanup, nil
}

// NewRouter registers every route on a fresh engine.
func NewRouter(logger *zap.Logger, cfg *configs.Config, ic *artifacts.InferenceContext, limiter middleware.Limiter) *gin.Engine {
	baseHandler := handlers.NewBaseHandler(logger, ic)
	predictionHandler := handlers.NewPredictionHandler(logger,
		services.NewPredictionService(logger, ic),
		services.NewBatchService(logger, ic),
		cfg.MaxUploadBytes)

	r := gin.Default()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())
	api.Use(middleware.RateLimit(logger, limiter))
	predictionHandler.RegisterRoutes(api)

	// unversioned paths used by the existing web frontend
	legacy := r.Group("")
	legacy.Use(middleware.TraceID())
	legacy.Use(middleware.Metrics())
	legacy.Use(middleware.RateLimit(logger, limiter))
	predictionHandler.RegisterRoutes(legacy)

	baseHandler.RegisterRoutes(r)
	return r
}
