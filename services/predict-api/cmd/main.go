package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/app"
	"go.uber.org/zap"
)

// @title       UPI Fraud Detection API
// @version     1.0
// @description Scores UPI transactions for fraud, one at a time or as a CSV batch.
// @BasePath    /api/v1
func main() {
	// Initialize logger
	pkg.InitLogger()
	logger := pkg.Logger

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	srv, cfg, cleanup, err := app.NewApp(ctx, logger)
	if err != nil {
		logger.Fatal("failed to start predict-api", zap.Error(err))
	}

	// Start a server in goroutine to allow signal handling
	go func() {
		logger.Info("predict API started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Handle shutdown signals (SIGINT, SIGTERM) for a K8s pod termination grace period
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	cleanup()

	_ = logger.Sync()
}
