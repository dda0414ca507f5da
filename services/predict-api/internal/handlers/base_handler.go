package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
	ic     *artifacts.InferenceContext
}

func NewBaseHandler(logger *zap.Logger, ic *artifacts.InferenceContext) *BaseHandler {
	return &BaseHandler{logger: logger, ic: ic}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
	r.GET("/ready", b.GetReady)
}

// GetHealth answers even when the model failed to load; the body says which.
func (b *BaseHandler) GetHealth(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"model":  b.ic.State(),
	}
	if v := b.ic.ModelVersion(); v != "" {
		body["model_version"] = v
	}
	if err := b.ic.Err(); err != nil {
		body["detail"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (b *BaseHandler) GetReady(c *gin.Context) {
	if !b.ic.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "model": b.ic.State()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "model": b.ic.State()})
}
