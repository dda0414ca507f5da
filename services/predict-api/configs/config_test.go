package configs

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	viper.Reset()
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_MODEL_PATH", "/srv/model.json")
	t.Setenv("APP_RATE_LIMIT_PER_SEC", "50")
	t.Setenv("APP_RATE_LIMIT_WINDOW", "2s")

	cfg, err := Load(zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/srv/model.json", cfg.ModelPath)
	assert.Equal(t, "encoders.json", cfg.EncodersPath)
	assert.Equal(t, 50, cfg.RateLimitPerSec)
	assert.Equal(t, 2*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	viper.Reset()
	t.Setenv("APP_SCORER_CHUNK_SIZE", "0")

	_, err := Load(zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCORER_CHUNK_SIZE")
}
