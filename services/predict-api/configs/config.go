package configs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port            string        `mapstructure:"PORT" validate:"required"`
	ModelPath       string        `mapstructure:"MODEL_PATH" validate:"required"`
	EncodersPath    string        `mapstructure:"ENCODERS_PATH" validate:"required"`
	MaxUploadBytes  int64         `mapstructure:"MAX_UPLOAD_BYTES" validate:"min=1"`
	ReadTimeout     time.Duration `mapstructure:"READ_TIMEOUT" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"WRITE_TIMEOUT" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"min=0"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"` // empty: limiter stays local
	RateLimitPerSec int           `mapstructure:"RATE_LIMIT_PER_SEC" validate:"min=0"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST" validate:"min=0"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW" validate:"min=0"`
	ScorerChunkSize int           `mapstructure:"SCORER_CHUNK_SIZE" validate:"min=1"`
}

func Load(logger *zap.Logger) (*Config, error) {
	// a local .env is optional; real env vars win over it
	_ = godotenv.Load()

	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MODEL_PATH", "model.json")
	viper.SetDefault("ENCODERS_PATH", "encoders.json")
	viper.SetDefault("MAX_UPLOAD_BYTES", 32<<20)
	viper.SetDefault("READ_TIMEOUT", "30s")
	viper.SetDefault("WRITE_TIMEOUT", "60s")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_PER_SEC", 0)
	viper.SetDefault("RATE_LIMIT_BURST", 0)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1s")
	viper.SetDefault("SCORER_CHUNK_SIZE", 4096)

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/predict-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
