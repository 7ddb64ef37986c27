package configs

import (
	"github.com/arturomz/bank-records-go/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port          string `mapstructure:"PORT" validate:"required"`
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReplicaDbAddr string `mapstructure:"REPLICA_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	// Optional Redis; geocode cache and global rate limiting degrade
	// gracefully when unset.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDb       int    `mapstructure:"REDIS_DB"`

	GeocoderBaseURL    string `mapstructure:"GEOCODER_BASE_URL" validate:"required"`
	GeocoderUserAgent  string `mapstructure:"GEOCODER_USER_AGENT" validate:"required"`
	GeocoderTimeoutMs  int    `mapstructure:"GEOCODER_TIMEOUT_MS" validate:"min=1"`
	GeocoderMaxRetries uint64 `mapstructure:"GEOCODER_MAX_RETRIES"`
	GeocodeCacheTTLMin int    `mapstructure:"GEOCODE_CACHE_TTL_MIN" validate:"min=1"`

	// Transfers per second across the deployment; 0 disables limiting.
	TransferRateLimit int `mapstructure:"TRANSFER_RATE_LIMIT"`
	TransferRateBurst int `mapstructure:"TRANSFER_RATE_BURST" validate:"min=1"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("GEOCODER_USER_AGENT", "user_address_locator")
	viper.SetDefault("GEOCODER_TIMEOUT_MS", "2000")
	viper.SetDefault("GEOCODER_MAX_RETRIES", "2")
	viper.SetDefault("GEOCODE_CACHE_TTL_MIN", "1440")
	viper.SetDefault("TRANSFER_RATE_LIMIT", "0")
	viper.SetDefault("TRANSFER_RATE_BURST", "20")

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
	viper.AddConfigPath("./services/bank-api/configs")
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
