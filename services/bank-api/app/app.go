package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/arturomz/bank-records-go/pkg"
	"github.com/arturomz/bank-records-go/pkg/cache"
	"github.com/arturomz/bank-records-go/pkg/database"
	"github.com/arturomz/bank-records-go/pkg/geocode"
	middleware "github.com/arturomz/bank-records-go/pkg/middlewares"
	"github.com/arturomz/bank-records-go/pkg/repositories"
	"github.com/arturomz/bank-records-go/pkg/utils"
	"github.com/arturomz/bank-records-go/services/bank-api/configs"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/handlers"
	"github.com/arturomz/bank-records-go/services/bank-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	// Load config
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN:  cfg.PrimaryDbAddr,
		ReplicaDSNs: []string{cfg.ReplicaDbAddr},
		MaxConns:    cfg.MaxDbCons,
		MinConns:    cfg.MinDbCons,
	}
	db, disconnect, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations on primary
	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnect()
		return nil, nil, err
	}

	// Optional Redis: geocode cache + distributed rate limiting
	var redisClient *redis.Client
	closeRedis := func() {}
	if !utils.IsEmpty(cfg.RedisAddr) {
		redisClient, closeRedis, err = cache.New(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDb,
		})
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		logger.Info("Redis connection established")
	}

	geocoder := geocode.NewClient(geocode.Config{
		Logger:      logger,
		BaseURL:     cfg.GeocoderBaseURL,
		UserAgent:   cfg.GeocoderUserAgent,
		Timeout:     time.Duration(cfg.GeocoderTimeoutMs) * time.Millisecond,
		MaxRetries:  cfg.GeocoderMaxRetries,
		RedisClient: redisClient,
		CacheTTL:    time.Duration(cfg.GeocodeCacheTTLMin) * time.Minute,
	})

	transferLimiter := pkg.NewDistributedLimiter(redisClient, "global:transfer_rate",
		cfg.TransferRateLimit, cfg.TransferRateBurst, time.Minute, logger)

	// Setup dependencies
	userRepo := repositories.NewUserRepository()
	accountRepo := repositories.NewAccountRepository()
	accountTypeRepo := repositories.NewAccountTypeRepository()

	userService := services.NewUserService(logger, db, userRepo, geocoder)
	accountService := services.NewAccountService(logger, db, accountRepo, accountTypeRepo)
	transferService := services.NewTransferService(logger, db, accountRepo)

	baseHandler := handlers.NewBaseHandler(logger)
	userHandler := handlers.NewUserHandler(logger, userService)
	accountHandler := handlers.NewAccountHandler(logger, accountService, transferService, transferLimiter)

	// Router
	r := gin.Default()

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())

	userHandler.RegisterRoutes(api)
	accountHandler.RegisterRoutes(api)
	baseHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		closeRedis()
		disconnect()
	}

	return srv, cleanup, nil
}
