package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gocomet/fleet-rides/internal/api/handlers"
	"github.com/gocomet/fleet-rides/internal/api/middleware"
	"github.com/gocomet/fleet-rides/internal/api/routes"
	"github.com/gocomet/fleet-rides/internal/config"
	"github.com/gocomet/fleet-rides/internal/service/approval"
	"github.com/gocomet/fleet-rides/internal/service/assignment"
	"github.com/gocomet/fleet-rides/internal/service/lifecycle"
	"github.com/gocomet/fleet-rides/internal/service/location"
	"github.com/gocomet/fleet-rides/internal/service/notify"
	"github.com/gocomet/fleet-rides/internal/service/rating"
	"github.com/gocomet/fleet-rides/internal/service/readside"
	"github.com/gocomet/fleet-rides/internal/storage"
	"github.com/gocomet/fleet-rides/internal/storage/memory"
	"github.com/gocomet/fleet-rides/internal/storage/postgres"
	"github.com/gocomet/fleet-rides/pkg/cache"
	"github.com/gocomet/fleet-rides/pkg/database"
	"github.com/gocomet/fleet-rides/pkg/logger"
	"github.com/gocomet/fleet-rides/pkg/monitoring"
	"github.com/gocomet/fleet-rides/pkg/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Fleet Rides",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
		logger.String("storage", cfg.Storage.Backend),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp, _ = monitoring.New(monitoring.Config{})
	}
	if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized", logger.String("app_name", cfg.NewRelic.AppName))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	// Initialize Redis. The read side degrades gracefully without it, but by
	// default it is required like in any deployment with the cache enabled.
	var redisClient *redis.Client
	redisClient, err = cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		if cfg.Storage.Backend == "memory" {
			appLogger.Warn("Redis unavailable, running without view cache and geo index", logger.Err(err))
			redisClient = nil
		} else {
			appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
		}
	}
	defer cache.Close(redisClient)

	// Initialize the store
	var store storage.Store
	switch cfg.Storage.Backend {
	case "memory":
		store = memory.New()
		appLogger.Info("Using in-memory store")
	default:
		db, err := database.NewPostgresDB(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.MaxConnections,
			MaxIdle:  cfg.Database.MaxIdleConns,
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			cancel()
			appLogger.Fatal("Failed to ensure schema", logger.Err(err))
		}
		cancel()
		store = postgres.New(db)
		appLogger.Info("Connected to PostgreSQL")
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run()

	// Wire the services
	notifier := notify.NewService(store, wsHub, appLogger)
	svc := lifecycle.NewService(
		store,
		approval.NewResolver(store.Users()),
		assignment.NewManager(appLogger),
		rating.NewAggregator(store),
		notifier,
		location.NewHaversineProvider(),
		nrApp,
		appLogger,
		cfg.Server.OperationTimeout,
	)
	views := readside.NewService(store, redisClient, appLogger, cfg.Cache.TTLRideView, cfg.Cache.TTLFleetOverview)
	tracker := location.NewTracker(redisClient, store, appLogger)
	auth := middleware.NewAuth(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Outbox dispatcher pushes committed notifications to connected clients.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	go notifier.Run(dispatchCtx, cfg.Outbox.FlushInterval, cfg.Outbox.BatchSize)

	h := handlers.NewHandlers(svc, views, tracker, notifier, store, auth, wsHub, appLogger)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	routes.SetupRoutes(router, h, nrApp.Application)
	appLogger.Info("Routes configured")

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", logger.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down")

	stopDispatch()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", logger.Err(err))
	}
	appLogger.Info("Server stopped")
}
