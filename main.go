// Package main provides the main entry point for the PriceCast competitor price prediction service
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pricecast/pricecast/app/handlers"
	"github.com/pricecast/pricecast/app/router"
	businessflow "github.com/pricecast/pricecast/business_flow"
	"github.com/pricecast/pricecast/config"
	_ "github.com/pricecast/pricecast/docs"
	"github.com/pricecast/pricecast/logging"
	"github.com/pricecast/pricecast/mlmodel"
	"github.com/pricecast/pricecast/models"
	"github.com/pricecast/pricecast/refdata"
	"github.com/pricecast/pricecast/repository"
)

// @title PriceCast API
// @version 1.0
// @description Competitor price prediction and tracking API

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure the global logger before anything else logs
	if err := logging.Setup(cfg.Logging); err != nil {
		stdlog.Fatalf("Failed to configure logging: %v", err)
	}

	log.Info().Str("version", cfg.Deployment.Version).Str("environment", cfg.Deployment.Environment).Msg("Starting PriceCast application...")

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Info().Str("address", address).Msg("Server starting")

		if err := app.server.Listen(address); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}

	log.Info().Msg("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	}

	// TranslateError folds driver-specific unique-key violations into
	// gorm.ErrDuplicatedKey, which the repository layer relies on
	gormConfig := &gorm.Config{TranslateError: true}
	if cfg.SlowQueryLog {
		gormConfig.Logger = gormlogger.New(
			stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             cfg.SlowQueryTime,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.PredictionPrice{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("Database connection established")

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("url", cfg.RedisURL).Int("db", cfg.RedisDB).Msg("Redis connection established")
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Warn().Err(err).Msg("Redis healthcheck failed")
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeReferenceData loads the CSV tables the feature builder reads
func initializeReferenceData(cfg config.RefDataConfig) (*refdata.Tables, error) {
	tables, err := refdata.Load(cfg.SalesCSV, cfg.PricesCSV, cfg.CampaignsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	log.Info().
		Int("sales_rows", tables.NumSales()).
		Int("price_rows", tables.NumPrices()).
		Int("campaign_rows", tables.NumCampaigns()).
		Msg("Reference data loaded")

	return tables, nil
}

// initializeModelRegistry loads the per-competitor regression artifacts.
// A competitor whose artifact is missing or malformed stays unavailable;
// the service still starts so the remaining competitors can be served.
func initializeModelRegistry(cfg config.ModelsConfig) *mlmodel.Registry {
	registry := mlmodel.LoadAll(cfg.Dir, cfg.Competitors)

	for _, competitor := range registry.Competitors() {
		log.Info().Str("competitor", competitor).Msg("Model loaded")
	}
	for _, failure := range registry.Failures() {
		log.Warn().Str("competitor", failure.Competitor).Err(failure.Err).Msg("Model failed to load")
	}
	if registry.Len() == 0 {
		log.Warn().Str("dir", cfg.Dir).Msg("No models loaded; forecasts will fail until artifacts are provided")
	}

	return registry
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Load reference data and model artifacts
	tables, err := initializeReferenceData(cfg.RefData)
	if err != nil {
		return nil, err
	}
	registry := initializeModelRegistry(cfg.Models)

	// Initialize repositories
	predictionRepo := repository.NewPredictionPriceRepository(db)

	// Initialize flows
	predictionFlow := businessflow.NewPredictionFlow(
		predictionRepo,
		tables,
		registry,
		cfg.Models.Competitors,
		db,
		rc,
		&cfg.Cache,
	)

	// Initialize handlers
	predictionHandler := handlers.NewPredictionHandler(predictionFlow, registry)

	// Initialize router
	appRouter := router.NewFiberRouter(predictionHandler, cfg)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
