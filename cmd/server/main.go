package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dividendapp "github.com/coopfleet/backend/internal/application/dividend"
	"github.com/coopfleet/backend/internal/domain/dividend"
	"github.com/coopfleet/backend/internal/infrastructure/cache"
	"github.com/coopfleet/backend/internal/infrastructure/config"
	"github.com/coopfleet/backend/internal/infrastructure/logger"
	"github.com/coopfleet/backend/internal/infrastructure/persistence"
	"github.com/coopfleet/backend/internal/interfaces/http/handler"
	"github.com/coopfleet/backend/internal/interfaces/http/middleware"
	"github.com/coopfleet/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CoopFleet Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	distributionRepo := persistence.NewGormDistributionRepository(db.DB)
	recordRepo := persistence.NewGormDividendRecordRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	settingsRepo := persistence.NewGormTenantSettingsRepository(db.DB)

	// Patronage sources, one per member type
	sources := dividend.NewPatronageSources(
		persistence.NewCustomerPatronageSource(db.DB),
		persistence.NewDriverPatronageSource(db.DB),
	)

	// Surplus calculation over the ledger
	ledgerAdapter := persistence.NewLedgerAdapter(ledgerRepo, settingsRepo)
	calculator := dividend.NewSurplusCalculator(ledgerAdapter, ledgerAdapter)

	// Idempotency store (Redis when enabled, in-memory otherwise)
	idempotencyStore := cache.NewIdempotencyStore(cfg.Redis, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Application services
	distributionConfig := dividendapp.DistributionConfig{
		ComputeTimeout: cfg.Dividend.ComputeTimeout,
		MaxRetries:     cfg.Dividend.RetryAttempts,
		RetryBaseDelay: cfg.Dividend.RetryBaseDelay,
		IdempotencyTTL: cfg.Dividend.IdempotencyTTL,
	}
	distributionService := dividendapp.NewDistributionService(
		distributionRepo, sources, calculator, idempotencyStore, distributionConfig, log)
	paymentService := dividendapp.NewPaymentService(recordRepo, log)
	queryService := dividendapp.NewQueryService(recordRepo, log)

	// HTTP handlers
	dividendHandler := handler.NewDividendHandler(distributionService, paymentService, queryService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(dividendHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
