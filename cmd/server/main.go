// Package main is the entry point for the venuedesk API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuedesk/internal/config"
	"venuedesk/internal/domain/auth"
	"venuedesk/internal/domain/tariff"
	"venuedesk/internal/infrastructure/cache"
	v1 "venuedesk/internal/infrastructure/http/v1"
	"venuedesk/internal/infrastructure/objectstore"
	"venuedesk/internal/infrastructure/storage/postgres"
	"venuedesk/internal/infrastructure/storage/postgres/auth_repo"
	"venuedesk/pkg/logger"
)

// idempotencyTTL is how long a finished request can be replayed.
const idempotencyTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Printf("configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting venuedesk server", "timezone", cfg.Location.String())

	if err := cfg.FixedServices.Validate(); err != nil {
		log.Fatalw("invalid fixed services", "error", err)
	}

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Holiday calendar ---
	calendar := cache.NewHolidayCalendar(pool.Pool, cfg.Location)
	if err := calendar.Start(ctx); err != nil {
		log.Fatalw("failed to load holiday calendar", "error", err)
	}
	defer calendar.Stop()

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.JWTAccessTTL
	jwtService := auth.NewJWTService(jwtConfig)

	authConfig := auth.DefaultServiceConfig()
	authConfig.RefreshTokenExpiry = cfg.JWTRefreshTTL
	authService := auth.NewService(
		auth_repo.NewStaffRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		authConfig,
	)

	// --- Report archive ---
	archiver, err := objectstore.New(objectstore.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		log.Fatalw("failed to configure report archive", "error", err)
	}
	if !cfg.S3.Enabled() {
		log.Info("report archive disabled")
	}

	// --- Router ---
	router, err := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		TxManager:       txManager,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		Location:        cfg.Location,
		TaxRate:         cfg.TaxRate,
		RoomSet:         cfg.RoomSet,
		FixedServices:   cfg.FixedServices,
		BusinessHours:   tariff.DefaultBusinessHours(cfg.Location),
		HolidayCalendar: calendar,
		Archiver:        archiver,
		IdempotencyTTL:  idempotencyTTL,
		Debug:           cfg.LogDevelopment,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.ServerAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
