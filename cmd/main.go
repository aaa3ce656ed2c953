/**
 * @description
 * This is the main entry point for the engagement-service. It initializes
 * and wires together all the components of the application: configuration,
 * database pool, optional Redis snapshot cache, optional RabbitMQ activity
 * producer, the application services, and the HTTP router. The store client
 * is constructed here with an explicit lifecycle — opened at startup, closed
 * at shutdown — rather than hidden behind a package-level singleton.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nutrivibes/engagement-service/internal/api"
	"github.com/nutrivibes/engagement-service/internal/app"
	"github.com/nutrivibes/engagement-service/internal/config"
	"github.com/nutrivibes/engagement-service/internal/store"
	"github.com/nutrivibes/engagement-service/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env in local development; in deployed environments the variables
	// come from the runtime.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish connection to the PostgreSQL database with connection pool configuration
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	// Use simple protocol so the service works behind PgBouncer transaction
	// pooling without statement cache errors (SQLSTATE 42P05).
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Optional Redis snapshot cache for the dashboard.
	var cache app.StatsCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("unable to parse redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		cache = store.NewDashboardCache(redisClient, "engagement:dashboard", cfg.DashboardCacheTTL())
		logger.Info("dashboard cache enabled", "ttl", cfg.DashboardCacheTTL())
	}

	// Optional activity-feed producer. Falls back to logging when the broker
	// is unreachable so engagement mutations never block on it.
	var producer rabbitmq.Producer = &rabbitmq.FallbackProducer{Logger: logger}
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, using fallback producer", "error", err)
		} else {
			producer = p
		}
	}
	defer producer.Close()

	// Initialize application layers
	repository := store.NewPostgresRepository(dbpool)
	classifier := app.NewClassifier(repository, loc)
	scheduler := app.NewFollowUpScheduler(repository, producer, logger, loc)
	ledger := app.NewLedger(repository, producer, logger, loc)
	roster := app.NewRoster(repository, scheduler, logger, loc)
	dashboard := app.NewDashboard(repository, classifier, cache, logger, loc)
	handler := api.NewHandler(roster, ledger, dashboard, logger)
	router := api.NewRouter(handler, cfg.JWTSecret)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
