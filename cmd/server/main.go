package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"matchday/backend/internal/cache"
	"matchday/backend/internal/client"
	"matchday/backend/internal/config"
	"matchday/backend/internal/dispatcher"
	"matchday/backend/internal/metrics"
	"matchday/backend/internal/repository"
	"matchday/backend/internal/scheduler"
	"matchday/backend/internal/server"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting Matchday backend")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Bool("invite_only", cfg.InviteOnly).
		Int("admins", len(cfg.AdminUserIDs)).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize provider client
	apiClient := client.NewClient(client.Config{
		APIKey:            cfg.SportsAPIKey,
		FootballBaseURL:   cfg.FootballBaseURL,
		TennisBaseURL:     cfg.TennisBaseURL,
		BasketballBaseURL: cfg.BasketballBaseURL,
		Timeout:           cfg.SportsAPITimeout,
		RateLimit:         cfg.APIRateLimit,
		BurstLimit:        cfg.APIBurstLimit,
	})
	log.Info().Msg("Sports data client initialized")

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database schema")
	}

	// Initialize Redis accuracy cache
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      time.Duration(cfg.CacheTTLAccuracy) * time.Second,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Start metrics HTTP server
	go startMetricsServer(strconv.Itoa(cfg.MetricsPort))

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start the reconciliation scheduler
	sched := scheduler.NewScheduler(cfg, apiClient, db)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting reconciliation scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Build and serve the command API
	d := dispatcher.NewDispatcher(apiClient)
	srv := server.NewServer(cfg, d, db, redisCache)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	if cfg.EnableScheduler {
		sched.Stop()
	}

	log.Info().Msg("Shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
