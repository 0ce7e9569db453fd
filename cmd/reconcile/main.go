package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"matchday/backend/internal/client"
	"matchday/backend/internal/config"
	"matchday/backend/internal/repository"
	"matchday/backend/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// One-shot reconciliation pass. Useful for backfilling after downtime or
// verifying ledger resolution without waiting for the scheduler.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})

	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

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

	apiClient := client.NewClient(client.Config{
		APIKey:            cfg.SportsAPIKey,
		FootballBaseURL:   cfg.FootballBaseURL,
		TennisBaseURL:     cfg.TennisBaseURL,
		BasketballBaseURL: cfg.BasketballBaseURL,
		Timeout:           cfg.SportsAPITimeout,
		RateLimit:         cfg.APIRateLimit,
		BurstLimit:        cfg.APIBurstLimit,
	})

	sum, err := scheduler.RunPass(ctx, apiClient, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Reconciliation pass failed")
	}

	log.Info().
		Str("run_id", sum.RunID).
		Int("open", sum.Open).
		Int("checked", sum.Checked).
		Int64("resolved", sum.Resolved).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Msg("Reconciliation complete")

	if sum.Failed > 0 {
		os.Exit(1)
	}
}
