package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"matchday/backend/internal/client"
	"matchday/backend/internal/config"
	"matchday/backend/internal/metrics"
	"matchday/backend/internal/models"
	"matchday/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the reconciliation passes:
// - a polling ticker resolves open predictions as results come in
// - a nightly cron sweep catches anything the polling missed
type Scheduler struct {
	cfg      *config.Config
	client   *client.Client
	db       *repository.Database
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, client *client.Client, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		client:   client,
		db:       db,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Nightly sweep
	if _, err := s.cron.AddFunc(s.cfg.ReconcileCron, func() {
		log.Info().Msg("Running nightly reconciliation sweep...")
		if _, err := RunPass(ctx, s.client, s.db); err != nil {
			log.Error().Err(err).Msg("Nightly reconciliation failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly reconciliation: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.ReconcileCron).
		Msg("Nightly reconciliation scheduled")

	// Polling ticker for open predictions
	interval := time.Duration(s.cfg.ReconcilePollInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Reconciliation polling started")

	go s.poll(ctx)

	return nil
}

// Stop stops the scheduler. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		log.Info().Msg("Stopping scheduler...")

		if s.cron != nil {
			s.cron.Stop()
		}

		if s.ticker != nil {
			s.ticker.Stop()
		}

		close(s.stopChan)
		log.Info().Msg("Scheduler stopped")
	})
}

// poll runs reconciliation passes until stopped
func (s *Scheduler) poll(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping reconciliation polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping reconciliation polling")
			return
		case <-s.ticker.C:
			if _, err := RunPass(ctx, s.client, s.db); err != nil {
				log.Error().Err(err).Msg("Reconciliation pass failed")
			}
		}
	}
}

// Summary reports what one reconciliation pass did
type Summary struct {
	RunID    string
	Open     int
	Checked  int
	Resolved int64
	Skipped  int
	Failed   int
}

// RunPass runs a single reconciliation pass: list matches with open
// predictions, fetch each result, and resolve settled matches.
// Matches that are not final yet are skipped and picked up next pass.
func RunPass(ctx context.Context, c *client.Client, db *repository.Database) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}

	open, err := db.Predictions.ListOpenMatches(ctx)
	if err != nil {
		metrics.RecordReconcileRun("error", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("failed to list open matches: %w", err)
	}
	sum.Open = len(open)

	if len(open) == 0 {
		log.Debug().Str("run_id", sum.RunID).Msg("No open predictions to reconcile")
		metrics.RecordReconcileRun("success", time.Since(start).Seconds(), 0)
		return sum, nil
	}

	log.Info().
		Str("run_id", sum.RunID).
		Int("open_matches", len(open)).
		Msg("Reconciliation pass started")

	for _, m := range open {
		outcome, err := fetchOutcome(ctx, c, m)
		if err != nil {
			if errors.Is(err, client.ErrNotFound) {
				// Result not published yet; try again next pass
				sum.Skipped++
				continue
			}
			log.Error().
				Err(err).
				Str("sport", string(m.Sport)).
				Int64("match_id", m.MatchID).
				Msg("Failed to fetch match result")
			metrics.RecordError("reconciler", "fetch")
			sum.Failed++
			continue
		}

		if outcome == "" {
			// Match not final yet
			sum.Skipped++
			continue
		}

		sum.Checked++
		resolved, err := db.Predictions.ReconcileMatch(ctx, m.Sport, m.MatchID, outcome)
		if err != nil {
			log.Error().
				Err(err).
				Str("sport", string(m.Sport)).
				Int64("match_id", m.MatchID).
				Msg("Failed to reconcile match")
			metrics.RecordError("reconciler", "db")
			sum.Failed++
			continue
		}
		sum.Resolved += resolved
	}

	if openCount, err := db.Predictions.CountOpen(ctx); err == nil {
		metrics.OpenPredictions.Set(float64(openCount))
	}

	status := "success"
	if sum.Failed > 0 {
		status = "partial"
	}
	metrics.RecordReconcileRun(status, time.Since(start).Seconds(), int(sum.Resolved))

	log.Info().
		Str("run_id", sum.RunID).
		Int("open", sum.Open).
		Int("checked", sum.Checked).
		Int64("resolved", sum.Resolved).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Dur("duration", time.Since(start)).
		Msg("Reconciliation pass complete")

	return sum, nil
}

// fetchOutcome fetches the result for one match and derives the ledger
// outcome. Returns "" when the match is not final.
func fetchOutcome(ctx context.Context, c *client.Client, m models.OpenMatch) (string, error) {
	switch m.Sport {
	case models.SportFootball:
		fixture, err := c.FetchFootballFixtureByID(ctx, m.MatchID)
		if err != nil {
			return "", err
		}
		return fixture.Outcome(), nil

	case models.SportTennis:
		game, err := c.FetchTennisGameByID(ctx, m.MatchID)
		if err != nil {
			return "", err
		}
		return game.Outcome(), nil

	case models.SportBasketball:
		game, err := c.FetchBasketballGameByID(ctx, m.MatchID)
		if err != nil {
			return "", err
		}
		return game.Outcome(), nil

	default:
		return "", fmt.Errorf("unsupported sport %q", m.Sport)
	}
}
