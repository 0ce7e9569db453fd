package repository

import (
	"context"
	"errors"
	"fmt"

	"matchday/backend/internal/metrics"
	"matchday/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// ErrDuplicatePrediction is returned when a user already has an open
// (unresolved) prediction for the same match
var ErrDuplicatePrediction = errors.New("open prediction already exists for this match")

const pgUniqueViolation = "23505"

// PredictionRepository is the prediction ledger: records are inserted once,
// resolved once by reconciliation, and never deleted
type PredictionRepository struct {
	db *Database
}

// Record inserts a new prediction atomically with validation.
// The partial unique index on open predictions enforces one open prediction
// per (user, match); a violation surfaces as ErrDuplicatePrediction.
func (r *PredictionRepository) Record(ctx context.Context, pred *models.Prediction) error {
	if pred == nil {
		return fmt.Errorf("prediction cannot be nil")
	}

	if err := validatePrediction(pred); err != nil {
		return fmt.Errorf("prediction validation failed: %w", err)
	}

	query := `
		INSERT INTO predictions (
			user_id, sport, match_id, predicted_outcome, predicted_score
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		pred.UserID, pred.Sport, pred.MatchID, pred.PredictedOutcome, pred.PredictedScore,
	).Scan(&pred.ID, &pred.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicatePrediction
		}
		log.Error().Err(err).Int64("match_id", pred.MatchID).Msg("Failed to insert prediction")
		return fmt.Errorf("failed to record prediction: %w", err)
	}

	metrics.PredictionsRecorded.Inc()
	log.Info().
		Int("id", pred.ID).
		Int("user_id", pred.UserID).
		Int64("match_id", pred.MatchID).
		Str("outcome", pred.PredictedOutcome).
		Msg("Prediction recorded")

	return nil
}

// ReconcileMatch resolves all open predictions for a match, setting
// is_correct = (predicted_outcome = actual_outcome). Already-resolved rows
// are untouched, which makes the operation idempotent.
func (r *PredictionRepository) ReconcileMatch(ctx context.Context, sport models.Sport, matchID int64, actualOutcome string) (int64, error) {
	query := `
		UPDATE predictions SET
			actual_outcome = $3,
			is_correct = (predicted_outcome = $3),
			resolved_at = NOW()
		WHERE sport = $1 AND match_id = $2 AND actual_outcome IS NULL
	`

	result, err := r.db.Pool.Exec(ctx, query, sport, matchID, actualOutcome)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile match: %w", err)
	}

	resolved := result.RowsAffected()
	if resolved > 0 {
		log.Info().
			Str("sport", string(sport)).
			Int64("match_id", matchID).
			Str("actual_outcome", actualOutcome).
			Int64("resolved", resolved).
			Msg("Match reconciled")
	}

	return resolved, nil
}

// Accuracy computes a user's prediction accuracy from resolved records.
// Zero resolved predictions is "no data" (HasData=false), not a fault.
func (r *PredictionRepository) Accuracy(ctx context.Context, userID int) (*models.AccuracyStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE actual_outcome IS NOT NULL),
		       COUNT(*) FILTER (WHERE is_correct)
		FROM predictions
		WHERE user_id = $1
	`

	stats := &models.AccuracyStats{}
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.Resolved, &stats.Correct)
	if err != nil {
		return nil, fmt.Errorf("failed to compute accuracy: %w", err)
	}

	if stats.Resolved > 0 {
		stats.HasData = true
		stats.Ratio = float64(stats.Correct) / float64(stats.Resolved)
	}

	return stats, nil
}

// GetByID retrieves a prediction by its ledger ID
func (r *PredictionRepository) GetByID(ctx context.Context, id int) (*models.Prediction, error) {
	query := `
		SELECT id, user_id, sport, match_id, predicted_outcome, predicted_score,
		       actual_outcome, is_correct, created_at, resolved_at
		FROM predictions
		WHERE id = $1
	`

	var pred models.Prediction
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&pred.ID, &pred.UserID, &pred.Sport, &pred.MatchID,
		&pred.PredictedOutcome, &pred.PredictedScore,
		&pred.ActualOutcome, &pred.IsCorrect, &pred.CreatedAt, &pred.ResolvedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return &pred, nil
}

// ListByUser retrieves a user's most recent predictions
func (r *PredictionRepository) ListByUser(ctx context.Context, userID, limit int) ([]*models.Prediction, error) {
	query := `
		SELECT id, user_id, sport, match_id, predicted_outcome, predicted_score,
		       actual_outcome, is_correct, created_at, resolved_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var preds []*models.Prediction
	for rows.Next() {
		var pred models.Prediction
		err := rows.Scan(
			&pred.ID, &pred.UserID, &pred.Sport, &pred.MatchID,
			&pred.PredictedOutcome, &pred.PredictedScore,
			&pred.ActualOutcome, &pred.IsCorrect, &pred.CreatedAt, &pred.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, &pred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return preds, nil
}

// ListOpenMatches returns the distinct matches that still have unresolved
// predictions, for the reconciliation pass
func (r *PredictionRepository) ListOpenMatches(ctx context.Context) ([]models.OpenMatch, error) {
	query := `
		SELECT DISTINCT sport, match_id
		FROM predictions
		WHERE actual_outcome IS NULL
		ORDER BY sport, match_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open matches: %w", err)
	}
	defer rows.Close()

	var matches []models.OpenMatch
	for rows.Next() {
		var m models.OpenMatch
		if err := rows.Scan(&m.Sport, &m.MatchID); err != nil {
			return nil, fmt.Errorf("failed to scan open match: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open matches: %w", err)
	}

	return matches, nil
}

// CountOpen returns the number of unresolved predictions
func (r *PredictionRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM predictions WHERE actual_outcome IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open predictions: %w", err)
	}
	return count, nil
}

// SystemStats aggregates ledger totals for the admin panel
type SystemStats struct {
	Users       int `json:"users"`
	Predictions int `json:"predictions"`
	Resolved    int `json:"resolved"`
	Correct     int `json:"correct"`
	Open        int `json:"open"`
}

// Stats computes system-wide ledger totals
func (r *PredictionRepository) Stats(ctx context.Context) (*SystemStats, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM users),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE actual_outcome IS NOT NULL),
		       COUNT(*) FILTER (WHERE is_correct)
		FROM predictions
	`

	stats := &SystemStats{}
	err := r.db.Pool.QueryRow(ctx, query).Scan(&stats.Users, &stats.Predictions, &stats.Resolved, &stats.Correct)
	if err != nil {
		return nil, fmt.Errorf("failed to compute system stats: %w", err)
	}
	stats.Open = stats.Predictions - stats.Resolved

	return stats, nil
}

// validatePrediction ensures prediction data is valid before insertion
func validatePrediction(pred *models.Prediction) error {
	if pred.UserID <= 0 {
		return fmt.Errorf("user_id must be positive")
	}
	if pred.MatchID <= 0 {
		return fmt.Errorf("match_id must be positive")
	}
	if !models.ValidSport(pred.Sport) {
		return fmt.Errorf("unsupported sport %q", pred.Sport)
	}
	return models.ValidOutcome(pred.Sport, pred.PredictedOutcome)
}
