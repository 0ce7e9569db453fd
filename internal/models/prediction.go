package models

import (
	"database/sql"
	"time"
)

// Prediction is a single user-facing prediction record.
// actual_outcome and is_correct stay NULL until reconciliation resolves the
// match; rows are never deleted so historical accuracy stays computable.
type Prediction struct {
	ID               int            `db:"id"`
	UserID           int            `db:"user_id"`
	Sport            Sport          `db:"sport"`
	MatchID          int64          `db:"match_id"`
	PredictedOutcome string         `db:"predicted_outcome"`
	PredictedScore   sql.NullString `db:"predicted_score"`
	ActualOutcome    sql.NullString `db:"actual_outcome"`
	IsCorrect        sql.NullBool   `db:"is_correct"`
	CreatedAt        time.Time      `db:"created_at"`
	ResolvedAt       sql.NullTime   `db:"resolved_at"`
}

// Resolved reports whether the prediction has been reconciled
func (p *Prediction) Resolved() bool {
	return p.ActualOutcome.Valid
}

// AccuracyStats summarizes a user's resolved predictions.
// HasData is false when no prediction has been resolved yet; Ratio is only
// meaningful when HasData is true.
type AccuracyStats struct {
	Total    int     `json:"total"`
	Resolved int     `json:"resolved"`
	Correct  int     `json:"correct"`
	Ratio    float64 `json:"ratio"`
	HasData  bool    `json:"has_data"`
}

// OpenMatch identifies a match with at least one unresolved prediction
type OpenMatch struct {
	Sport   Sport `db:"sport"`
	MatchID int64 `db:"match_id"`
}

// PredictionInput is the request payload for recording a prediction
type PredictionInput struct {
	TelegramID       int64  `json:"user_id"`
	Sport            Sport  `json:"sport"`
	MatchID          int64  `json:"match_id"`
	PredictedOutcome string `json:"predicted_outcome"`
	PredictedScore   string `json:"predicted_score,omitempty"`
}

// ToPrediction converts the input to a Prediction owned by the given database user ID
func (pi *PredictionInput) ToPrediction(dbUserID int) *Prediction {
	pred := &Prediction{
		UserID:           dbUserID,
		Sport:            pi.Sport,
		MatchID:          pi.MatchID,
		PredictedOutcome: pi.PredictedOutcome,
		CreatedAt:        time.Now(),
	}

	if pi.PredictedScore != "" {
		pred.PredictedScore = sql.NullString{String: pi.PredictedScore, Valid: true}
	}

	return pred
}
