package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema is applied on startup. Statements are idempotent so repeated
// startups are safe. The partial unique index is what turns a second open
// prediction for the same (user, match) into a constraint violation.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          SERIAL PRIMARY KEY,
		telegram_id BIGINT NOT NULL UNIQUE,
		username    VARCHAR(100),
		first_name  VARCHAR(100),
		last_name   VARCHAR(100),
		is_admin    BOOLEAN NOT NULL DEFAULT FALSE,
		is_invited  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS predictions (
		id                SERIAL PRIMARY KEY,
		user_id           INTEGER NOT NULL REFERENCES users(id),
		sport             VARCHAR(20) NOT NULL,
		match_id          BIGINT NOT NULL,
		predicted_outcome VARCHAR(20) NOT NULL,
		predicted_score   VARCHAR(20),
		actual_outcome    VARCHAR(20),
		is_correct        BOOLEAN,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at       TIMESTAMPTZ,
		CHECK ((actual_outcome IS NULL) = (is_correct IS NULL))
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_predictions_open
		ON predictions (user_id, match_id)
		WHERE actual_outcome IS NULL`,

	`CREATE INDEX IF NOT EXISTS idx_predictions_user ON predictions (user_id)`,

	`CREATE INDEX IF NOT EXISTS idx_predictions_match ON predictions (sport, match_id)`,
}

// InitSchema creates tables and indexes if they do not exist
func (db *Database) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	log.Info().Msg("Database schema up to date")
	return nil
}
