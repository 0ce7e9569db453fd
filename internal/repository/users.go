package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"matchday/backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrUserNotFound is returned when a lookup targets a user that was never seen
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles user database operations
type UserRepository struct {
	db *Database
}

// GetOrCreate returns the user for a Telegram ID, creating the row on first
// interaction. Profile fields refresh on every call, as does last_seen.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, profile models.UserProfile) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = COALESCE(EXCLUDED.username, users.username),
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name = COALESCE(EXCLUDED.last_name, users.last_name),
			last_seen = NOW()
		RETURNING id, telegram_id, username, first_name, last_name,
		          is_admin, is_invited, created_at, last_seen
	`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query,
		telegramID,
		nullString(profile.Username),
		nullString(profile.FirstName),
		nullString(profile.LastName),
	).Scan(
		&user.ID, &user.TelegramID, &user.Username, &user.FirstName, &user.LastName,
		&user.IsAdmin, &user.IsInvited, &user.CreatedAt, &user.LastSeen,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return &user, nil
}

// GetByTelegramID retrieves a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name,
		       is_admin, is_invited, created_at, last_seen
		FROM users
		WHERE telegram_id = $1
	`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, telegramID).Scan(
		&user.ID, &user.TelegramID, &user.Username, &user.FirstName, &user.LastName,
		&user.IsAdmin, &user.IsInvited, &user.CreatedAt, &user.LastSeen,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// SetInvited grants (or revokes) access in invite-only mode
func (r *UserRepository) SetInvited(ctx context.Context, telegramID int64, invited bool) error {
	query := `UPDATE users SET is_invited = $2 WHERE telegram_id = $1`

	result, err := r.db.Pool.Exec(ctx, query, telegramID, invited)
	if err != nil {
		return fmt.Errorf("failed to set invited: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	log.Info().Int64("telegram_id", telegramID).Bool("invited", invited).Msg("User invite updated")
	return nil
}

// SetAdmin promotes (or demotes) a user
func (r *UserRepository) SetAdmin(ctx context.Context, telegramID int64, admin bool) error {
	query := `UPDATE users SET is_admin = $2 WHERE telegram_id = $1`

	result, err := r.db.Pool.Exec(ctx, query, telegramID, admin)
	if err != nil {
		return fmt.Errorf("failed to set admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	log.Info().Int64("telegram_id", telegramID).Bool("admin", admin).Msg("User admin flag updated")
	return nil
}

// Count returns the total number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
