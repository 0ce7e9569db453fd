package models

import (
	"database/sql"
	"time"
)

// User is created on first interaction and never deleted.
// Admin actions flip is_invited / is_admin.
type User struct {
	ID         int            `db:"id"`
	TelegramID int64          `db:"telegram_id"`
	Username   sql.NullString `db:"username"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	IsAdmin    bool           `db:"is_admin"`
	IsInvited  bool           `db:"is_invited"`
	CreatedAt  time.Time      `db:"created_at"`
	LastSeen   time.Time      `db:"last_seen"`
}

// UserProfile carries the optional profile fields from the chat platform
type UserProfile struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
