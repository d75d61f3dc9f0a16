package models

import (
	"database/sql"
	"time"
)

// User represents a user.
type User struct {
	ID              int64          `db:"id"`
	Username        string         `db:"username"`
	DisplayName     string         `db:"display_name"`
	Email           string         `db:"email"`
	Admin           bool           `db:"admin"`
	Password        sql.NullString `db:"password"`
	LastContextType sql.NullString `db:"last_context_type"`
	LastContextID   sql.NullInt64  `db:"last_context_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}
