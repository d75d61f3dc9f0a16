package models

import (
	"database/sql"
	"time"
)

// Notification is a per-user record describing an event relevant to them.
// Only the read flag is ever mutated.
type Notification struct {
	ID             int64         `db:"id"`
	RecipientID    int64         `db:"recipient_id"`
	Type           string        `db:"type"`
	Title          string        `db:"title"`
	Message        string        `db:"message"`
	TaskID         sql.NullInt64 `db:"task_id"`
	ProjectID      sql.NullInt64 `db:"project_id"`
	OrganizationID sql.NullInt64 `db:"organization_id"`
	Read           bool          `db:"read"`
	CreatedAt      time.Time     `db:"created_at"`
}
