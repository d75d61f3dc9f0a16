package models

import (
	"database/sql"
	"time"
)

// Activity is an immutable audit-log entry describing one mutation on a
// task. Activities are never updated, they are only deleted when the task
// they belong to is deleted.
type Activity struct {
	ID          int64          `db:"id"`
	TaskID      int64          `db:"task_id"`
	Action      string         `db:"action"`
	Field       sql.NullString `db:"field"`
	OldValue    sql.NullString `db:"old_value"`
	NewValue    sql.NullString `db:"new_value"`
	PerformedBy int64          `db:"performed_by"`
	CreatedAt   time.Time      `db:"created_at"`
}
