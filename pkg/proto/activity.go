package proto

import "time"

// Activity is an immutable audit-log entry describing one mutation on a
// task.
type Activity struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"taskId"`
	Action      string    `json:"action"`
	Field       string    `json:"field,omitempty"`
	OldValue    string    `json:"oldValue,omitempty"`
	NewValue    string    `json:"newValue,omitempty"`
	PerformedBy int64     `json:"performedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Activity actions.
const (
	ActivityCreated   = "created"
	ActivityUpdated   = "updated"
	ActivityCommented = "commented"
	ActivityDeleted   = "deleted"
)
