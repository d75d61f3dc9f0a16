package proto

import "time"

// Notification types.
const (
	NotificationTaskUpdated   = "task_updated"
	NotificationTaskAssigned  = "task_assigned"
	NotificationTaskComment   = "task_comment"
	NotificationMention       = "mention"
	NotificationMemberChanged = "member_changed"
)

// Notification is a per-user record describing an event relevant to
// them. Only the read flag ever changes.
type Notification struct {
	ID             int64     `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	TaskID         int64     `json:"taskId,omitempty"`
	ProjectID      int64     `json:"projectId,omitempty"`
	OrganizationID int64     `json:"organizationId,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
