package webhook

import "time"

// Common is the common webhook payload shared by all events.
type Common struct {
	// EventType is the event type.
	EventType Event `json:"event" url:"event"`
	// Project is the project payload.
	Project Project `json:"project" url:"project"`
	// Sender is the sender payload.
	Sender User `json:"sender" url:"sender"`
}

// Event returns the event type.
// Implements EventPayload.
func (c Common) Event() Event {
	return c.EventType
}

// ProjectID returns the project ID.
// Implements EventPayload.
func (c Common) ProjectID() int64 {
	return c.Project.ID
}

// Project is the project payload of a webhook event.
type Project struct {
	ID          int64     `json:"id" url:"id"`
	WorkspaceID int64     `json:"workspace_id" url:"workspace_id"`
	Name        string    `json:"name" url:"name"`
	Description string    `json:"description" url:"description"`
	Status      string    `json:"status" url:"status"`
	CreatedAt   time.Time `json:"created_at" url:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" url:"updated_at"`
}

// User is the user payload of a webhook event.
type User struct {
	ID          int64  `json:"id" url:"id"`
	Username    string `json:"username" url:"username"`
	DisplayName string `json:"display_name" url:"display_name"`
}
