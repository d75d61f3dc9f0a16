package webhook

import (
	"context"
	"time"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/store"
)

// TaskEvent is a task event.
type TaskEvent struct {
	Common

	// Action is the task event action.
	Action TaskEventAction `json:"action" url:"action"`
	// Task is the task the event happened on.
	Task Task `json:"task" url:"task"`
}

// Task is the task payload of a webhook event.
type Task struct {
	ID        int64      `json:"id" url:"id"`
	Title     string     `json:"title" url:"title"`
	Status    string     `json:"status" url:"status"`
	Priority  string     `json:"priority" url:"priority"`
	DueDate   *time.Time `json:"due_date,omitempty" url:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at" url:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" url:"updated_at"`
}

// TaskEventAction is a task event action.
type TaskEventAction string

const (
	// TaskEventActionCreate is a task created event.
	TaskEventActionCreate TaskEventAction = "create"
	// TaskEventActionUpdate is a task updated event.
	TaskEventActionUpdate TaskEventAction = "update"
	// TaskEventActionDelete is a task deleted event.
	TaskEventActionDelete TaskEventAction = "delete"
)

// NewTaskEvent builds a task event payload.
func NewTaskEvent(ctx context.Context, user proto.User, t models.Task, action TaskEventAction) (TaskEvent, error) {
	payload := TaskEvent{
		Action: action,
		Common: Common{
			EventType: EventTask,
			Sender: User{
				ID:          user.ID,
				Username:    user.Username,
				DisplayName: user.DisplayName,
			},
		},
		Task: Task{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Priority:  t.Priority,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		},
	}

	if t.DueDate.Valid {
		due := t.DueDate.Time
		payload.Task.DueDate = &due
	}

	dbx := db.FromContext(ctx)
	datastore := store.FromContext(ctx)
	p, err := datastore.GetProjectByID(ctx, dbx, t.ProjectID)
	if err != nil {
		return TaskEvent{}, db.WrapError(err)
	}

	payload.Project = Project{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Description: p.Description.String,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	return payload, nil
}
