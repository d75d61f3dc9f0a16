package store

import (
	"context"
	"database/sql"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// UpdateTaskParams are the mutable task fields. Nil fields are left
// untouched; a present field fully replaces the stored value.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *sql.NullTime
}

// TaskStore is a store for tasks, their assignees, and their watchers.
type TaskStore interface {
	CreateTask(ctx context.Context, h db.Handler, project int64, title, description, status, priority string, dueDate sql.NullTime, createdBy int64) (models.Task, error)
	GetTaskByID(ctx context.Context, h db.Handler, id int64) (models.Task, error)
	ListTasksByProject(ctx context.Context, h db.Handler, project int64) ([]models.Task, error)
	ListTasksAssignedToUser(ctx context.Context, h db.Handler, user int64) ([]models.Task, error)
	UpdateTask(ctx context.Context, h db.Handler, id int64, params UpdateTaskParams) error
	DeleteTaskByID(ctx context.Context, h db.Handler, id int64) error

	ListTaskAssignees(ctx context.Context, h db.Handler, task int64) ([]int64, error)
	AddTaskAssignee(ctx context.Context, h db.Handler, task, user int64) error
	RemoveTaskAssignee(ctx context.Context, h db.Handler, task, user int64) error

	ListTaskWatchers(ctx context.Context, h db.Handler, task int64) ([]int64, error)
	AddTaskWatcher(ctx context.Context, h db.Handler, task, user int64) error
	RemoveTaskWatcher(ctx context.Context, h db.Handler, task, user int64) error
}
