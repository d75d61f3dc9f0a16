package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.TaskStore = (*taskStore)(nil)

type taskStore struct{}

// CreateTask implements store.TaskStore.
func (s *taskStore) CreateTask(ctx context.Context, h db.Handler, project int64, title, description, status, priority string, dueDate sql.NullTime, createdBy int64) (models.Task, error) {
	query := h.Rebind(`
		INSERT INTO
		  tasks (project_id, title, description, status, priority, due_date, created_by, updated_at)
		VALUES
		  (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, project, title, description, status, priority, dueDate, createdBy); err != nil {
		return models.Task{}, err
	}

	return s.GetTaskByID(ctx, h, id)
}

// GetTaskByID implements store.TaskStore.
func (*taskStore) GetTaskByID(ctx context.Context, h db.Handler, id int64) (models.Task, error) {
	var m models.Task
	query := h.Rebind(`SELECT * FROM tasks WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListTasksByProject implements store.TaskStore.
func (*taskStore) ListTasksByProject(ctx context.Context, h db.Handler, project int64) ([]models.Task, error) {
	var m []models.Task
	query := h.Rebind(`
		SELECT *
		FROM tasks
		WHERE project_id = ?
		ORDER BY created_at, id;
	`)
	err := h.SelectContext(ctx, &m, query, project)
	return m, err
}

// ListTasksAssignedToUser implements store.TaskStore.
func (*taskStore) ListTasksAssignedToUser(ctx context.Context, h db.Handler, user int64) ([]models.Task, error) {
	var m []models.Task
	query := h.Rebind(`
		SELECT
		  t.*
		FROM
		  tasks t
		  JOIN task_assignees ta ON ta.task_id = t.id
		WHERE
		  ta.user_id = ?
		ORDER BY t.due_date, t.id;
	`)
	err := h.SelectContext(ctx, &m, query, user)
	return m, err
}

// UpdateTask implements store.TaskStore. Only non-nil params are written,
// each present field fully replaces the stored value.
func (*taskStore) UpdateTask(ctx context.Context, h db.Handler, id int64, params store.UpdateTaskParams) error {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}

	if params.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *params.Title)
	}
	if params.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *params.Description)
	}
	if params.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *params.Status)
	}
	if params.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *params.Priority)
	}
	if params.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *params.DueDate)
	}

	args = append(args, id)
	query := h.Rebind(`UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, args...)
	return err
}

// DeleteTaskByID implements store.TaskStore.
func (*taskStore) DeleteTaskByID(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM tasks WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err
}

// ListTaskAssignees implements store.TaskStore.
func (*taskStore) ListTaskAssignees(ctx context.Context, h db.Handler, task int64) ([]int64, error) {
	var ids []int64
	query := h.Rebind(`
		SELECT user_id
		FROM task_assignees
		WHERE task_id = ?
		ORDER BY user_id;
	`)
	err := h.SelectContext(ctx, &ids, query, task)
	return ids, err
}

// AddTaskAssignee implements store.TaskStore.
func (*taskStore) AddTaskAssignee(ctx context.Context, h db.Handler, task, user int64) error {
	query := h.Rebind(`
		INSERT INTO
		  task_assignees (task_id, user_id)
		VALUES
		  (?, ?);
	`)
	_, err := h.ExecContext(ctx, query, task, user)
	return err
}

// RemoveTaskAssignee implements store.TaskStore.
func (*taskStore) RemoveTaskAssignee(ctx context.Context, h db.Handler, task, user int64) error {
	query := h.Rebind(`
		DELETE FROM task_assignees
		WHERE
		  task_id = ?
		  AND user_id = ?;
	`)
	_, err := h.ExecContext(ctx, query, task, user)
	return err
}

// ListTaskWatchers implements store.TaskStore.
func (*taskStore) ListTaskWatchers(ctx context.Context, h db.Handler, task int64) ([]int64, error) {
	var ids []int64
	query := h.Rebind(`
		SELECT user_id
		FROM task_watchers
		WHERE task_id = ?
		ORDER BY user_id;
	`)
	err := h.SelectContext(ctx, &ids, query, task)
	return ids, err
}

// AddTaskWatcher implements store.TaskStore.
func (*taskStore) AddTaskWatcher(ctx context.Context, h db.Handler, task, user int64) error {
	query := h.Rebind(`
		INSERT INTO
		  task_watchers (task_id, user_id)
		VALUES
		  (?, ?);
	`)
	_, err := h.ExecContext(ctx, query, task, user)
	return err
}

// RemoveTaskWatcher implements store.TaskStore.
func (*taskStore) RemoveTaskWatcher(ctx context.Context, h db.Handler, task, user int64) error {
	query := h.Rebind(`
		DELETE FROM task_watchers
		WHERE
		  task_id = ?
		  AND user_id = ?;
	`)
	_, err := h.ExecContext(ctx, query, task, user)
	return err
}
