package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/store"
	"github.com/tracksdev/tracks/pkg/webhook"
)

// taskView assembles the client view of a task, including its assignee
// and watcher sets.
func (b *Backend) taskView(ctx context.Context, m models.Task) (proto.Task, error) {
	assignees, err := b.store.ListTaskAssignees(ctx, b.db, m.ID)
	if err != nil {
		return proto.Task{}, db.WrapError(err)
	}
	watchers, err := b.store.ListTaskWatchers(ctx, b.db, m.ID)
	if err != nil {
		return proto.Task{}, db.WrapError(err)
	}

	t := proto.Task{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description.String,
		Status:      proto.TaskStatus(m.Status),
		Priority:    proto.TaskPriority(m.Priority),
		Assignees:   assignees,
		Watchers:    watchers,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DueDate.Valid {
		due := m.DueDate.Time
		t.DueDate = &due
	}
	return t, nil
}

// CreateTask creates a task in a project. Any project member may create
// tasks; assignees must be project members.
func (b *Backend) CreateTask(ctx context.Context, user proto.User, projectID int64, title, description string, status proto.TaskStatus, priority proto.TaskPriority, dueDate *time.Time, assignees []int64) (proto.Task, error) {
	if strings.TrimSpace(title) == "" {
		return proto.Task{}, errors.Join(proto.ErrInvalidInput, errors.New("task title cannot be empty"))
	}
	if status == "" {
		status = proto.StatusTodo
	}
	if priority == "" {
		priority = proto.PriorityMedium
	}
	if !status.Valid() {
		return proto.Task{}, errors.Join(proto.ErrInvalidInput, errors.New("invalid task status"))
	}
	if !priority.Valid() {
		return proto.Task{}, errors.Join(proto.ErrInvalidInput, errors.New("invalid task priority"))
	}

	if _, err := b.projectForUser(ctx, user, projectID); err != nil {
		return proto.Task{}, err
	}
	if b.projectRole(ctx, projectID, user.ID) < access.Member {
		return proto.Task{}, proto.ErrUnauthorized
	}
	if err := b.checkProjectMembers(ctx, projectID, assignees); err != nil {
		return proto.Task{}, err
	}

	var m models.Task
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = b.store.CreateTask(ctx, tx, projectID, title, description, string(status), string(priority), nullTime(dueDate), user.ID)
		if err != nil {
			return db.WrapError(err)
		}

		for _, id := range dedup(assignees) {
			if err := b.store.AddTaskAssignee(ctx, tx, m.ID, id); err != nil {
				return db.WrapError(err)
			}
		}

		return b.recordActivity(ctx, tx, m.ID, proto.ActivityCreated, nil, user.ID)
	}); err != nil {
		return proto.Task{}, err
	}

	b.notifyTask(ctx, m, user, proto.NotificationTaskAssigned,
		m.Title, fmt.Sprintf("%s assigned you to %q", user.DisplayName, m.Title), nil)
	b.sendTaskEvent(ctx, user, m, webhook.TaskEventActionCreate)

	return b.taskView(ctx, m)
}

// checkProjectMembers verifies every id is a member of the project.
func (b *Backend) checkProjectMembers(ctx context.Context, project int64, ids []int64) error {
	members, err := b.store.ListProjectMembers(ctx, b.db, project)
	if err != nil {
		return db.WrapError(err)
	}

	set := make(map[int64]struct{}, len(members))
	for _, m := range members {
		set[m.UserID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return errors.Join(proto.ErrInvalidInput, errors.New("assignees must be project members"))
		}
	}
	return nil
}

func dedup(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	r := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		r = append(r, id)
	}
	return r
}

// TasksByProject lists the tasks of a project the user can read.
func (b *Backend) TasksByProject(ctx context.Context, user proto.User, projectID int64) ([]proto.Task, error) {
	if _, err := b.projectForUser(ctx, user, projectID); err != nil {
		return nil, err
	}

	tasks, err := b.store.ListTasksByProject(ctx, b.db, projectID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Task, 0, len(tasks))
	for _, m := range tasks {
		t, err := b.taskView(ctx, m)
		if err != nil {
			return nil, err
		}
		r = append(r, t)
	}
	return r, nil
}

// AssignedTasks lists the tasks assigned to the user across all projects.
func (b *Backend) AssignedTasks(ctx context.Context, user proto.User) ([]proto.Task, error) {
	tasks, err := b.store.ListTasksAssignedToUser(ctx, b.db, user.ID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Task, 0, len(tasks))
	for _, m := range tasks {
		t, err := b.taskView(ctx, m)
		if err != nil {
			return nil, err
		}
		r = append(r, t)
	}
	return r, nil
}

// TaskByID returns a task the user can read.
func (b *Backend) TaskByID(ctx context.Context, user proto.User, id int64) (proto.Task, error) {
	m, err := b.taskForUser(ctx, user, id)
	if err != nil {
		return proto.Task{}, err
	}
	return b.taskView(ctx, m)
}

// taskForUser fetches a task and checks the user can read its project.
func (b *Backend) taskForUser(ctx context.Context, user proto.User, id int64) (models.Task, error) {
	m, err := b.store.GetTaskByID(ctx, b.db, id)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return models.Task{}, proto.ErrTaskNotFound
		}
		return models.Task{}, db.WrapError(err)
	}

	if _, err := b.projectForUser(ctx, user, m.ProjectID); err != nil {
		return models.Task{}, proto.ErrTaskNotFound
	}

	return m, nil
}

// PatchTask applies a partial task update. Any project member may mutate
// task fields. Each present field fully replaces the stored value and
// writes one activity; fields absent from the patch are untouched, so
// concurrent patches to distinct fields never clobber each other.
func (b *Backend) PatchTask(ctx context.Context, user proto.User, id int64, patch proto.TaskPatch) (proto.Task, error) {
	m, err := b.taskForUser(ctx, user, id)
	if err != nil {
		return proto.Task{}, err
	}
	if b.projectRole(ctx, m.ProjectID, user.ID) < access.Member {
		return proto.Task{}, proto.ErrUnauthorized
	}
	if patch.Empty() {
		return b.taskView(ctx, m)
	}

	params := store.UpdateTaskParams{}
	var changes []fieldChange

	if patch.Title != nil && *patch.Title != m.Title {
		if strings.TrimSpace(*patch.Title) == "" {
			return proto.Task{}, errors.Join(proto.ErrInvalidInput, errors.New("task title cannot be empty"))
		}
		params.Title = patch.Title
		changes = append(changes, fieldChange{"title", m.Title, *patch.Title})
	}
	if patch.Description != nil && *patch.Description != m.Description.String {
		params.Description = patch.Description
		changes = append(changes, fieldChange{"description", m.Description.String, *patch.Description})
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return proto.Task{}, errors.Join(proto.ErrInvalidInput, errors.New("invalid task status"))
		}
		if s := string(*patch.Status); s != m.Status {
			params.Status = &s
			changes = append(changes, fieldChange{"status", m.Status, s})
		}
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return proto.Task{}, errors.Join(proto.ErrInvalidInput, errors.New("invalid task priority"))
		}
		if p := string(*patch.Priority); p != m.Priority {
			params.Priority = &p
			changes = append(changes, fieldChange{"priority", m.Priority, p})
		}
	}
	if patch.DueDate != nil {
		t := nullTime(patch.DueDate)
		if !m.DueDate.Valid || !m.DueDate.Time.Equal(*patch.DueDate) {
			params.DueDate = &t
			changes = append(changes, fieldChange{"dueDate", formatDue(m.DueDate.Valid, m.DueDate.Time), patch.DueDate.Format(time.RFC3339)})
		}
	}

	var added []int64
	if patch.Assignees != nil {
		if err := b.checkProjectMembers(ctx, m.ProjectID, *patch.Assignees); err != nil {
			return proto.Task{}, err
		}

		current, err := b.store.ListTaskAssignees(ctx, b.db, id)
		if err != nil {
			return proto.Task{}, db.WrapError(err)
		}
		want := dedup(*patch.Assignees)

		var removed []int64
		added, removed = diffSets(current, want)
		if len(added) > 0 || len(removed) > 0 {
			changes = append(changes, fieldChange{"assignees", joinIDs(current), joinIDs(want)})
		}

		if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
			for _, uid := range added {
				if err := b.store.AddTaskAssignee(ctx, tx, id, uid); err != nil {
					return db.WrapError(err)
				}
			}
			for _, uid := range removed {
				if err := b.store.RemoveTaskAssignee(ctx, tx, id, uid); err != nil {
					return db.WrapError(err)
				}
			}
			return nil
		}); err != nil {
			return proto.Task{}, err
		}
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if err := b.store.UpdateTask(ctx, tx, id, params); err != nil {
			return db.WrapError(err)
		}

		for i := range changes {
			if err := b.recordActivity(ctx, tx, id, proto.ActivityUpdated, &changes[i], user.ID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return proto.Task{}, err
	}

	updated, err := b.store.GetTaskByID(ctx, b.db, id)
	if err != nil {
		return proto.Task{}, db.WrapError(err)
	}

	if len(changes) > 0 {
		msg := fmt.Sprintf("%s updated %q", user.DisplayName, updated.Title)
		if len(changes) == 1 {
			msg = fmt.Sprintf("%s changed %s of %q", user.DisplayName, changes[0].field, updated.Title)
		}
		b.notifyTask(ctx, updated, user, proto.NotificationTaskUpdated, updated.Title, msg, nil)
		if len(added) > 0 {
			b.notifyUsers(ctx, updated, user, added, proto.NotificationTaskAssigned,
				updated.Title, fmt.Sprintf("%s assigned you to %q", user.DisplayName, updated.Title))
		}
		b.sendTaskEvent(ctx, user, updated, webhook.TaskEventActionUpdate)
	}

	return b.taskView(ctx, updated)
}

func formatDue(valid bool, t time.Time) string {
	if !valid {
		return ""
	}
	return t.Format(time.RFC3339)
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ",")
}

// diffSets returns the ids present in want but not current, and the ids
// present in current but not want.
func diffSets(current, want []int64) (added, removed []int64) {
	cur := make(map[int64]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	wnt := make(map[int64]struct{}, len(want))
	for _, id := range want {
		wnt[id] = struct{}{}
	}

	for _, id := range want {
		if _, ok := cur[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := wnt[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// DeleteTask deletes a task. Only the task's creator or the project
// owner may delete it; comments, reactions, activities, and notification
// links cascade.
func (b *Backend) DeleteTask(ctx context.Context, user proto.User, id int64) error {
	m, err := b.taskForUser(ctx, user, id)
	if err != nil {
		return err
	}
	if m.CreatedBy != user.ID && b.projectRole(ctx, m.ProjectID, user.ID) < access.Owner {
		return proto.ErrUnauthorized
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.DeleteTaskByID(ctx, tx, id))
	}); err != nil {
		return err
	}

	b.sendTaskEvent(ctx, user, m, webhook.TaskEventActionDelete)
	return nil
}

// WatchTask adds the given user to the task's watcher set. Adding an
// existing watcher is a silent no-op with no activity.
func (b *Backend) WatchTask(ctx context.Context, actor proto.User, id, watcher int64) error {
	m, err := b.taskForUser(ctx, actor, id)
	if err != nil {
		return err
	}
	if b.projectRole(ctx, m.ProjectID, actor.ID) < access.Member {
		return proto.ErrUnauthorized
	}
	if err := b.checkProjectMembers(ctx, m.ProjectID, []int64{watcher}); err != nil {
		return err
	}

	err = b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.AddTaskWatcher(ctx, tx, id, watcher))
	})
	if errors.Is(err, db.ErrDuplicateKey) {
		return nil
	}
	return err
}

// UnwatchTask removes the given user from the task's watcher set.
// Removing an absent watcher is a silent no-op.
func (b *Backend) UnwatchTask(ctx context.Context, actor proto.User, id, watcher int64) error {
	m, err := b.taskForUser(ctx, actor, id)
	if err != nil {
		return err
	}
	if b.projectRole(ctx, m.ProjectID, actor.ID) < access.Member {
		return proto.ErrUnauthorized
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.RemoveTaskWatcher(ctx, tx, id, watcher))
	})
}

// TaskActivities returns a page of a task's activity log, newest first.
func (b *Backend) TaskActivities(ctx context.Context, user proto.User, id int64, page, limit int) ([]proto.Activity, int64, error) {
	if _, err := b.taskForUser(ctx, user, id); err != nil {
		return nil, 0, err
	}

	activities, err := b.store.ListActivitiesByTask(ctx, b.db, id, page, limit)
	if err != nil {
		return nil, 0, db.WrapError(err)
	}
	total, err := b.store.CountActivitiesByTask(ctx, b.db, id)
	if err != nil {
		return nil, 0, db.WrapError(err)
	}

	r := make([]proto.Activity, 0, len(activities))
	for _, a := range activities {
		r = append(r, proto.Activity{
			ID:          a.ID,
			TaskID:      a.TaskID,
			Action:      a.Action,
			Field:       a.Field.String,
			OldValue:    a.OldValue.String,
			NewValue:    a.NewValue.String,
			PerformedBy: a.PerformedBy,
			CreatedAt:   a.CreatedAt,
		})
	}
	return r, total, nil
}

// sendTaskEvent fires a task webhook in the background.
func (b *Backend) sendTaskEvent(ctx context.Context, actor proto.User, t models.Task, action webhook.TaskEventAction) {
	b.manager.Go(func(bctx context.Context) {
		defer recoverPanic(b.logger, "task webhook")

		bctx = b.pipelineContext(bctx)
		payload, err := webhook.NewTaskEvent(bctx, actor, t, action)
		if err != nil {
			b.logger.Error("failed to build task webhook payload", "task", t.ID, "err", err)
			return
		}
		if err := webhook.SendEvent(bctx, payload); err != nil {
			b.logger.Error("failed to send task webhook", "task", t.ID, "err", err)
		}
	})
}
