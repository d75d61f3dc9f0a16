package database

import (
	"context"
	"database/sql"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.ActivityStore = (*activityStore)(nil)

type activityStore struct{}

// CreateActivity implements store.ActivityStore.
func (*activityStore) CreateActivity(ctx context.Context, h db.Handler, task int64, action string, field, oldValue, newValue sql.NullString, performedBy int64) (models.Activity, error) {
	query := h.Rebind(`
		INSERT INTO
		  activities (task_id, action, field, old_value, new_value, performed_by)
		VALUES
		  (?, ?, ?, ?, ?, ?) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, task, action, field, oldValue, newValue, performedBy); err != nil {
		return models.Activity{}, err
	}

	var m models.Activity
	query = h.Rebind(`SELECT * FROM activities WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListActivitiesByTask implements store.ActivityStore. Page is 1-based,
// newest activities first.
func (*activityStore) ListActivitiesByTask(ctx context.Context, h db.Handler, task int64, page, limit int) ([]models.Activity, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var m []models.Activity
	query := h.Rebind(`
		SELECT *
		FROM activities
		WHERE task_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?;
	`)
	err := h.SelectContext(ctx, &m, query, task, limit, (page-1)*limit)
	return m, err
}

// CountActivitiesByTask implements store.ActivityStore.
func (*activityStore) CountActivitiesByTask(ctx context.Context, h db.Handler, task int64) (int64, error) {
	var count int64
	query := h.Rebind(`SELECT COUNT(*) FROM activities WHERE task_id = ?;`)
	err := h.GetContext(ctx, &count, query, task)
	return count, err
}
