package store

import (
	"context"
	"database/sql"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// ActivityStore is an append-only store for task activities.
type ActivityStore interface {
	CreateActivity(ctx context.Context, h db.Handler, task int64, action string, field, oldValue, newValue sql.NullString, performedBy int64) (models.Activity, error)
	ListActivitiesByTask(ctx context.Context, h db.Handler, task int64, page, limit int) ([]models.Activity, error)
	CountActivitiesByTask(ctx context.Context, h db.Handler, task int64) (int64, error)
}
