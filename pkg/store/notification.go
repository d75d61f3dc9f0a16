package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// NotificationStore is a store for user notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, h db.Handler, recipient int64, typ, title, message string, task, project, org sql.NullInt64) (models.Notification, error)
	ListNotificationsForUser(ctx context.Context, h db.Handler, user int64) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, h db.Handler, user int64) (int64, error)
	GetNotificationByID(ctx context.Context, h db.Handler, id int64) (models.Notification, error)
	MarkNotificationRead(ctx context.Context, h db.Handler, user, id int64) error
	MarkAllNotificationsRead(ctx context.Context, h db.Handler, user int64) error
	DeleteReadNotificationsBefore(ctx context.Context, h db.Handler, cutoff time.Time) (int64, error)
}
