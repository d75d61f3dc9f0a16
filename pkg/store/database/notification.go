package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.NotificationStore = (*notificationStore)(nil)

type notificationStore struct{}

// CreateNotification implements store.NotificationStore.
func (s *notificationStore) CreateNotification(ctx context.Context, h db.Handler, recipient int64, typ, title, message string, task, project, org sql.NullInt64) (models.Notification, error) {
	query := h.Rebind(`
		INSERT INTO
		  notifications (recipient_id, type, title, message, task_id, project_id, organization_id, read)
		VALUES
		  (?, ?, ?, ?, ?, ?, ?, false) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, recipient, typ, title, message, task, project, org); err != nil {
		return models.Notification{}, err
	}

	return s.GetNotificationByID(ctx, h, id)
}

// ListNotificationsForUser implements store.NotificationStore. Newest
// first.
func (*notificationStore) ListNotificationsForUser(ctx context.Context, h db.Handler, user int64) ([]models.Notification, error) {
	var m []models.Notification
	query := h.Rebind(`
		SELECT *
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC;
	`)
	err := h.SelectContext(ctx, &m, query, user)
	return m, err
}

// CountUnreadNotifications implements store.NotificationStore.
func (*notificationStore) CountUnreadNotifications(ctx context.Context, h db.Handler, user int64) (int64, error) {
	var count int64
	query := h.Rebind(`
		SELECT COUNT(*)
		FROM notifications
		WHERE
		  recipient_id = ?
		  AND read = false;
	`)
	err := h.GetContext(ctx, &count, query, user)
	return count, err
}

// GetNotificationByID implements store.NotificationStore.
func (*notificationStore) GetNotificationByID(ctx context.Context, h db.Handler, id int64) (models.Notification, error) {
	var m models.Notification
	query := h.Rebind(`SELECT * FROM notifications WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// MarkNotificationRead implements store.NotificationStore. Scoped to the
// recipient so users can't touch each other's notifications.
func (*notificationStore) MarkNotificationRead(ctx context.Context, h db.Handler, user, id int64) error {
	query := h.Rebind(`
		UPDATE notifications
		SET
		  read = true
		WHERE
		  id = ?
		  AND recipient_id = ?;
	`)
	_, err := h.ExecContext(ctx, query, id, user)
	return err
}

// MarkAllNotificationsRead implements store.NotificationStore.
func (*notificationStore) MarkAllNotificationsRead(ctx context.Context, h db.Handler, user int64) error {
	query := h.Rebind(`
		UPDATE notifications
		SET
		  read = true
		WHERE
		  recipient_id = ?
		  AND read = false;
	`)
	_, err := h.ExecContext(ctx, query, user)
	return err
}

// DeleteReadNotificationsBefore implements store.NotificationStore.
func (*notificationStore) DeleteReadNotificationsBefore(ctx context.Context, h db.Handler, cutoff time.Time) (int64, error) {
	query := h.Rebind(`
		DELETE FROM notifications
		WHERE
		  read = true
		  AND created_at < ?;
	`)
	r, err := h.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return r.RowsAffected()
}
