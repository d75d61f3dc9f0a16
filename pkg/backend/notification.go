package backend

import (
	"context"
	"errors"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
)

func notificationFromModel(m models.Notification) proto.Notification {
	return proto.Notification{
		ID:             m.ID,
		Type:           m.Type,
		Title:          m.Title,
		Message:        m.Message,
		TaskID:         m.TaskID.Int64,
		ProjectID:      m.ProjectID.Int64,
		OrganizationID: m.OrganizationID.Int64,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt,
	}
}

// Notifications lists the user's notifications, newest first.
func (b *Backend) Notifications(ctx context.Context, user proto.User) ([]proto.Notification, error) {
	notifications, err := b.store.ListNotificationsForUser(ctx, b.db, user.ID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Notification, 0, len(notifications))
	for _, m := range notifications {
		r = append(r, notificationFromModel(m))
	}
	return r, nil
}

// UnreadNotificationCount returns the number of unread notifications for
// the user. Clients poll this endpoint.
func (b *Backend) UnreadNotificationCount(ctx context.Context, user proto.User) (int64, error) {
	count, err := b.store.CountUnreadNotifications(ctx, b.db, user.ID)
	if err != nil {
		return 0, db.WrapError(err)
	}
	return count, nil
}

// MarkNotificationRead flips a notification's read flag. Users can only
// touch their own notifications.
func (b *Backend) MarkNotificationRead(ctx context.Context, user proto.User, id int64) error {
	m, err := b.store.GetNotificationByID(ctx, b.db, id)
	if err != nil || m.RecipientID != user.ID {
		if err == nil || errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.ErrNotificationNotFound
		}
		return db.WrapError(err)
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.MarkNotificationRead(ctx, tx, user.ID, id))
	})
}

// MarkAllNotificationsRead marks every unread notification of the user
// as read.
func (b *Backend) MarkAllNotificationsRead(ctx context.Context, user proto.User) error {
	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.MarkAllNotificationsRead(ctx, tx, user.ID))
	})
}
