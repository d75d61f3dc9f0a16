package jobs

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/store"
)

func init() {
	Register("notification-prune", notificationPrune{})
}

// notificationPrune deletes read notifications older than the configured
// retention window.
type notificationPrune struct{}

var _ Runner = notificationPrune{}

// Spec implements Runner.
func (notificationPrune) Spec(ctx context.Context) string {
	return config.FromContext(ctx).Jobs.NotificationPrune
}

// Func implements Runner.
func (notificationPrune) Func(ctx context.Context) func() {
	cfg := config.FromContext(ctx)
	dbx := db.FromContext(ctx)
	datastore := store.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("jobs.notification-prune")
	return func() {
		retention, err := cfg.Notifications.RetentionDuration()
		if err != nil {
			logger.Error("invalid notification retention", "retention", cfg.Notifications.Retention, "err", err)
			return
		}

		cutoff := time.Now().Add(-retention)
		pruned, err := datastore.DeleteReadNotificationsBefore(ctx, dbx, cutoff)
		if err != nil {
			logger.Error("failed to prune notifications", "err", err)
			return
		}

		if pruned > 0 {
			logger.Info("pruned read notifications", "count", pruned, "cutoff", cutoff)
		}
	}
}
