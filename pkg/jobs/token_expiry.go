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
	Register("token-expiry", tokenExpiry{})
}

// tokenExpiry deletes access tokens past their expiry date.
type tokenExpiry struct{}

var _ Runner = tokenExpiry{}

// Spec implements Runner.
func (tokenExpiry) Spec(ctx context.Context) string {
	return config.FromContext(ctx).Jobs.TokenExpiry
}

// Func implements Runner.
func (tokenExpiry) Func(ctx context.Context) func() {
	dbx := db.FromContext(ctx)
	datastore := store.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("jobs.token-expiry")
	return func() {
		deleted, err := datastore.DeleteExpiredAccessTokens(ctx, dbx, time.Now())
		if err != nil {
			logger.Error("failed to delete expired tokens", "err", err)
			return
		}

		if deleted > 0 {
			logger.Info("deleted expired access tokens", "count", deleted)
		}
	}
}
