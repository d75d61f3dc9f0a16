package store

import (
	"context"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// WebhookStore is a store for project webhooks.
type WebhookStore interface {
	CreateWebhook(ctx context.Context, h db.Handler, project int64, url, secret string, contentType int, active bool, events []int) (models.Webhook, error)
	GetWebhookByID(ctx context.Context, h db.Handler, id int64) (models.Webhook, error)
	ListWebhooksByProject(ctx context.Context, h db.Handler, project int64) ([]models.Webhook, error)
	ListWebhooksByProjectWhereEvent(ctx context.Context, h db.Handler, project int64, events []int) ([]models.Webhook, error)
	ListWebhookEvents(ctx context.Context, h db.Handler, webhook int64) ([]models.WebhookEvent, error)
	DeleteWebhookForProject(ctx context.Context, h db.Handler, project, id int64) error
}
