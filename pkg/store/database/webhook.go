package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.WebhookStore = (*webhookStore)(nil)

type webhookStore struct{}

// CreateWebhook implements store.WebhookStore.
func (s *webhookStore) CreateWebhook(ctx context.Context, h db.Handler, project int64, url, secret string, contentType int, active bool, events []int) (models.Webhook, error) {
	query := h.Rebind(`
		INSERT INTO
		  webhooks (project_id, url, secret, content_type, active, updated_at)
		VALUES
		  (?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, project, url, secret, contentType, active); err != nil {
		return models.Webhook{}, err
	}

	query = h.Rebind(`
		INSERT INTO
		  webhook_events (webhook_id, event)
		VALUES
		  (?, ?);
	`)
	for _, event := range events {
		if _, err := h.ExecContext(ctx, query, id, event); err != nil {
			return models.Webhook{}, err
		}
	}

	return s.GetWebhookByID(ctx, h, id)
}

// GetWebhookByID implements store.WebhookStore.
func (*webhookStore) GetWebhookByID(ctx context.Context, h db.Handler, id int64) (models.Webhook, error) {
	var m models.Webhook
	query := h.Rebind(`SELECT * FROM webhooks WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListWebhooksByProject implements store.WebhookStore.
func (*webhookStore) ListWebhooksByProject(ctx context.Context, h db.Handler, project int64) ([]models.Webhook, error) {
	var m []models.Webhook
	query := h.Rebind(`
		SELECT *
		FROM webhooks
		WHERE project_id = ?
		ORDER BY id;
	`)
	err := h.SelectContext(ctx, &m, query, project)
	return m, err
}

// ListWebhooksByProjectWhereEvent implements store.WebhookStore. It only
// returns active webhooks subscribed to one of the given events.
func (*webhookStore) ListWebhooksByProjectWhereEvent(ctx context.Context, h db.Handler, project int64, events []int) ([]models.Webhook, error) {
	query, args, err := sqlx.In(`
		SELECT DISTINCT
		  w.*
		FROM
		  webhooks w
		  JOIN webhook_events we ON we.webhook_id = w.id
		WHERE
		  w.project_id = ?
		  AND w.active = true
		  AND we.event IN (?);
	`, project, events)
	if err != nil {
		return nil, err
	}

	var m []models.Webhook
	err = h.SelectContext(ctx, &m, h.Rebind(query), args...)
	return m, err
}

// ListWebhookEvents implements store.WebhookStore.
func (*webhookStore) ListWebhookEvents(ctx context.Context, h db.Handler, webhook int64) ([]models.WebhookEvent, error) {
	var m []models.WebhookEvent
	query := h.Rebind(`
		SELECT *
		FROM webhook_events
		WHERE webhook_id = ?
		ORDER BY event;
	`)
	err := h.SelectContext(ctx, &m, query, webhook)
	return m, err
}

// DeleteWebhookForProject implements store.WebhookStore.
func (*webhookStore) DeleteWebhookForProject(ctx context.Context, h db.Handler, project, id int64) error {
	query := h.Rebind(`
		DELETE FROM webhooks
		WHERE
		  id = ?
		  AND project_id = ?;
	`)
	r, err := h.ExecContext(ctx, query, id, project)
	if err != nil {
		return err
	}

	rows, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return db.ErrRecordNotFound
	}

	return nil
}
