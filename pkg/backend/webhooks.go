package backend

import (
	"context"
	"errors"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/webhook"
)

// CreateWebhook creates an outbound webhook for a project. Only the
// project owner may manage webhooks.
func (b *Backend) CreateWebhook(ctx context.Context, user proto.User, project int64, url string, contentType webhook.ContentType, secret string, events []webhook.Event, active bool) (webhook.Hook, error) {
	if url == "" {
		return webhook.Hook{}, errors.Join(proto.ErrInvalidInput, errors.New("url cannot be empty"))
	}
	if len(events) == 0 {
		events = webhook.Events()
	}

	if _, err := b.projectForUser(ctx, user, project); err != nil {
		return webhook.Hook{}, err
	}
	if b.projectRole(ctx, project, user.ID) < access.Owner {
		return webhook.Hook{}, proto.ErrUnauthorized
	}

	evs := make([]int, len(events))
	for i, e := range events {
		evs[i] = int(e)
	}

	var hook webhook.Hook
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := b.store.CreateWebhook(ctx, tx, project, url, secret, int(contentType), active, evs)
		if err != nil {
			return db.WrapError(err)
		}

		hook = webhook.Hook{
			Webhook:     m,
			ContentType: webhook.ContentType(m.ContentType), //nolint:gosec
			Events:      events,
		}
		return nil
	}); err != nil {
		return webhook.Hook{}, err
	}

	return hook, nil
}

// ListWebhooks lists a project's webhooks. Only the project owner may
// see them, they carry secrets.
func (b *Backend) ListWebhooks(ctx context.Context, user proto.User, project int64) ([]webhook.Hook, error) {
	if _, err := b.projectForUser(ctx, user, project); err != nil {
		return nil, err
	}
	if b.projectRole(ctx, project, user.ID) < access.Owner {
		return nil, proto.ErrUnauthorized
	}

	webhooks, err := b.store.ListWebhooksByProject(ctx, b.db, project)
	if err != nil {
		return nil, db.WrapError(err)
	}

	hooks := make([]webhook.Hook, len(webhooks))
	for i, m := range webhooks {
		events, err := b.store.ListWebhookEvents(ctx, b.db, m.ID)
		if err != nil {
			return nil, db.WrapError(err)
		}

		evs := make([]webhook.Event, len(events))
		for j, e := range events {
			evs[j] = webhook.Event(e.Event)
		}

		hooks[i] = webhook.Hook{
			Webhook:     m,
			ContentType: webhook.ContentType(m.ContentType), //nolint:gosec
			Events:      evs,
		}
	}

	return hooks, nil
}

// DeleteWebhook deletes a project webhook.
func (b *Backend) DeleteWebhook(ctx context.Context, user proto.User, project, id int64) error {
	if _, err := b.projectForUser(ctx, user, project); err != nil {
		return err
	}
	if b.projectRole(ctx, project, user.ID) < access.Owner {
		return proto.ErrUnauthorized
	}

	err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.DeleteWebhookForProject(ctx, tx, project, id))
	})
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.ErrWebhookNotFound
	}
	return err
}
