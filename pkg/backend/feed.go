package backend

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/store"
)

// fieldChange describes one field mutation for the activity log.
type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

// recordActivity appends one immutable activity entry. It runs inside
// the mutation's transaction: the activity must be durable before the
// mutation response is returned.
func (b *Backend) recordActivity(ctx context.Context, h db.Handler, task int64, action string, change *fieldChange, actor int64) error {
	var field, oldValue, newValue sql.NullString
	if change != nil {
		field = sql.NullString{String: change.field, Valid: true}
		oldValue = sql.NullString{String: change.oldValue, Valid: change.oldValue != ""}
		newValue = sql.NullString{String: change.newValue, Valid: change.newValue != ""}
	}

	_, err := b.store.CreateActivity(ctx, h, task, action, field, oldValue, newValue, actor)
	if err == nil {
		activityCounter.WithLabelValues(action).Inc()
	}
	return db.WrapError(err)
}

// notifyTask fans out notifications for a task event in the background.
// Recipients are the task's watchers, assignees, and any mentioned
// users, minus the actor, deduplicated. Fanout is best effort: failures
// are logged and never affect the mutation that triggered them.
func (b *Backend) notifyTask(ctx context.Context, t models.Task, actor proto.User, typ, title, message string, mentioned []int64) {
	b.manager.Go(func(bctx context.Context) {
		defer recoverPanic(b.logger, "notification fanout")

		watchers, err := b.store.ListTaskWatchers(bctx, b.db, t.ID)
		if err != nil {
			b.logger.Error("failed to list watchers for fanout", "task", t.ID, "err", err)
			return
		}
		assignees, err := b.store.ListTaskAssignees(bctx, b.db, t.ID)
		if err != nil {
			b.logger.Error("failed to list assignees for fanout", "task", t.ID, "err", err)
			return
		}

		seen := map[int64]struct{}{actor.ID: {}}
		var recipients []int64
		for _, set := range [][]int64{watchers, assignees, mentioned} {
			for _, id := range set {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				recipients = append(recipients, id)
			}
		}

		b.createNotifications(bctx, t, typ, title, message, recipients)
	})
}

// notifyUsers sends one notification per given recipient, skipping the
// actor. Best effort, in the background.
func (b *Backend) notifyUsers(ctx context.Context, t models.Task, actor proto.User, recipients []int64, typ, title, message string) {
	b.manager.Go(func(bctx context.Context) {
		defer recoverPanic(b.logger, "notification fanout")

		var filtered []int64
		for _, id := range dedup(recipients) {
			if id != actor.ID {
				filtered = append(filtered, id)
			}
		}

		b.createNotifications(bctx, t, typ, title, message, filtered)
	})
}

func (b *Backend) createNotifications(ctx context.Context, t models.Task, typ, title, message string, recipients []int64) {
	taskID := sql.NullInt64{Int64: t.ID, Valid: true}
	projectID := sql.NullInt64{Int64: t.ProjectID, Valid: true}

	for _, id := range recipients {
		if _, err := b.store.CreateNotification(ctx, b.db, id, typ, title, message, taskID, projectID, sql.NullInt64{}); err != nil {
			b.logger.Error("failed to create notification", "task", t.ID, "recipient", id, "err", err)
			continue
		}
		notificationCounter.WithLabelValues(typ).Inc()
	}
}

// parseMentions resolves @-mentions in a comment body against the
// project's member display names. A member matches when their display
// name follows the @ exactly, case-insensitively. Longer names are tried
// first so "@David Lee" matches the member "David Lee" rather than a
// member named "David".
func (b *Backend) parseMentions(ctx context.Context, project int64, content string) []int64 {
	members, err := b.store.ListProjectMembers(ctx, b.db, project)
	if err != nil {
		b.logger.Error("failed to list members for mention parsing", "project", project, "err", err)
		return nil
	}

	type candidate struct {
		id   int64
		name string
	}
	candidates := make([]candidate, 0, len(members))
	for _, m := range members {
		u, err := b.UserByID(ctx, m.UserID)
		if err != nil || u.DisplayName == "" {
			continue
		}
		candidates = append(candidates, candidate{id: u.ID, name: strings.ToLower(u.DisplayName)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return len(candidates[i].name) > len(candidates[j].name)
	})

	lower := strings.ToLower(content)
	seen := map[int64]struct{}{}
	var mentioned []int64
	for i := 0; i < len(lower); i++ {
		if lower[i] != '@' {
			continue
		}
		rest := lower[i+1:]
		for _, c := range candidates {
			if !strings.HasPrefix(rest, c.name) {
				continue
			}
			// The name must not continue into more letters, otherwise
			// "@David" would match inside "@Davidson".
			tail := rest[len(c.name):]
			if tail != "" && isWordByte(tail[0]) {
				continue
			}
			if _, ok := seen[c.id]; !ok {
				seen[c.id] = struct{}{}
				mentioned = append(mentioned, c.id)
			}
			break
		}
	}
	return mentioned
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// pipelineContext attaches the backend's config, database, store, and
// logger to a background context so pipeline code can reach them the
// same way request code does.
func (b *Backend) pipelineContext(ctx context.Context) context.Context {
	ctx = config.WithContext(ctx, b.cfg)
	ctx = db.WithContext(ctx, b.db)
	ctx = store.WithContext(ctx, b.store)
	ctx = log.WithContext(ctx, b.logger)
	return ctx
}

// recoverPanic keeps a pipeline goroutine from taking the process down.
func recoverPanic(logger *log.Logger, what string) {
	if r := recover(); r != nil {
		logger.Error("panic in "+what, "panic", r)
	}
}

// Wait drains the backend's background pipeline. Used by tests and
// graceful shutdown.
func (b *Backend) Wait() {
	b.manager.Wait()
}
