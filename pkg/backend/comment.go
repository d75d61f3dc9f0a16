package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/webhook"
)

// commentView assembles the client view of a comment with its reactions
// grouped by emoji.
func (b *Backend) commentView(ctx context.Context, m models.Comment) (proto.Comment, error) {
	groups, err := b.reactionGroups(ctx, m.ID)
	if err != nil {
		return proto.Comment{}, err
	}

	return proto.Comment{
		ID:        m.ID,
		TaskID:    m.TaskID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		Reactions: groups,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// reactionGroups groups a comment's reactions by emoji. Each user holds
// at most one row per (comment, emoji), so counts equal user list sizes.
func (b *Backend) reactionGroups(ctx context.Context, comment int64) ([]proto.ReactionGroup, error) {
	reactions, err := b.store.ListReactionsByComment(ctx, b.db, comment)
	if err != nil {
		return nil, db.WrapError(err)
	}

	order := []string{}
	byEmoji := map[string][]int64{}
	for _, r := range reactions {
		if _, ok := byEmoji[r.Emoji]; !ok {
			order = append(order, r.Emoji)
		}
		byEmoji[r.Emoji] = append(byEmoji[r.Emoji], r.UserID)
	}

	groups := make([]proto.ReactionGroup, 0, len(order))
	for _, emoji := range order {
		users := byEmoji[emoji]
		groups = append(groups, proto.ReactionGroup{
			Emoji: emoji,
			Count: len(users),
			Users: users,
		})
	}
	return groups, nil
}

// CreateComment adds a comment to a task. Any project member may
// comment. Mentioned project members are notified alongside watchers and
// assignees.
func (b *Backend) CreateComment(ctx context.Context, user proto.User, taskID int64, content string) (proto.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return proto.Comment{}, errors.Join(proto.ErrInvalidInput, errors.New("comment content cannot be empty"))
	}

	t, err := b.taskForUser(ctx, user, taskID)
	if err != nil {
		return proto.Comment{}, err
	}
	if b.projectRole(ctx, t.ProjectID, user.ID) < access.Member {
		return proto.Comment{}, proto.ErrUnauthorized
	}

	var m models.Comment
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = b.store.CreateComment(ctx, tx, taskID, user.ID, content)
		if err != nil {
			return db.WrapError(err)
		}

		return b.recordActivity(ctx, tx, taskID, proto.ActivityCommented, nil, user.ID)
	}); err != nil {
		return proto.Comment{}, err
	}

	mentioned := b.parseMentions(ctx, t.ProjectID, content)
	b.notifyTask(ctx, t, user, proto.NotificationTaskComment,
		t.Title, fmt.Sprintf("%s commented on %q", user.DisplayName, t.Title), mentioned)
	b.sendCommentEvent(ctx, user, t, m)

	return b.commentView(ctx, m)
}

// CommentsByTask lists the comments of a task in creation order.
func (b *Backend) CommentsByTask(ctx context.Context, user proto.User, taskID int64) ([]proto.Comment, error) {
	if _, err := b.taskForUser(ctx, user, taskID); err != nil {
		return nil, err
	}

	comments, err := b.store.ListCommentsByTask(ctx, b.db, taskID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Comment, 0, len(comments))
	for _, m := range comments {
		c, err := b.commentView(ctx, m)
		if err != nil {
			return nil, err
		}
		r = append(r, c)
	}
	return r, nil
}

// DeleteComment deletes a comment. Only its author or the project owner
// may delete it.
func (b *Backend) DeleteComment(ctx context.Context, user proto.User, taskID, commentID int64) error {
	t, err := b.taskForUser(ctx, user, taskID)
	if err != nil {
		return err
	}

	m, err := b.store.GetCommentByID(ctx, b.db, commentID)
	if err != nil || m.TaskID != taskID {
		if err == nil || errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.ErrCommentNotFound
		}
		return db.WrapError(err)
	}

	if m.AuthorID != user.ID && b.projectRole(ctx, t.ProjectID, user.ID) < access.Owner {
		return proto.ErrUnauthorized
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.DeleteCommentByID(ctx, tx, commentID))
	})
}

// ToggleReaction toggles the user's reaction on a comment for an emoji:
// adding one already held removes it, so toggling twice restores the
// original state. Returns the comment's reaction groups after the
// toggle.
func (b *Backend) ToggleReaction(ctx context.Context, user proto.User, taskID, commentID int64, emoji string) ([]proto.ReactionGroup, error) {
	if emoji == "" {
		return nil, errors.Join(proto.ErrInvalidInput, errors.New("emoji cannot be empty"))
	}

	t, err := b.taskForUser(ctx, user, taskID)
	if err != nil {
		return nil, err
	}
	if b.projectRole(ctx, t.ProjectID, user.ID) < access.Member {
		return nil, proto.ErrUnauthorized
	}

	m, err := b.store.GetCommentByID(ctx, b.db, commentID)
	if err != nil || m.TaskID != taskID {
		if err == nil || errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return nil, proto.ErrCommentNotFound
		}
		return nil, db.WrapError(err)
	}

	_, err = b.store.GetReaction(ctx, b.db, commentID, user.ID, emoji)
	held := err == nil

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if held {
			return db.WrapError(b.store.RemoveReaction(ctx, tx, commentID, user.ID, emoji))
		}
		return db.WrapError(b.store.AddReaction(ctx, tx, commentID, user.ID, emoji))
	}); err != nil {
		// A concurrent toggle already added this reaction; the user holds
		// it, which is the requested state.
		if !held && errors.Is(err, db.ErrDuplicateKey) {
			return b.reactionGroups(ctx, commentID)
		}
		return nil, err
	}

	return b.reactionGroups(ctx, commentID)
}

// sendCommentEvent fires a comment webhook in the background.
func (b *Backend) sendCommentEvent(ctx context.Context, actor proto.User, t models.Task, c models.Comment) {
	b.manager.Go(func(bctx context.Context) {
		defer recoverPanic(b.logger, "comment webhook")

		bctx = b.pipelineContext(bctx)
		payload, err := webhook.NewCommentEvent(bctx, actor, t, c)
		if err != nil {
			b.logger.Error("failed to build comment webhook payload", "task", t.ID, "err", err)
			return
		}
		if err := webhook.SendEvent(bctx, payload); err != nil {
			b.logger.Error("failed to send comment webhook", "task", t.ID, "err", err)
		}
	})
}
