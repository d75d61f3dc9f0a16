package database

import (
	"context"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.CommentStore = (*commentStore)(nil)

type commentStore struct{}

// CreateComment implements store.CommentStore.
func (s *commentStore) CreateComment(ctx context.Context, h db.Handler, task, author int64, content string) (models.Comment, error) {
	query := h.Rebind(`
		INSERT INTO
		  comments (task_id, author_id, content, updated_at)
		VALUES
		  (?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, task, author, content); err != nil {
		return models.Comment{}, err
	}

	return s.GetCommentByID(ctx, h, id)
}

// GetCommentByID implements store.CommentStore.
func (*commentStore) GetCommentByID(ctx context.Context, h db.Handler, id int64) (models.Comment, error) {
	var m models.Comment
	query := h.Rebind(`SELECT * FROM comments WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListCommentsByTask implements store.CommentStore.
func (*commentStore) ListCommentsByTask(ctx context.Context, h db.Handler, task int64) ([]models.Comment, error) {
	var m []models.Comment
	query := h.Rebind(`
		SELECT *
		FROM comments
		WHERE task_id = ?
		ORDER BY created_at, id;
	`)
	err := h.SelectContext(ctx, &m, query, task)
	return m, err
}

// DeleteCommentByID implements store.CommentStore.
func (*commentStore) DeleteCommentByID(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM comments WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err
}

// ListReactionsByComment implements store.CommentStore.
func (*commentStore) ListReactionsByComment(ctx context.Context, h db.Handler, comment int64) ([]models.Reaction, error) {
	var m []models.Reaction
	query := h.Rebind(`
		SELECT *
		FROM reactions
		WHERE comment_id = ?
		ORDER BY emoji, user_id;
	`)
	err := h.SelectContext(ctx, &m, query, comment)
	return m, err
}

// GetReaction implements store.CommentStore.
func (*commentStore) GetReaction(ctx context.Context, h db.Handler, comment, user int64, emoji string) (models.Reaction, error) {
	var m models.Reaction
	query := h.Rebind(`
		SELECT *
		FROM reactions
		WHERE
		  comment_id = ?
		  AND user_id = ?
		  AND emoji = ?;
	`)
	err := h.GetContext(ctx, &m, query, comment, user, emoji)
	return m, err
}

// AddReaction implements store.CommentStore.
func (*commentStore) AddReaction(ctx context.Context, h db.Handler, comment, user int64, emoji string) error {
	query := h.Rebind(`
		INSERT INTO
		  reactions (comment_id, user_id, emoji)
		VALUES
		  (?, ?, ?);
	`)
	_, err := h.ExecContext(ctx, query, comment, user, emoji)
	return err
}

// RemoveReaction implements store.CommentStore.
func (*commentStore) RemoveReaction(ctx context.Context, h db.Handler, comment, user int64, emoji string) error {
	query := h.Rebind(`
		DELETE FROM reactions
		WHERE
		  comment_id = ?
		  AND user_id = ?
		  AND emoji = ?;
	`)
	_, err := h.ExecContext(ctx, query, comment, user, emoji)
	return err
}
