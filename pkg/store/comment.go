package store

import (
	"context"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// CommentStore is a store for task comments and their reactions.
type CommentStore interface {
	CreateComment(ctx context.Context, h db.Handler, task, author int64, content string) (models.Comment, error)
	GetCommentByID(ctx context.Context, h db.Handler, id int64) (models.Comment, error)
	ListCommentsByTask(ctx context.Context, h db.Handler, task int64) ([]models.Comment, error)
	DeleteCommentByID(ctx context.Context, h db.Handler, id int64) error

	ListReactionsByComment(ctx context.Context, h db.Handler, comment int64) ([]models.Reaction, error)
	GetReaction(ctx context.Context, h db.Handler, comment, user int64, emoji string) (models.Reaction, error)
	AddReaction(ctx context.Context, h db.Handler, comment, user int64, emoji string) error
	RemoveReaction(ctx context.Context, h db.Handler, comment, user int64, emoji string) error
}
