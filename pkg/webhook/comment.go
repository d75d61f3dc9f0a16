package webhook

import (
	"context"
	"time"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
)

// CommentEvent is a comment event.
type CommentEvent struct {
	Common

	// Task is the task the comment belongs to.
	Task Task `json:"task" url:"task"`
	// Comment is the comment.
	Comment Comment `json:"comment" url:"comment"`
}

// Comment is the comment payload of a webhook event.
type Comment struct {
	ID        int64     `json:"id" url:"id"`
	AuthorID  int64     `json:"author_id" url:"author_id"`
	Content   string    `json:"content" url:"content"`
	CreatedAt time.Time `json:"created_at" url:"created_at"`
}

// NewCommentEvent builds a comment event payload.
func NewCommentEvent(ctx context.Context, user proto.User, t models.Task, c models.Comment) (CommentEvent, error) {
	te, err := NewTaskEvent(ctx, user, t, "")
	if err != nil {
		return CommentEvent{}, db.WrapError(err)
	}

	payload := CommentEvent{
		Common: te.Common,
		Task:   te.Task,
		Comment: Comment{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		},
	}
	payload.EventType = EventComment

	return payload, nil
}
