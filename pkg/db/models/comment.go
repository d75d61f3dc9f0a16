package models

import "time"

// Comment represents a comment on a task.
type Comment struct {
	ID        int64     `db:"id"`
	TaskID    int64     `db:"task_id"`
	AuthorID  int64     `db:"author_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Reaction is a single user's reaction to a comment. A user holds at most
// one row per (comment, emoji).
type Reaction struct {
	ID        int64     `db:"id"`
	CommentID int64     `db:"comment_id"`
	UserID    int64     `db:"user_id"`
	Emoji     string    `db:"emoji"`
	CreatedAt time.Time `db:"created_at"`
}
