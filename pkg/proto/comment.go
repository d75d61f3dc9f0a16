package proto

import "time"

// Comment represents a comment on a task.
type Comment struct {
	ID        int64           `json:"id"`
	TaskID    int64           `json:"taskId"`
	AuthorID  int64           `json:"authorId"`
	Content   string          `json:"content"`
	Reactions []ReactionGroup `json:"reactions"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ReactionGroup is the client view of a comment's reactions for one
// emoji: who reacted and how many. A user appears at most once per group.
type ReactionGroup struct {
	Emoji string  `json:"emoji"`
	Count int     `json:"count"`
	Users []int64 `json:"users"`
}
