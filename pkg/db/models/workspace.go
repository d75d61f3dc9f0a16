package models

import (
	"database/sql"
	"time"
)

// Workspace represents a workspace. A workspace belongs to exactly one
// context, either a user's personal space or an organization.
type Workspace struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Color       sql.NullString `db:"color"`
	ContextType string         `db:"context_type"`
	ContextID   int64          `db:"context_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// WorkspaceMember represents a member of a workspace.
type WorkspaceMember struct {
	ID          int64     `db:"id"`
	WorkspaceID int64     `db:"workspace_id"`
	UserID      int64     `db:"user_id"`
	Role        int       `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
