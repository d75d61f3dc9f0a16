package models

import (
	"database/sql"
	"time"
)

// Project represents a project. A project belongs to exactly one
// workspace.
type Project struct {
	ID          int64          `db:"id"`
	WorkspaceID int64          `db:"workspace_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Status      string         `db:"status"`
	StartDate   sql.NullTime   `db:"start_date"`
	DueDate     sql.NullTime   `db:"due_date"`
	Tags        sql.NullString `db:"tags"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// ProjectMember represents a member of a project.
type ProjectMember struct {
	ID        int64     `db:"id"`
	ProjectID int64     `db:"project_id"`
	UserID    int64     `db:"user_id"`
	Role      int       `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
