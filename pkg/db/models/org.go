package models

import (
	"database/sql"
	"time"
)

// Organization represents an organization in the system.
type Organization struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// OrganizationMember represents a member of an organization. The owner is
// a regular member row holding the owner role, there is no separate owner
// pointer.
type OrganizationMember struct {
	ID             int64     `db:"id"`
	OrganizationID int64     `db:"organization_id"`
	UserID         int64     `db:"user_id"`
	Role           int       `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
