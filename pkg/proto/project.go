package proto

import "time"

// ProjectStatus is a project's lifecycle state.
type ProjectStatus string

// Project statuses.
const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Project represents a project inside a workspace.
type Project struct {
	ID          int64         `json:"id"`
	WorkspaceID int64         `json:"workspaceId"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ProjectPatch is a partial project metadata update. Only non-nil fields
// are written.
type ProjectPatch struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	StartDate   *time.Time     `json:"startDate,omitempty"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	Tags        *[]string      `json:"tags,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil &&
		p.StartDate == nil && p.DueDate == nil && p.Tags == nil
}
