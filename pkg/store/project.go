package store

import (
	"context"
	"database/sql"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// UpdateProjectParams are the mutable project metadata fields. Nil fields
// are left untouched.
type UpdateProjectParams struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *sql.NullTime
	DueDate     *sql.NullTime
	Tags        *string
}

// ProjectStore is a store for projects and their memberships.
type ProjectStore interface {
	CreateProject(ctx context.Context, h db.Handler, owner, workspace int64, name, description, status, tags string, startDate, dueDate sql.NullTime) (models.Project, error)
	GetProjectByID(ctx context.Context, h db.Handler, id int64) (models.Project, error)
	ListProjectsByWorkspace(ctx context.Context, h db.Handler, workspace int64) ([]models.Project, error)
	UpdateProject(ctx context.Context, h db.Handler, id int64, params UpdateProjectParams) error
	DeleteProjectByID(ctx context.Context, h db.Handler, id int64) error

	ListProjectMembers(ctx context.Context, h db.Handler, project int64) ([]models.ProjectMember, error)
	GetProjectMember(ctx context.Context, h db.Handler, project, user int64) (models.ProjectMember, error)
	AddProjectMember(ctx context.Context, h db.Handler, project, user int64, role access.Role) error
	RemoveProjectMember(ctx context.Context, h db.Handler, project, user int64) error
}
