package store

import (
	"context"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// WorkspaceStore is a store for workspaces and their memberships.
type WorkspaceStore interface {
	CreateWorkspace(ctx context.Context, h db.Handler, owner int64, name, description, color, contextType string, contextID int64) (models.Workspace, error)
	GetWorkspaceByID(ctx context.Context, h db.Handler, id int64) (models.Workspace, error)
	ListWorkspacesByContext(ctx context.Context, h db.Handler, contextType string, contextID int64) ([]models.Workspace, error)
	DeleteWorkspaceByID(ctx context.Context, h db.Handler, id int64) error

	ListWorkspaceMembers(ctx context.Context, h db.Handler, workspace int64) ([]models.WorkspaceMember, error)
	GetWorkspaceMember(ctx context.Context, h db.Handler, workspace, user int64) (models.WorkspaceMember, error)
	AddWorkspaceMember(ctx context.Context, h db.Handler, workspace, user int64, role access.Role) error
	RemoveWorkspaceMember(ctx context.Context, h db.Handler, workspace, user int64) error
}
