package database

import (
	"context"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.WorkspaceStore = (*workspaceStore)(nil)

type workspaceStore struct{}

// CreateWorkspace implements store.WorkspaceStore. The creating user
// becomes the workspace's owner.
func (s *workspaceStore) CreateWorkspace(ctx context.Context, h db.Handler, owner int64, name, description, color, contextType string, contextID int64) (models.Workspace, error) {
	query := h.Rebind(`
		INSERT INTO
		  workspaces (name, description, color, context_type, context_id, updated_at)
		VALUES
		  (?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, name, description, color, contextType, contextID); err != nil {
		return models.Workspace{}, err
	}

	if err := s.AddWorkspaceMember(ctx, h, id, owner, access.Owner); err != nil {
		return models.Workspace{}, err
	}

	return s.GetWorkspaceByID(ctx, h, id)
}

// GetWorkspaceByID implements store.WorkspaceStore.
func (*workspaceStore) GetWorkspaceByID(ctx context.Context, h db.Handler, id int64) (models.Workspace, error) {
	var m models.Workspace
	query := h.Rebind(`SELECT * FROM workspaces WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListWorkspacesByContext implements store.WorkspaceStore.
func (*workspaceStore) ListWorkspacesByContext(ctx context.Context, h db.Handler, contextType string, contextID int64) ([]models.Workspace, error) {
	var m []models.Workspace
	query := h.Rebind(`
		SELECT *
		FROM workspaces
		WHERE
		  context_type = ?
		  AND context_id = ?
		ORDER BY name;
	`)
	err := h.SelectContext(ctx, &m, query, contextType, contextID)
	return m, err
}

// DeleteWorkspaceByID implements store.WorkspaceStore.
func (*workspaceStore) DeleteWorkspaceByID(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM workspaces WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err
}

// ListWorkspaceMembers implements store.WorkspaceStore.
func (*workspaceStore) ListWorkspaceMembers(ctx context.Context, h db.Handler, workspace int64) ([]models.WorkspaceMember, error) {
	var m []models.WorkspaceMember
	query := h.Rebind(`
		SELECT *
		FROM workspace_members
		WHERE workspace_id = ?
		ORDER BY role DESC, user_id;
	`)
	err := h.SelectContext(ctx, &m, query, workspace)
	return m, err
}

// GetWorkspaceMember implements store.WorkspaceStore.
func (*workspaceStore) GetWorkspaceMember(ctx context.Context, h db.Handler, workspace, user int64) (models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	query := h.Rebind(`
		SELECT *
		FROM workspace_members
		WHERE
		  workspace_id = ?
		  AND user_id = ?;
	`)
	err := h.GetContext(ctx, &m, query, workspace, user)
	return m, err
}

// AddWorkspaceMember implements store.WorkspaceStore.
func (*workspaceStore) AddWorkspaceMember(ctx context.Context, h db.Handler, workspace, user int64, role access.Role) error {
	query := h.Rebind(`
		INSERT INTO
		  workspace_members (workspace_id, user_id, role, updated_at)
		VALUES
		  (?, ?, ?, CURRENT_TIMESTAMP);
	`)
	_, err := h.ExecContext(ctx, query, workspace, user, int(role))
	return err
}

// RemoveWorkspaceMember implements store.WorkspaceStore.
func (*workspaceStore) RemoveWorkspaceMember(ctx context.Context, h db.Handler, workspace, user int64) error {
	query := h.Rebind(`
		DELETE FROM workspace_members
		WHERE
		  workspace_id = ?
		  AND user_id = ?;
	`)
	_, err := h.ExecContext(ctx, query, workspace, user)
	return err
}
