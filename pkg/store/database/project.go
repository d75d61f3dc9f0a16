package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.ProjectStore = (*projectStore)(nil)

type projectStore struct{}

// CreateProject implements store.ProjectStore. The creating user becomes
// the project's owner.
func (s *projectStore) CreateProject(ctx context.Context, h db.Handler, owner, workspace int64, name, description, status, tags string, startDate, dueDate sql.NullTime) (models.Project, error) {
	query := h.Rebind(`
		INSERT INTO
		  projects (workspace_id, name, description, status, start_date, due_date, tags, updated_at)
		VALUES
		  (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, workspace, name, description, status, startDate, dueDate, tags); err != nil {
		return models.Project{}, err
	}

	if err := s.AddProjectMember(ctx, h, id, owner, access.Owner); err != nil {
		return models.Project{}, err
	}

	return s.GetProjectByID(ctx, h, id)
}

// GetProjectByID implements store.ProjectStore.
func (*projectStore) GetProjectByID(ctx context.Context, h db.Handler, id int64) (models.Project, error) {
	var m models.Project
	query := h.Rebind(`SELECT * FROM projects WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListProjectsByWorkspace implements store.ProjectStore.
func (*projectStore) ListProjectsByWorkspace(ctx context.Context, h db.Handler, workspace int64) ([]models.Project, error) {
	var m []models.Project
	query := h.Rebind(`
		SELECT *
		FROM projects
		WHERE workspace_id = ?
		ORDER BY name;
	`)
	err := h.SelectContext(ctx, &m, query, workspace)
	return m, err
}

// UpdateProject implements store.ProjectStore. Only non-nil params are
// written.
func (*projectStore) UpdateProject(ctx context.Context, h db.Handler, id int64, params store.UpdateProjectParams) error {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []interface{}{}

	if params.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *params.Name)
	}
	if params.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *params.Description)
	}
	if params.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *params.Status)
	}
	if params.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *params.StartDate)
	}
	if params.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *params.DueDate)
	}
	if params.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *params.Tags)
	}

	args = append(args, id)
	query := h.Rebind(`UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, args...)
	return err
}

// DeleteProjectByID implements store.ProjectStore.
func (*projectStore) DeleteProjectByID(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM projects WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err
}

// ListProjectMembers implements store.ProjectStore.
func (*projectStore) ListProjectMembers(ctx context.Context, h db.Handler, project int64) ([]models.ProjectMember, error) {
	var m []models.ProjectMember
	query := h.Rebind(`
		SELECT *
		FROM project_members
		WHERE project_id = ?
		ORDER BY role DESC, user_id;
	`)
	err := h.SelectContext(ctx, &m, query, project)
	return m, err
}

// GetProjectMember implements store.ProjectStore.
func (*projectStore) GetProjectMember(ctx context.Context, h db.Handler, project, user int64) (models.ProjectMember, error) {
	var m models.ProjectMember
	query := h.Rebind(`
		SELECT *
		FROM project_members
		WHERE
		  project_id = ?
		  AND user_id = ?;
	`)
	err := h.GetContext(ctx, &m, query, project, user)
	return m, err
}

// AddProjectMember implements store.ProjectStore.
func (*projectStore) AddProjectMember(ctx context.Context, h db.Handler, project, user int64, role access.Role) error {
	query := h.Rebind(`
		INSERT INTO
		  project_members (project_id, user_id, role, updated_at)
		VALUES
		  (?, ?, ?, CURRENT_TIMESTAMP);
	`)
	_, err := h.ExecContext(ctx, query, project, user, int(role))
	return err
}

// RemoveProjectMember implements store.ProjectStore.
func (*projectStore) RemoveProjectMember(ctx context.Context, h db.Handler, project, user int64) error {
	query := h.Rebind(`
		DELETE FROM project_members
		WHERE
		  project_id = ?
		  AND user_id = ?;
	`)
	_, err := h.ExecContext(ctx, query, project, user)
	return err
}
