package backend

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/store"
	"github.com/tracksdev/tracks/pkg/utils"
	"github.com/tracksdev/tracks/pkg/webhook"
)

func projectFromModel(m models.Project) proto.Project {
	p := proto.Project{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		Name:        m.Name,
		Description: m.Description.String,
		Status:      proto.ProjectStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.StartDate.Valid {
		t := m.StartDate.Time
		p.StartDate = &t
	}
	if m.DueDate.Valid {
		t := m.DueDate.Time
		p.DueDate = &t
	}
	if m.Tags.Valid && m.Tags.String != "" {
		p.Tags = strings.Split(m.Tags.String, ",")
	}
	return p
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateProject creates a project inside a workspace of the resolved
// context. The creator becomes the project's owner; any supplied members
// must already belong to the workspace's effective membership.
func (b *Backend) CreateProject(ctx context.Context, user proto.User, c proto.Context, workspaceID int64, name, description string, status proto.ProjectStatus, startDate, dueDate *time.Time, tags []string, members []int64) (proto.Project, error) {
	if err := utils.ValidateName(name); err != nil {
		return proto.Project{}, errors.Join(proto.ErrInvalidInput, err)
	}
	if status == "" {
		status = proto.ProjectPlanning
	}
	if !status.Valid() {
		return proto.Project{}, errors.Join(proto.ErrInvalidInput, errors.New("invalid project status"))
	}

	w, err := b.workspaceForUser(ctx, user, workspaceID)
	if err != nil {
		return proto.Project{}, err
	}
	if w.ContextType != string(c.Type) || w.ContextID != c.ID {
		return proto.Project{}, proto.ErrWorkspaceNotFound
	}

	eligible, err := b.workspaceMemberIDs(ctx, w)
	if err != nil {
		return proto.Project{}, err
	}
	for _, id := range members {
		if _, ok := eligible[id]; !ok {
			return proto.Project{}, errors.Join(proto.ErrInvalidInput, errors.New("project members must belong to the workspace"))
		}
	}

	var m models.Project
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = b.store.CreateProject(ctx, tx, user.ID, workspaceID, name, description, string(status), strings.Join(tags, ","), nullTime(startDate), nullTime(dueDate))
		if err != nil {
			return db.WrapError(err)
		}

		for _, id := range members {
			if id == user.ID {
				continue
			}
			if err := b.store.AddProjectMember(ctx, tx, m.ID, id, access.Member); err != nil {
				return db.WrapError(err)
			}
		}
		return nil
	}); err != nil {
		return proto.Project{}, err
	}

	return projectFromModel(m), nil
}

// workspaceMemberIDs returns the workspace's effective membership:
// explicit workspace members plus, for personal contexts, the owning
// user. Each user appears once regardless of how many grants they hold.
func (b *Backend) workspaceMemberIDs(ctx context.Context, w models.Workspace) (map[int64]access.Role, error) {
	members, err := b.store.ListWorkspaceMembers(ctx, b.db, w.ID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make(map[int64]access.Role, len(members))
	for _, m := range members {
		if access.Role(m.Role) > r[m.UserID] {
			r[m.UserID] = access.Role(m.Role)
		}
	}
	if w.ContextType == string(proto.ContextPersonal) {
		r[w.ContextID] = access.Owner
	}
	return r, nil
}

// ProjectsByWorkspace lists the projects of a workspace the user can
// read.
func (b *Backend) ProjectsByWorkspace(ctx context.Context, user proto.User, workspaceID int64) ([]proto.Project, error) {
	if _, err := b.workspaceForUser(ctx, user, workspaceID); err != nil {
		return nil, err
	}

	projects, err := b.store.ListProjectsByWorkspace(ctx, b.db, workspaceID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Project, 0, len(projects))
	for _, p := range projects {
		r = append(r, projectFromModel(p))
	}
	return r, nil
}

// ProjectByID returns a project the user can read: any member of the
// parent workspace's context.
func (b *Backend) ProjectByID(ctx context.Context, user proto.User, id int64) (proto.Project, error) {
	m, err := b.projectForUser(ctx, user, id)
	if err != nil {
		return proto.Project{}, err
	}
	return projectFromModel(m), nil
}

// projectForUser fetches a project and checks the user can read it.
// Projects outside the user's contexts read as not found.
func (b *Backend) projectForUser(ctx context.Context, user proto.User, id int64) (models.Project, error) {
	m, err := b.store.GetProjectByID(ctx, b.db, id)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return models.Project{}, proto.ErrProjectNotFound
		}
		return models.Project{}, db.WrapError(err)
	}

	if _, err := b.workspaceForUser(ctx, user, m.WorkspaceID); err != nil {
		return models.Project{}, proto.ErrProjectNotFound
	}

	return m, nil
}

// projectRole returns the user's role within a project, access.NoRole for
// non-members.
func (b *Backend) projectRole(ctx context.Context, project, user int64) access.Role {
	m, err := b.store.GetProjectMember(ctx, b.db, project, user)
	if err != nil {
		return access.NoRole
	}
	return access.Role(m.Role)
}

// UpdateProject patches project metadata (name, description, status,
// dates, tags). Metadata edits are restricted to the project owner.
func (b *Backend) UpdateProject(ctx context.Context, user proto.User, id int64, patch proto.ProjectPatch) (proto.Project, error) {
	if _, err := b.projectForUser(ctx, user, id); err != nil {
		return proto.Project{}, err
	}
	if b.projectRole(ctx, id, user.ID) < access.Owner {
		return proto.Project{}, proto.ErrUnauthorized
	}
	if patch.Empty() {
		return b.ProjectByID(ctx, user, id)
	}

	params := store.UpdateProjectParams{}
	if patch.Name != nil {
		if err := utils.ValidateName(*patch.Name); err != nil {
			return proto.Project{}, errors.Join(proto.ErrInvalidInput, err)
		}
		params.Name = patch.Name
	}
	if patch.Description != nil {
		params.Description = patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return proto.Project{}, errors.Join(proto.ErrInvalidInput, errors.New("invalid project status"))
		}
		s := string(*patch.Status)
		params.Status = &s
	}
	if patch.StartDate != nil {
		t := nullTime(patch.StartDate)
		params.StartDate = &t
	}
	if patch.DueDate != nil {
		t := nullTime(patch.DueDate)
		params.DueDate = &t
	}
	if patch.Tags != nil {
		t := strings.Join(*patch.Tags, ",")
		params.Tags = &t
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.UpdateProject(ctx, tx, id, params))
	}); err != nil {
		return proto.Project{}, err
	}

	return b.ProjectByID(ctx, user, id)
}

// ProjectMembers lists the members of a project with their roles, each
// user exactly once.
func (b *Backend) ProjectMembers(ctx context.Context, user proto.User, id int64) ([]proto.Member, error) {
	if _, err := b.projectForUser(ctx, user, id); err != nil {
		return nil, err
	}

	members, err := b.store.ListProjectMembers(ctx, b.db, id)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Member, 0, len(members))
	for _, m := range members {
		u, err := b.UserByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		r = append(r, proto.Member{User: u, Role: access.Role(m.Role)})
	}
	return r, nil
}

// AddProjectMember adds a workspace member to a project. Only the project
// owner may add members.
func (b *Backend) AddProjectMember(ctx context.Context, actor proto.User, project, member int64) error {
	p, err := b.projectForUser(ctx, actor, project)
	if err != nil {
		return err
	}
	if b.projectRole(ctx, project, actor.ID) < access.Owner {
		return proto.ErrUnauthorized
	}

	w, err := b.store.GetWorkspaceByID(ctx, b.db, p.WorkspaceID)
	if err != nil {
		return db.WrapError(err)
	}
	eligible, err := b.workspaceMemberIDs(ctx, w)
	if err != nil {
		return err
	}
	if _, ok := eligible[member]; !ok {
		return proto.ErrNotMember
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.AddProjectMember(ctx, tx, project, member, access.Member))
	}); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return proto.ErrMemberExists
		}
		return err
	}

	b.sendMemberEvent(ctx, actor, p, member, access.Member, webhook.MemberEventActionAdded)
	return nil
}

// RemoveProjectMember removes a member from a project. Only the project
// owner may remove members, and the owner cannot be removed.
func (b *Backend) RemoveProjectMember(ctx context.Context, actor proto.User, project, member int64) error {
	p, err := b.projectForUser(ctx, actor, project)
	if err != nil {
		return err
	}
	if b.projectRole(ctx, project, actor.ID) < access.Owner {
		return proto.ErrUnauthorized
	}
	if b.projectRole(ctx, project, member) == access.Owner {
		return proto.ErrUnauthorized
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.RemoveProjectMember(ctx, tx, project, member))
	}); err != nil {
		return err
	}

	b.sendMemberEvent(ctx, actor, p, member, access.NoRole, webhook.MemberEventActionRemoved)
	return nil
}

// DeleteProject deletes a project and cascades through its tasks. Only
// the project owner may delete.
func (b *Backend) DeleteProject(ctx context.Context, actor proto.User, id int64) error {
	if _, err := b.projectForUser(ctx, actor, id); err != nil {
		return err
	}
	if b.projectRole(ctx, id, actor.ID) < access.Owner {
		return proto.ErrUnauthorized
	}

	return b.deleteProjectCascade(ctx, id)
}

// deleteProjectCascade deletes a project's tasks child-first, then the
// project itself. Best effort, failures are logged.
func (b *Backend) deleteProjectCascade(ctx context.Context, id int64) error {
	tasks, err := b.store.ListTasksByProject(ctx, b.db, id)
	if err != nil {
		return db.WrapError(err)
	}

	for _, t := range tasks {
		if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
			return db.WrapError(b.store.DeleteTaskByID(ctx, tx, t.ID))
		}); err != nil {
			b.logger.Error("cascade failed deleting task", "project", id, "task", t.ID, "err", err)
		}
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.DeleteProjectByID(ctx, tx, id))
	})
}

// sendMemberEvent fires a member webhook in the background.
func (b *Backend) sendMemberEvent(ctx context.Context, actor proto.User, p models.Project, member int64, role access.Role, action webhook.MemberEventAction) {
	b.manager.Go(func(bctx context.Context) {
		defer recoverPanic(b.logger, "member webhook")

		bctx = b.pipelineContext(bctx)
		payload, err := webhook.NewMemberEvent(bctx, actor, p, member, role, action)
		if err != nil {
			b.logger.Error("failed to build member webhook payload", "project", p.ID, "err", err)
			return
		}
		if err := webhook.SendEvent(bctx, payload); err != nil {
			b.logger.Error("failed to send member webhook", "project", p.ID, "err", err)
		}
	})
}
