package backend

import (
	"context"
	"errors"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/utils"
)

func workspaceFromModel(m models.Workspace) proto.Workspace {
	return proto.Workspace{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description.String,
		Color:       m.Color.String,
		Context: proto.ContextRef{
			Type: proto.ContextType(m.ContextType),
			ID:   m.ContextID,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CreateWorkspace creates a workspace inside the resolved context. Any
// member of the context may create one; the creator becomes the
// workspace's owner.
func (b *Backend) CreateWorkspace(ctx context.Context, user proto.User, c proto.Context, name, description, color string) (proto.Workspace, error) {
	if err := utils.ValidateName(name); err != nil {
		return proto.Workspace{}, errors.Join(proto.ErrInvalidInput, err)
	}
	if c.Role < access.Member {
		return proto.Workspace{}, proto.ErrUnauthorized
	}

	var m models.Workspace
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = b.store.CreateWorkspace(ctx, tx, user.ID, name, description, color, string(c.Type), c.ID)
		return db.WrapError(err)
	}); err != nil {
		return proto.Workspace{}, err
	}

	return workspaceFromModel(m), nil
}

// Workspaces lists the workspaces of the resolved context.
func (b *Backend) Workspaces(ctx context.Context, c proto.Context) ([]proto.Workspace, error) {
	workspaces, err := b.store.ListWorkspacesByContext(ctx, b.db, string(c.Type), c.ID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Workspace, 0, len(workspaces))
	for _, w := range workspaces {
		r = append(r, workspaceFromModel(w))
	}
	return r, nil
}

// WorkspaceByID returns a workspace the user can read: any member of the
// workspace's context.
func (b *Backend) WorkspaceByID(ctx context.Context, user proto.User, id int64) (proto.Workspace, error) {
	m, err := b.workspaceForUser(ctx, user, id)
	if err != nil {
		return proto.Workspace{}, err
	}
	return workspaceFromModel(m), nil
}

// workspaceForUser fetches a workspace and checks that the user belongs
// to its context. Workspaces outside the user's contexts read as not
// found, they are invisible, not forbidden.
func (b *Backend) workspaceForUser(ctx context.Context, user proto.User, id int64) (models.Workspace, error) {
	m, err := b.store.GetWorkspaceByID(ctx, b.db, id)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return models.Workspace{}, proto.ErrWorkspaceNotFound
		}
		return models.Workspace{}, db.WrapError(err)
	}

	if b.roleInContext(ctx, user, m.ContextType, m.ContextID) == access.NoRole {
		return models.Workspace{}, proto.ErrWorkspaceNotFound
	}

	return m, nil
}

// workspaceRole returns the user's role within a workspace, falling back
// to context membership for read access.
func (b *Backend) workspaceRole(ctx context.Context, user proto.User, w models.Workspace) access.Role {
	if m, err := b.store.GetWorkspaceMember(ctx, b.db, w.ID, user.ID); err == nil {
		return access.Role(m.Role)
	}
	if b.roleInContext(ctx, user, w.ContextType, w.ContextID) >= access.Member {
		return access.Member
	}
	return access.NoRole
}

// WorkspaceMembers lists the members of a workspace with their roles,
// each user exactly once.
func (b *Backend) WorkspaceMembers(ctx context.Context, user proto.User, id int64) ([]proto.Member, error) {
	if _, err := b.workspaceForUser(ctx, user, id); err != nil {
		return nil, err
	}

	members, err := b.store.ListWorkspaceMembers(ctx, b.db, id)
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

// AddWorkspaceMember adds a context member to a workspace. Only the
// workspace owner or a context admin may do this, and the user must
// already belong to the workspace's context.
func (b *Backend) AddWorkspaceMember(ctx context.Context, actor proto.User, workspace, member int64) error {
	w, err := b.workspaceForUser(ctx, actor, workspace)
	if err != nil {
		return err
	}

	if b.workspaceRole(ctx, actor, w) < access.Owner &&
		b.roleInContext(ctx, actor, w.ContextType, w.ContextID) < access.Admin {
		return proto.ErrUnauthorized
	}

	u, err := b.UserByID(ctx, member)
	if err != nil {
		return err
	}
	if b.roleInContext(ctx, u, w.ContextType, w.ContextID) == access.NoRole {
		return proto.ErrNotMember
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.AddWorkspaceMember(ctx, tx, workspace, member, access.Member))
	}); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return proto.ErrMemberExists
		}
		return err
	}

	return nil
}

// DeleteWorkspace deletes a workspace and cascades through its projects
// and tasks. Only the workspace owner or a context admin may delete.
func (b *Backend) DeleteWorkspace(ctx context.Context, actor proto.User, id int64) error {
	w, err := b.workspaceForUser(ctx, actor, id)
	if err != nil {
		return err
	}

	if b.workspaceRole(ctx, actor, w) < access.Owner &&
		b.roleInContext(ctx, actor, w.ContextType, w.ContextID) < access.Admin {
		return proto.ErrUnauthorized
	}

	return b.deleteWorkspaceCascade(ctx, id)
}

// deleteWorkspaceCascade deletes a workspace's projects child-first, then
// the workspace itself. The cascade is best effort: a failed project
// delete is logged and does not restore the projects already gone.
func (b *Backend) deleteWorkspaceCascade(ctx context.Context, id int64) error {
	projects, err := b.store.ListProjectsByWorkspace(ctx, b.db, id)
	if err != nil {
		return db.WrapError(err)
	}

	for _, p := range projects {
		if err := b.deleteProjectCascade(ctx, p.ID); err != nil {
			b.logger.Error("cascade failed deleting project", "workspace", id, "project", p.ID, "err", err)
		}
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.DeleteWorkspaceByID(ctx, tx, id))
	})
}
