package backend

import (
	"context"
	"errors"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/proto"
)

// PersonalContext returns the user's personal context. Every user owns
// their personal space.
func (b *Backend) PersonalContext(user proto.User) proto.Context {
	return proto.Context{
		Type: proto.ContextPersonal,
		ID:   user.ID,
		Name: user.DisplayName,
		Role: access.Owner,
	}
}

// ResolveContext resolves the active context for a request. A requested
// organization context requires membership, there is no silent fallback.
// Without an explicit request the user's persisted last context is used,
// falling back to the personal context when it is absent or stale.
func (b *Backend) ResolveContext(ctx context.Context, user proto.User, requested *proto.ContextRef) (proto.Context, error) {
	if requested != nil {
		return b.resolveRef(ctx, user, *requested)
	}

	m, err := b.store.GetUserByID(ctx, b.db, user.ID)
	if err != nil {
		return proto.Context{}, db.WrapError(err)
	}

	if !m.LastContextType.Valid || !m.LastContextID.Valid {
		return b.PersonalContext(user), nil
	}

	last := proto.ContextRef{
		Type: proto.ContextType(m.LastContextType.String),
		ID:   m.LastContextID.Int64,
	}
	c, err := b.resolveRef(ctx, user, last)
	if err != nil {
		// The persisted context is stale: the org is gone or the user was
		// removed from it.
		if errors.Is(err, proto.ErrUnauthorized) || errors.Is(err, proto.ErrOrgNotFound) {
			return b.PersonalContext(user), nil
		}
		return proto.Context{}, err
	}

	return c, nil
}

// SwitchContext resolves the requested context and persists it as the
// user's last active context.
func (b *Backend) SwitchContext(ctx context.Context, user proto.User, ref proto.ContextRef) (proto.Context, error) {
	c, err := b.resolveRef(ctx, user, ref)
	if err != nil {
		return proto.Context{}, err
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.SetUserLastContext(ctx, tx, user.ID, string(c.Type), c.ID))
	}); err != nil {
		return proto.Context{}, err
	}

	b.cache.Delete(user.ID)
	return c, nil
}

// resolveRef resolves a context reference into a full context, checking
// that the user belongs to it.
func (b *Backend) resolveRef(ctx context.Context, user proto.User, ref proto.ContextRef) (proto.Context, error) {
	switch ref.Type {
	case proto.ContextPersonal:
		if ref.ID != 0 && ref.ID != user.ID {
			return proto.Context{}, proto.ErrUnauthorized
		}
		return b.PersonalContext(user), nil
	case proto.ContextOrganization:
		o, err := b.store.GetOrgByID(ctx, b.db, ref.ID)
		if err != nil {
			if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
				return proto.Context{}, proto.ErrOrgNotFound
			}
			return proto.Context{}, db.WrapError(err)
		}

		m, err := b.store.GetOrgMember(ctx, b.db, o.ID, user.ID)
		if err != nil {
			if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
				return proto.Context{}, proto.ErrUnauthorized
			}
			return proto.Context{}, db.WrapError(err)
		}

		return proto.Context{
			Type: proto.ContextOrganization,
			ID:   o.ID,
			Name: o.Name,
			Role: access.Role(m.Role),
		}, nil
	default:
		return proto.Context{}, errors.Join(proto.ErrInvalidInput, proto.ErrInvalidContextType)
	}
}

// ContextMembers lists the members of a context with their roles. For a
// personal context that is just the user themselves.
func (b *Backend) ContextMembers(ctx context.Context, user proto.User, c proto.Context) ([]proto.Member, error) {
	switch c.Type {
	case proto.ContextPersonal:
		return []proto.Member{{User: user, Role: access.Owner}}, nil
	case proto.ContextOrganization:
		members, err := b.store.ListOrgMembers(ctx, b.db, c.ID)
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
	default:
		return nil, proto.ErrInvalidContextType
	}
}

// contextMemberIDs returns the effective membership of a context as a
// role-by-user map.
func (b *Backend) contextMemberIDs(ctx context.Context, c proto.Context) (map[int64]access.Role, error) {
	switch c.Type {
	case proto.ContextPersonal:
		return map[int64]access.Role{c.ID: access.Owner}, nil
	case proto.ContextOrganization:
		members, err := b.store.ListOrgMembers(ctx, b.db, c.ID)
		if err != nil {
			return nil, db.WrapError(err)
		}

		r := make(map[int64]access.Role, len(members))
		for _, m := range members {
			r[m.UserID] = access.Role(m.Role)
		}
		return r, nil
	default:
		return nil, proto.ErrInvalidContextType
	}
}

// roleInContext returns the user's role inside the context referenced by
// type and id, or access.NoRole when the user doesn't belong to it.
func (b *Backend) roleInContext(ctx context.Context, user proto.User, contextType string, contextID int64) access.Role {
	switch proto.ContextType(contextType) {
	case proto.ContextPersonal:
		if contextID == user.ID {
			return access.Owner
		}
	case proto.ContextOrganization:
		m, err := b.store.GetOrgMember(ctx, b.db, contextID, user.ID)
		if err == nil {
			return access.Role(m.Role)
		}
	}
	return access.NoRole
}
