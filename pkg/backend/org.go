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

func orgFromModel(m models.Organization) proto.Org {
	return proto.Org{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateOrg creates a new organization. The creating user becomes its
// owner.
func (b *Backend) CreateOrg(ctx context.Context, user proto.User, name, description string) (proto.Org, error) {
	if err := utils.ValidateName(name); err != nil {
		return proto.Org{}, errors.Join(proto.ErrInvalidInput, err)
	}

	var m models.Organization
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = b.store.CreateOrg(ctx, tx, user.ID, name, description)
		return db.WrapError(err)
	}); err != nil {
		return proto.Org{}, err
	}

	return orgFromModel(m), nil
}

// Orgs lists the organizations the user belongs to.
func (b *Backend) Orgs(ctx context.Context, user proto.User) ([]proto.Org, error) {
	orgs, err := b.store.ListOrgsForUser(ctx, b.db, user.ID)
	if err != nil {
		return nil, db.WrapError(err)
	}

	r := make([]proto.Org, 0, len(orgs))
	for _, o := range orgs {
		r = append(r, orgFromModel(o))
	}
	return r, nil
}

// OrgByID returns an organization the user belongs to.
func (b *Backend) OrgByID(ctx context.Context, user proto.User, id int64) (proto.Org, error) {
	o, err := b.store.GetOrgByID(ctx, b.db, id)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.Org{}, proto.ErrOrgNotFound
		}
		return proto.Org{}, db.WrapError(err)
	}

	if _, err := b.store.GetOrgMember(ctx, b.db, id, user.ID); err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.Org{}, proto.ErrUnauthorized
		}
		return proto.Org{}, db.WrapError(err)
	}

	return orgFromModel(o), nil
}

// orgRole returns the user's role in an organization, or access.NoRole.
func (b *Backend) orgRole(ctx context.Context, org int64, user int64) access.Role {
	m, err := b.store.GetOrgMember(ctx, b.db, org, user)
	if err != nil {
		return access.NoRole
	}
	return access.Role(m.Role)
}

// AddOrgMember adds a user, looked up by email, to an organization.
// Owners and admins may add members. The owner role can only be obtained
// through TransferOwnership.
func (b *Backend) AddOrgMember(ctx context.Context, actor proto.User, org int64, email string, role access.Role) (proto.Member, error) {
	if role != access.Member && role != access.Admin {
		return proto.Member{}, errors.Join(proto.ErrInvalidInput, access.ErrInvalidRole)
	}

	if b.orgRole(ctx, org, actor.ID) < access.Admin {
		return proto.Member{}, proto.ErrUnauthorized
	}

	u, err := b.UserByEmail(ctx, email)
	if err != nil {
		return proto.Member{}, err
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.AddOrgMember(ctx, tx, org, u.ID, role))
	}); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return proto.Member{}, proto.ErrMemberExists
		}
		return proto.Member{}, err
	}

	return proto.Member{User: u, Role: role}, nil
}

// UpdateOrgMemberRole changes a member's role. Only the owner may change
// roles, the owner's own role never changes here, and owner cannot be
// granted this way.
func (b *Backend) UpdateOrgMemberRole(ctx context.Context, actor proto.User, org, member int64, role access.Role) error {
	if role != access.Member && role != access.Admin {
		return errors.Join(proto.ErrInvalidInput, access.ErrInvalidRole)
	}

	if b.orgRole(ctx, org, actor.ID) != access.Owner {
		return proto.ErrUnauthorized
	}

	m, err := b.store.GetOrgMember(ctx, b.db, org, member)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.ErrNotMember
		}
		return db.WrapError(err)
	}
	if access.Role(m.Role) == access.Owner {
		return proto.ErrUnauthorized
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.UpdateOrgMemberRole(ctx, tx, org, member, role))
	})
}

// RemoveOrgMember removes a member from an organization. Owners and
// admins may remove non-owner members; members may remove themselves.
// The owner can never be removed, only replaced via TransferOwnership.
func (b *Backend) RemoveOrgMember(ctx context.Context, actor proto.User, org, member int64) error {
	actorRole := b.orgRole(ctx, org, actor.ID)
	if actorRole < access.Admin && actor.ID != member {
		return proto.ErrUnauthorized
	}

	m, err := b.store.GetOrgMember(ctx, b.db, org, member)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.ErrNotMember
		}
		return db.WrapError(err)
	}
	if access.Role(m.Role) == access.Owner {
		return proto.ErrUnauthorized
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.RemoveOrgMember(ctx, tx, org, member))
	})
}

// TransferOwnership atomically swaps the owner role to an existing
// member: the old owner becomes a member, the new owner becomes the
// owner. It fails when the target is not already a member.
func (b *Backend) TransferOwnership(ctx context.Context, actor proto.User, org, newOwner int64) error {
	if b.orgRole(ctx, org, actor.ID) != access.Owner {
		return proto.ErrUnauthorized
	}
	if newOwner == actor.ID {
		return nil
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := b.store.GetOrgMember(ctx, tx, org, newOwner); err != nil {
			if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
				return proto.ErrNotMember
			}
			return db.WrapError(err)
		}

		if err := b.store.UpdateOrgMemberRole(ctx, tx, org, actor.ID, access.Member); err != nil {
			return db.WrapError(err)
		}

		return db.WrapError(b.store.UpdateOrgMemberRole(ctx, tx, org, newOwner, access.Owner))
	})
}
