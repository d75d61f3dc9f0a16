package backend

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/proto"
)

func orgMembers(t *testing.T, be *Backend, owner proto.User, org proto.Org) map[int64]access.Role {
	t.Helper()
	members, err := be.ContextMembers(be.ctx, owner, proto.Context{Type: proto.ContextOrganization, ID: org.ID})
	if err != nil {
		t.Fatal(err)
	}
	r := make(map[int64]access.Role, len(members))
	for _, m := range members {
		r[m.User.ID] = m.Role
	}
	return r
}

func TestCreateOrgMakesCreatorOwner(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	org, err := be.CreateOrg(ctx, alice, "Acme", "widgets")
	is.NoErr(err)

	members := orgMembers(t, be, alice, org)
	is.Equal(members[alice.ID], access.Owner)
}

func TestAddOrgMember(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)

	m, err := be.AddOrgMember(ctx, alice, org.ID, bob.Email, access.Member)
	is.NoErr(err)
	is.Equal(m.User.ID, bob.ID)
	is.Equal(m.Role, access.Member)

	// Adding the same member again conflicts.
	_, err = be.AddOrgMember(ctx, alice, org.ID, bob.Email, access.Member)
	is.True(errors.Is(err, proto.ErrMemberExists))

	// Owner role cannot be granted directly.
	carol := mustCreateUser(t, ctx, be, "carol")
	_, err = be.AddOrgMember(ctx, alice, org.ID, carol.Email, access.Owner)
	is.True(errors.Is(err, proto.ErrInvalidInput))

	// Plain members cannot add other members.
	_, err = be.AddOrgMember(ctx, bob, org.ID, carol.Email, access.Member)
	is.True(errors.Is(err, proto.ErrUnauthorized))
}

func TestUpdateOrgMemberRole(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)
	_, err = be.AddOrgMember(ctx, alice, org.ID, bob.Email, access.Member)
	is.NoErr(err)

	is.NoErr(be.UpdateOrgMemberRole(ctx, alice, org.ID, bob.ID, access.Admin))

	// Admins still cannot change roles, only the owner can.
	carol := mustCreateUser(t, ctx, be, "carol")
	_, err = be.AddOrgMember(ctx, bob, org.ID, carol.Email, access.Member)
	is.NoErr(err)
	err = be.UpdateOrgMemberRole(ctx, bob, org.ID, carol.ID, access.Admin)
	is.True(errors.Is(err, proto.ErrUnauthorized))

	// The owner's role never changes through this path.
	err = be.UpdateOrgMemberRole(ctx, alice, org.ID, alice.ID, access.Member)
	is.True(errors.Is(err, proto.ErrUnauthorized))
}

func TestRemoveOrgMember(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")
	carol := mustCreateUser(t, ctx, be, "carol")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)
	_, err = be.AddOrgMember(ctx, alice, org.ID, bob.Email, access.Member)
	is.NoErr(err)
	_, err = be.AddOrgMember(ctx, alice, org.ID, carol.Email, access.Member)
	is.NoErr(err)

	// Members may remove themselves.
	is.NoErr(be.RemoveOrgMember(ctx, carol, org.ID, carol.ID))

	// Members may not remove others.
	carol2 := mustCreateUser(t, ctx, be, "dave")
	_, err = be.AddOrgMember(ctx, alice, org.ID, carol2.Email, access.Member)
	is.NoErr(err)
	err = be.RemoveOrgMember(ctx, bob, org.ID, carol2.ID)
	is.True(errors.Is(err, proto.ErrUnauthorized))

	// The owner can never be removed.
	err = be.RemoveOrgMember(ctx, alice, org.ID, alice.ID)
	is.True(errors.Is(err, proto.ErrUnauthorized))
}

func TestTransferOwnership(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)

	// Target must already be a member.
	err = be.TransferOwnership(ctx, alice, org.ID, bob.ID)
	is.True(errors.Is(err, proto.ErrNotMember))

	_, err = be.AddOrgMember(ctx, alice, org.ID, bob.Email, access.Member)
	is.NoErr(err)
	is.NoErr(be.TransferOwnership(ctx, alice, org.ID, bob.ID))

	// Exactly one owner after the swap.
	members := orgMembers(t, be, bob, org)
	is.Equal(members[bob.ID], access.Owner)
	is.Equal(members[alice.ID], access.Member)

	owners := 0
	for _, role := range members {
		if role == access.Owner {
			owners++
		}
	}
	is.Equal(owners, 1)

	// The old owner no longer holds ownership powers.
	err = be.TransferOwnership(ctx, alice, org.ID, alice.ID)
	is.True(errors.Is(err, proto.ErrUnauthorized))
}

func TestTransferOwnershipToSelfIsNoop(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)

	is.NoErr(be.TransferOwnership(ctx, alice, org.ID, alice.ID))
	members := orgMembers(t, be, alice, org)
	is.Equal(members[alice.ID], access.Owner)
}

func TestDeleteAccountBlockedByOwnedOrgs(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)

	err = be.DeleteAccount(ctx, alice)
	is.True(errors.Is(err, proto.ErrOwnedOrgs))

	// After transferring ownership the account can go.
	_, err = be.AddOrgMember(ctx, alice, org.ID, bob.Email, access.Member)
	is.NoErr(err)
	is.NoErr(be.TransferOwnership(ctx, alice, org.ID, bob.ID))
	is.NoErr(be.DeleteAccount(ctx, alice))

	_, err = be.UserByUsername(ctx, "alice")
	is.True(errors.Is(err, proto.ErrUserNotFound))
}
