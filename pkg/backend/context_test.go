package backend

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/proto"
)

func TestResolveContextDefaultsToPersonal(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	c, err := be.ResolveContext(ctx, alice, nil)
	is.NoErr(err)
	is.Equal(c.Type, proto.ContextPersonal)
	is.Equal(c.ID, alice.ID)
	is.Equal(c.Role, access.Owner)
}

func TestSwitchContextPersists(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)

	c, err := be.SwitchContext(ctx, alice, proto.ContextRef{Type: proto.ContextOrganization, ID: org.ID})
	is.NoErr(err)
	is.Equal(c.ID, org.ID)
	is.Equal(c.Role, access.Owner)

	// Subsequent requests without an explicit context resolve to it.
	c, err = be.ResolveContext(ctx, alice, nil)
	is.NoErr(err)
	is.Equal(c.Type, proto.ContextOrganization)
	is.Equal(c.ID, org.ID)
}

func TestResolveContextRequiresMembership(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	mallory := mustCreateUser(t, ctx, be, "mallory")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)

	// An explicit request for a foreign org fails, no fallback.
	_, err = be.ResolveContext(ctx, mallory, &proto.ContextRef{Type: proto.ContextOrganization, ID: org.ID})
	is.True(errors.Is(err, proto.ErrUnauthorized))

	// Another user's personal space is off limits too.
	_, err = be.ResolveContext(ctx, mallory, &proto.ContextRef{Type: proto.ContextPersonal, ID: alice.ID})
	is.True(errors.Is(err, proto.ErrUnauthorized))
}

func TestResolveContextStaleFallsBackToPersonal(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	org, err := be.CreateOrg(ctx, alice, "Acme", "")
	is.NoErr(err)
	_, err = be.AddOrgMember(ctx, alice, org.ID, bob.Email, access.Member)
	is.NoErr(err)

	_, err = be.SwitchContext(ctx, bob, proto.ContextRef{Type: proto.ContextOrganization, ID: org.ID})
	is.NoErr(err)

	// Bob gets removed; his persisted context goes stale.
	is.NoErr(be.RemoveOrgMember(ctx, alice, org.ID, bob.ID))

	c, err := be.ResolveContext(ctx, bob, nil)
	is.NoErr(err)
	is.Equal(c.Type, proto.ContextPersonal)
	is.Equal(c.ID, bob.ID)
}

func TestResolveContextInvalidType(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	_, err := be.ResolveContext(ctx, alice, &proto.ContextRef{Type: "team", ID: 1})
	is.True(errors.Is(err, proto.ErrInvalidContextType))
}

func TestContextMembersPersonal(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	members, err := be.ContextMembers(ctx, alice, be.PersonalContext(alice))
	is.NoErr(err)
	is.Equal(len(members), 1)
	is.Equal(members[0].User.ID, alice.ID)
	is.Equal(members[0].Role, access.Owner)
}
