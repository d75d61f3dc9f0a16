package backend

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/migrate"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/store"
	"github.com/tracksdev/tracks/pkg/store/database"
)

// setupBackend returns a backend wired to a migrated temp SQLite database.
func setupBackend(t *testing.T) (context.Context, *Backend) {
	t.Helper()

	ctx := context.TODO()
	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()

	logger := log.New(io.Discard)
	ctx = log.WithContext(ctx, logger)
	ctx = config.WithContext(ctx, cfg)

	dbpath := filepath.Join(t.TempDir(), "test.db")
	dbx, err := db.Open(ctx, "sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			t.Error(err)
		}
	})

	if err := migrate.Migrate(ctx, dbx); err != nil {
		t.Fatal(err)
	}

	ctx = db.WithContext(ctx, dbx)
	datastore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, datastore)
	be := New(ctx, cfg, dbx, datastore)
	ctx = WithContext(ctx, be)

	// Drain the notification pipeline before the database closes.
	t.Cleanup(be.Wait)

	return ctx, be
}

// mustCreateUser creates a user or fails the test.
func mustCreateUser(t *testing.T, ctx context.Context, be *Backend, username string) proto.User {
	t.Helper()
	u, err := be.CreateUser(ctx, username, "", username+"@example.com", "hunter2", false)
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

// setupTeamProject creates an org owned by owner with the given extra
// members, a workspace everyone belongs to, and a project inside it with
// the same membership. Collaboration across users needs an org context:
// a personal workspace only ever admits its owner.
func setupTeamProject(t *testing.T, ctx context.Context, be *Backend, owner proto.User, members ...proto.User) proto.Project {
	t.Helper()

	org, err := be.CreateOrg(ctx, owner, "Acme", "")
	if err != nil {
		t.Fatal(err)
	}
	c, err := be.ResolveContext(ctx, owner, &proto.ContextRef{Type: proto.ContextOrganization, ID: org.ID})
	if err != nil {
		t.Fatal(err)
	}

	w, err := be.CreateWorkspace(ctx, owner, c, "Workspace", "", "")
	if err != nil {
		t.Fatal(err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if _, err := be.AddOrgMember(ctx, owner, org.ID, m.Email, access.Member); err != nil {
			t.Fatal(err)
		}
		if err := be.AddWorkspaceMember(ctx, owner, w.ID, m.ID); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, m.ID)
	}

	p, err := be.CreateProject(ctx, owner, c, w.ID, "Project", "", "", nil, nil, nil, ids)
	if err != nil {
		t.Fatal(err)
	}
	return p
}
