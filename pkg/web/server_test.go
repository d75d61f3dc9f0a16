package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/migrate"
	"github.com/tracksdev/tracks/pkg/store"
	"github.com/tracksdev/tracks/pkg/store/database"
)

// setupRouter wires a full router against a migrated temp database.
func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	ctx := context.TODO()
	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	ctx = log.WithContext(ctx, logger)
	ctx = config.WithContext(ctx, cfg)

	dbx, err := db.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "test.db"))
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
	be := backend.New(ctx, cfg, dbx, datastore)
	ctx = backend.WithContext(ctx, be)
	t.Cleanup(be.Wait)

	return NewRouter(ctx)
}

func request(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	is := is.New(t)
	h := setupRouter(t)

	w := request(t, h, http.MethodGet, "/health", "", "")
	is.Equal(w.Code, http.StatusOK)
	is.True(strings.Contains(w.Body.String(), `"ok"`))

	w = request(t, h, http.MethodGet, "/livez", "", "")
	is.Equal(w.Code, http.StatusOK)

	w = request(t, h, http.MethodGet, "/readyz", "", "")
	is.Equal(w.Code, http.StatusOK)
}

func TestAuthRequired(t *testing.T) {
	is := is.New(t)
	h := setupRouter(t)

	w := request(t, h, http.MethodGet, "/tasks/assigned", "", "")
	is.Equal(w.Code, http.StatusUnauthorized)
	is.True(strings.Contains(w.Body.String(), "unauthorized"))

	w = request(t, h, http.MethodGet, "/tasks/assigned", "bogus", "")
	is.Equal(w.Code, http.StatusUnauthorized)
}

func TestRegisterLoginFlow(t *testing.T) {
	is := is.New(t)
	h := setupRouter(t)

	w := request(t, h, http.MethodPost, "/auth/register", "",
		`{"username": "alice", "email": "alice@example.com", "password": "hunter2"}`)
	is.Equal(w.Code, http.StatusCreated)

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &session))
	is.True(session.Token != "")
	is.Equal(session.User.Username, "alice")

	// The issued JWT authenticates follow-up requests.
	w = request(t, h, http.MethodGet, "/contexts/me", session.Token, "")
	is.Equal(w.Code, http.StatusOK)
	is.True(strings.Contains(w.Body.String(), `"personal"`))

	// Duplicate registration conflicts.
	w = request(t, h, http.MethodPost, "/auth/register", "",
		`{"username": "alice", "email": "other@example.com", "password": "hunter2"}`)
	is.Equal(w.Code, http.StatusConflict)

	// Login with the right and the wrong password.
	w = request(t, h, http.MethodPost, "/auth/login", "",
		`{"username": "alice", "password": "hunter2"}`)
	is.Equal(w.Code, http.StatusOK)

	w = request(t, h, http.MethodPost, "/auth/login", "",
		`{"username": "alice", "password": "wrong"}`)
	is.Equal(w.Code, http.StatusUnauthorized)
}

func TestAccessTokenAuth(t *testing.T) {
	is := is.New(t)
	h := setupRouter(t)

	w := request(t, h, http.MethodPost, "/auth/register", "",
		`{"username": "alice", "email": "alice@example.com", "password": "hunter2"}`)
	is.Equal(w.Code, http.StatusCreated)
	var session struct {
		Token string `json:"token"`
	}
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &session))

	w = request(t, h, http.MethodPost, "/auth/tokens", session.Token, `{"name": "ci"}`)
	is.Equal(w.Code, http.StatusCreated)
	var created struct {
		Token string `json:"token"`
	}
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &created))
	is.True(strings.HasPrefix(created.Token, "trk_"))

	// The access token works as a bearer token too.
	w = request(t, h, http.MethodGet, "/notifications/unread-count", created.Token, "")
	is.Equal(w.Code, http.StatusOK)
	is.True(strings.Contains(w.Body.String(), `"count"`))
}

func TestUnknownRouteRenders404(t *testing.T) {
	is := is.New(t)
	h := setupRouter(t)

	w := request(t, h, http.MethodGet, "/health", "", "")
	is.Equal(w.Code, http.StatusOK)

	w = request(t, h, http.MethodPost, "/auth/register", "",
		`{"username": "alice", "email": "alice@example.com", "password": "hunter2"}`)
	is.Equal(w.Code, http.StatusCreated)
	var session struct {
		Token string `json:"token"`
	}
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &session))

	w = request(t, h, http.MethodGet, "/nope", session.Token, "")
	is.Equal(w.Code, http.StatusNotFound)
	is.True(strings.Contains(w.Body.String(), "not found"))
}
