package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/proto"
)

// WorkspacesController registers the workspace routes.
func WorkspacesController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/workspaces", listWorkspaces).Methods(http.MethodGet)
	r.HandleFunc("/workspaces", postWorkspace).Methods(http.MethodPost)
	r.HandleFunc("/workspaces/{id}", getWorkspace).Methods(http.MethodGet)
	r.HandleFunc("/workspaces/{id}", deleteWorkspace).Methods(http.MethodDelete)
	r.HandleFunc("/workspaces/{id}/members", listWorkspaceMembers).Methods(http.MethodGet)
	r.HandleFunc("/workspaces/{id}/members", postWorkspaceMember).Methods(http.MethodPost)
}

func listWorkspaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	c, err := resolveContext(r, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	workspaces, err := be.Workspaces(ctx, c)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, workspaces)
}

func postWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	c, err := resolveContext(r, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	workspace, err := be.CreateWorkspace(ctx, *user, c, req.Name, req.Description, req.Color)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, workspace)
}

func getWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	workspace, err := be.WorkspaceByID(ctx, *user, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, workspace)
}

func deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.DeleteWorkspace(ctx, *user, id); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listWorkspaceMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	members, err := be.WorkspaceMembers(ctx, *user, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, members)
}

func postWorkspaceMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		UserID int64 `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.AddWorkspaceMember(ctx, *user, id, req.UserID); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}
