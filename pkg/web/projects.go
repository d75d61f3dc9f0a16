package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/webhook"
)

// ProjectsController registers the project and webhook routes.
func ProjectsController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/projects/workspace/{workspaceId}", listProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects", postProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", getProject).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}", patchProject).Methods(http.MethodPatch)
	r.HandleFunc("/projects/{id}", deleteProject).Methods(http.MethodDelete)
	r.HandleFunc("/projects/{id}/members", listProjectMembers).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/members", postProjectMember).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/members/{userId}", deleteProjectMember).Methods(http.MethodDelete)
	r.HandleFunc("/projects/{id}/webhooks", listProjectWebhooks).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/webhooks", postProjectWebhook).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/webhooks/{webhookId}", deleteProjectWebhook).Methods(http.MethodDelete)
}

func listProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	workspace, err := pathID(r, "workspaceId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	projects, err := be.ProjectsByWorkspace(ctx, *user, workspace)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, projects)
}

func postProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	var req struct {
		WorkspaceID int64               `json:"workspaceId"`
		Name        string              `json:"name"`
		Description string              `json:"description"`
		Status      proto.ProjectStatus `json:"status"`
		StartDate   *time.Time          `json:"startDate"`
		DueDate     *time.Time          `json:"dueDate"`
		Tags        []string            `json:"tags"`
		Members     []int64             `json:"members"`
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

	project, err := be.CreateProject(ctx, *user, c, req.WorkspaceID, req.Name, req.Description,
		req.Status, req.StartDate, req.DueDate, req.Tags, req.Members)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, project)
}

func getProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	project, err := be.ProjectByID(ctx, *user, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, project)
}

func patchProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var patch proto.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		renderError(w, r, err)
		return
	}

	project, err := be.UpdateProject(ctx, *user, id, patch)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, project)
}

func deleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.DeleteProject(ctx, *user, id); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listProjectMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	members, err := be.ProjectMembers(ctx, *user, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, members)
}

func postProjectMember(w http.ResponseWriter, r *http.Request) {
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

	if err := be.AddProjectMember(ctx, *user, id, req.UserID); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func deleteProjectMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}
	member, err := pathID(r, "userId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.RemoveProjectMember(ctx, *user, id, member); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listProjectWebhooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	hooks, err := be.ListWebhooks(ctx, *user, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, hooks)
}

func postProjectWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		URL         string              `json:"url"`
		ContentType webhook.ContentType `json:"contentType"`
		Secret      string              `json:"secret"`
		Events      []webhook.Event     `json:"events"`
		Active      *bool               `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	hook, err := be.CreateWebhook(ctx, *user, id, req.URL, req.ContentType, req.Secret, req.Events, active)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, hook)
}

func deleteProjectWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}
	hook, err := pathID(r, "webhookId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.DeleteWebhook(ctx, *user, id, hook); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
