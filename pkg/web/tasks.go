package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/proto"
)

// TasksController registers the task, comment, and activity routes.
func TasksController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/tasks/assigned", listAssignedTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks/project/{projectId}", listProjectTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks", postTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", getTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", patchTask).Methods(http.MethodPatch)
	r.HandleFunc("/tasks/{id}", deleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}/comments", listComments).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}/comments", postComment).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/comments/{commentId}", deleteComment).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}/comments/{commentId}/reactions", postReaction).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/watchers", postWatcher).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/activities", listActivities).Methods(http.MethodGet)
}

func listAssignedTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	tasks, err := be.AssignedTasks(ctx, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, tasks)
}

func listProjectTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	project, err := pathID(r, "projectId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	tasks, err := be.TasksByProject(ctx, *user, project)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, tasks)
}

func postTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	var req struct {
		ProjectID   int64              `json:"projectId"`
		Title       string             `json:"title"`
		Description string             `json:"description"`
		Status      proto.TaskStatus   `json:"status"`
		Priority    proto.TaskPriority `json:"priority"`
		DueDate     *time.Time         `json:"dueDate"`
		Assignees   []int64            `json:"assignees"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	task, err := be.CreateTask(ctx, *user, req.ProjectID, req.Title, req.Description,
		req.Status, req.Priority, req.DueDate, req.Assignees)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, task)
}

func getTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	task, err := be.TaskByID(ctx, *user, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, task)
}

func patchTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var patch proto.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		renderError(w, r, err)
		return
	}

	task, err := be.PatchTask(ctx, *user, id, patch)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, task)
}

func deleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.DeleteTask(ctx, *user, id); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	comments, err := be.CommentsByTask(ctx, *user, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, comments)
}

func postComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	comment, err := be.CreateComment(ctx, *user, id, req.Content)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, comment)
}

func deleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}
	comment, err := pathID(r, "commentId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.DeleteComment(ctx, *user, id, comment); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func postReaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}
	comment, err := pathID(r, "commentId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	reactions, err := be.ToggleReaction(ctx, *user, id, comment, req.Emoji)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, reactions)
}

func postWatcher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		UserID int64  `json:"userId"`
		Action string `json:"action"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	switch req.Action {
	case "add":
		err = be.WatchTask(ctx, *user, id, req.UserID)
	case "remove":
		err = be.UnwatchTask(ctx, *user, id, req.UserID)
	default:
		err = errors.Join(proto.ErrInvalidInput, fmt.Errorf("invalid watcher action %q", req.Action))
	}
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

func listActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	activities, total, err := be.TaskActivities(ctx, *user, id, page, limit)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{
		"activities": activities,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}
