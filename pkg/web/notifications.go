package web

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/proto"
)

// NotificationsController registers the notification routes.
func NotificationsController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/notifications", listNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications/unread-count", getUnreadCount).Methods(http.MethodGet)
	r.HandleFunc("/notifications/mark-all-read", markAllNotificationsRead).Methods(http.MethodPatch)
	r.HandleFunc("/notifications/{id}/read", markNotificationRead).Methods(http.MethodPatch)
}

func listNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	notifications, err := be.Notifications(ctx, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, notifications)
}

func getUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	count, err := be.UnreadNotificationCount(ctx, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func markNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.MarkNotificationRead(ctx, *user, id); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	if err := be.MarkAllNotificationsRead(ctx, *user); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
