package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/proto"
)

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

// renderJSON writes v as a JSON response.
func renderJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) // nolint: errcheck
}

// errorBody is the single error payload every failed request carries.
type errorBody struct {
	Error string `json:"error"`
}

// renderError maps a backend error onto its HTTP status and writes the
// JSON error body.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.FromContext(r.Context()).Error("request failed", "err", err)
		renderJSON(w, code, errorBody{Error: "internal server error"})
		return
	}

	renderJSON(w, code, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, proto.ErrInvalidInput),
		errors.Is(err, access.ErrInvalidRole),
		errors.Is(err, proto.ErrInvalidContextType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, proto.ErrInvalidPassword),
		errors.Is(err, proto.ErrTokenExpired),
		errors.Is(err, proto.ErrTokenNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, proto.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, proto.ErrUserNotFound),
		errors.Is(err, proto.ErrOrgNotFound),
		errors.Is(err, proto.ErrWorkspaceNotFound),
		errors.Is(err, proto.ErrProjectNotFound),
		errors.Is(err, proto.ErrTaskNotFound),
		errors.Is(err, proto.ErrCommentNotFound),
		errors.Is(err, proto.ErrNotificationNotFound),
		errors.Is(err, proto.ErrWebhookNotFound),
		errors.Is(err, db.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, proto.ErrMemberExists),
		errors.Is(err, proto.ErrNotMember),
		errors.Is(err, proto.ErrOwnedOrgs),
		errors.Is(err, db.ErrDuplicateKey):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close() // nolint: errcheck
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(proto.ErrInvalidInput, err)
	}
	return nil
}
