package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/proto"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{proto.ErrInvalidInput, http.StatusUnprocessableEntity},
		{proto.ErrInvalidContextType, http.StatusUnprocessableEntity},
		{errors.Join(proto.ErrInvalidInput, errors.New("title cannot be empty")), http.StatusUnprocessableEntity},
		{proto.ErrInvalidPassword, http.StatusUnauthorized},
		{proto.ErrTokenExpired, http.StatusUnauthorized},
		{proto.ErrTokenNotFound, http.StatusUnauthorized},
		{proto.ErrUnauthorized, http.StatusForbidden},
		{proto.ErrUserNotFound, http.StatusNotFound},
		{proto.ErrWorkspaceNotFound, http.StatusNotFound},
		{proto.ErrProjectNotFound, http.StatusNotFound},
		{proto.ErrTaskNotFound, http.StatusNotFound},
		{db.ErrRecordNotFound, http.StatusNotFound},
		{proto.ErrMemberExists, http.StatusConflict},
		{proto.ErrNotMember, http.StatusConflict},
		{proto.ErrOwnedOrgs, http.StatusConflict},
		{db.ErrDuplicateKey, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRenderErrorHidesInternalDetails(t *testing.T) {
	is := is.New(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	renderError(w, r, errors.New("pq: connection refused"))

	is.Equal(w.Code, http.StatusInternalServerError)
	is.True(!strings.Contains(w.Body.String(), "connection refused"))
	is.True(strings.Contains(w.Body.String(), "internal server error"))
}

func TestRenderErrorClientError(t *testing.T) {
	is := is.New(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	renderError(w, r, proto.ErrTaskNotFound)

	is.Equal(w.Code, http.StatusNotFound)
	is.Equal(w.Header().Get("Content-Type"), "application/json")
	is.True(strings.Contains(w.Body.String(), proto.ErrTaskNotFound.Error()))
}
