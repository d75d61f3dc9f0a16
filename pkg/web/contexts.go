package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/proto"
)

// ContextsController registers the context and organization routes.
func ContextsController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/contexts/me", getCurrentContext).Methods(http.MethodGet)
	r.HandleFunc("/contexts/personal-space", getPersonalSpace).Methods(http.MethodGet)
	r.HandleFunc("/contexts/context", putContext).Methods(http.MethodPut)
	r.HandleFunc("/contexts/organizations", listOrganizations).Methods(http.MethodGet)
	r.HandleFunc("/contexts/organizations", postOrganization).Methods(http.MethodPost)
	r.HandleFunc("/contexts/organizations/{id}/members", postOrgMember).Methods(http.MethodPost)
	r.HandleFunc("/contexts/organizations/{id}/members/{userId}", patchOrgMember).Methods(http.MethodPatch)
	r.HandleFunc("/contexts/organizations/{id}/members/{userId}", deleteOrgMember).Methods(http.MethodDelete)
	r.HandleFunc("/contexts/members", listContextMembers).Methods(http.MethodGet)
	r.HandleFunc("/contexts/users/search", searchUsers).Methods(http.MethodGet)
}

// pathID parses the named path variable as an int64.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, errors.Join(proto.ErrInvalidInput, err)
	}
	return id, nil
}

// requestedContext reads an optional context reference from the query
// string. Both contextType and contextId must be present to count.
func requestedContext(r *http.Request) (*proto.ContextRef, error) {
	q := r.URL.Query()
	typ := q.Get("contextType")
	if typ == "" {
		return nil, nil
	}

	ct := proto.ContextType(typ)
	if !ct.Valid() {
		return nil, proto.ErrInvalidContextType
	}

	id, err := strconv.ParseInt(q.Get("contextId"), 10, 64)
	if err != nil {
		return nil, errors.Join(proto.ErrInvalidInput, err)
	}

	return &proto.ContextRef{Type: ct, ID: id}, nil
}

// resolveContext resolves the context the request operates in, honoring an
// explicit contextType/contextId query pair over the persisted one.
func resolveContext(r *http.Request, user proto.User) (proto.Context, error) {
	ref, err := requestedContext(r)
	if err != nil {
		return proto.Context{}, err
	}

	be := backend.FromContext(r.Context())
	return be.ResolveContext(r.Context(), user, ref)
}

func getCurrentContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	c, err := be.ResolveContext(ctx, *user, nil)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, c)
}

func getPersonalSpace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	renderJSON(w, http.StatusOK, be.PersonalContext(*user))
}

func putContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	var req struct {
		ContextType proto.ContextType `json:"contextType"`
		ContextID   int64             `json:"contextId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	c, err := be.SwitchContext(ctx, *user, proto.ContextRef{Type: req.ContextType, ID: req.ContextID})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, c)
}

func listOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	orgs, err := be.Orgs(ctx, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, orgs)
}

func postOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	org, err := be.CreateOrg(ctx, *user, req.Name, req.Description)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, org)
}

func postOrgMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	org, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	role := access.Member
	if req.Role != "" {
		role = access.ParseRole(req.Role)
	}

	member, err := be.AddOrgMember(ctx, *user, org, req.Email, role)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, member)
}

func patchOrgMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	org, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}
	member, err := pathID(r, "userId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.UpdateOrgMemberRole(ctx, *user, org, member, access.ParseRole(req.Role)); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func deleteOrgMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	org, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}
	member, err := pathID(r, "userId")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.RemoveOrgMember(ctx, *user, org, member); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listContextMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	c, err := resolveContext(r, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	members, err := be.ContextMembers(ctx, *user, c)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, members)
}

const searchLimit = 20

func searchUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	c, err := resolveContext(r, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	users, err := be.SearchUsers(ctx, *user, c, r.URL.Query().Get("q"), searchLimit)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, users)
}
