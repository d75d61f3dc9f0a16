package proto

import (
	"context"
	"encoding"
	"errors"

	"github.com/tracksdev/tracks/pkg/access"
)

// ContextType is the tenancy boundary type a workspace belongs to.
type ContextType string

const (
	// ContextPersonal is a user's personal space.
	ContextPersonal ContextType = "personal"

	// ContextOrganization is an organization.
	ContextOrganization ContextType = "organization"
)

// ErrInvalidContextType is returned when a context type is invalid.
var ErrInvalidContextType = errors.New("invalid context type")

// Valid reports whether the context type is a known value.
func (t ContextType) Valid() bool {
	return t == ContextPersonal || t == ContextOrganization
}

var (
	_ encoding.TextMarshaler   = ContextType("")
	_ encoding.TextUnmarshaler = (*ContextType)(nil)
)

// MarshalText implements encoding.TextMarshaler.
func (t ContextType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrInvalidContextType
	}
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ContextType) UnmarshalText(text []byte) error {
	ct := ContextType(text)
	if !ct.Valid() {
		return ErrInvalidContextType
	}
	*t = ct
	return nil
}

// ContextRef identifies a context. For personal contexts the ID is the
// user's own ID.
type ContextRef struct {
	Type ContextType `json:"type"`
	ID   int64       `json:"id"`
}

// Context is a resolved context: the tenancy boundary the request
// operates in, together with the caller's role within it.
type Context struct {
	Type ContextType `json:"type"`
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Role access.Role `json:"role"`
}

// Ref returns the reference for the resolved context.
func (c Context) Ref() ContextRef {
	return ContextRef{Type: c.Type, ID: c.ID}
}

// User is the authenticated caller.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Admin       bool   `json:"admin"`
}

// userContextKey is the context key for the authenticated user.
var userContextKey = &struct{ string }{"user"}

// UserFromContext returns the authenticated user from the context.
func UserFromContext(ctx context.Context) *User {
	if u, ok := ctx.Value(userContextKey).(*User); ok {
		return u
	}
	return nil
}

// WithUserContext returns a new context with the authenticated user.
func WithUserContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}
