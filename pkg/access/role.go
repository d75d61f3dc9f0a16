package access

import (
	"encoding"
	"errors"
)

// Role is the role a user holds within an organization, workspace, or
// project. Roles are ordered, higher roles grant every permission of the
// roles below them.
type Role int

const (
	// NoRole means the user holds no membership.
	NoRole Role = iota

	// Member can read and mutate tasks.
	Member

	// Admin can manage non-owner members.
	Admin

	// Owner is the single owning member. Exactly one member of an
	// organization holds this role at any time.
	Owner
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case NoRole:
		return "none"
	case Member:
		return "member"
	case Admin:
		return "admin"
	case Owner:
		return "owner"
	default:
		return "unknown"
	}
}

// ParseRole parses a role string.
func ParseRole(s string) Role {
	switch s {
	case "none":
		return NoRole
	case "member":
		return Member
	case "admin":
		return Admin
	case "owner":
		return Owner
	default:
		return Role(-1)
	}
}

var (
	_ encoding.TextMarshaler   = Role(0)
	_ encoding.TextUnmarshaler = (*Role)(nil)
)

// ErrInvalidRole is returned when an invalid role is provided.
var ErrInvalidRole = errors.New("invalid role")

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	l := ParseRole(string(text))
	if l < 0 {
		return ErrInvalidRole
	}

	*r = l

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}
