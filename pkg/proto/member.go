package proto

import "github.com/tracksdev/tracks/pkg/access"

// Member is a user together with their role in some membership scope
// (organization, workspace, or project).
type Member struct {
	User User        `json:"user"`
	Role access.Role `json:"role"`
}
