package webhook

import (
	"context"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/store"
)

// MemberEvent is a project membership change event.
type MemberEvent struct {
	Common

	// Action is the member event action.
	Action MemberEventAction `json:"action" url:"action"`
	// Role is the member's role after the change.
	Role access.Role `json:"role" url:"role"`
	// Member is the affected user.
	Member User `json:"member" url:"member"`
}

// MemberEventAction is a member event action.
type MemberEventAction string

const (
	// MemberEventActionAdded is a member added event.
	MemberEventActionAdded MemberEventAction = "added"
	// MemberEventActionRemoved is a member removed event.
	MemberEventActionRemoved MemberEventAction = "removed"
)

// NewMemberEvent builds a member event payload.
func NewMemberEvent(ctx context.Context, user proto.User, p models.Project, member int64, role access.Role, action MemberEventAction) (MemberEvent, error) {
	payload := MemberEvent{
		Action: action,
		Role:   role,
		Common: Common{
			EventType: EventMember,
			Project: Project{
				ID:          p.ID,
				WorkspaceID: p.WorkspaceID,
				Name:        p.Name,
				Description: p.Description.String,
				Status:      p.Status,
				CreatedAt:   p.CreatedAt,
				UpdatedAt:   p.UpdatedAt,
			},
			Sender: User{
				ID:          user.ID,
				Username:    user.Username,
				DisplayName: user.DisplayName,
			},
		},
	}

	dbx := db.FromContext(ctx)
	datastore := store.FromContext(ctx)
	m, err := datastore.GetUserByID(ctx, dbx, member)
	if err != nil {
		return MemberEvent{}, db.WrapError(err)
	}

	payload.Member = User{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
	}

	return payload, nil
}
