package store

import (
	"context"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// OrgStore is a store for organizations and their memberships.
type OrgStore interface {
	CreateOrg(ctx context.Context, h db.Handler, owner int64, name, description string) (models.Organization, error)
	GetOrgByID(ctx context.Context, h db.Handler, id int64) (models.Organization, error)
	ListOrgsForUser(ctx context.Context, h db.Handler, user int64) ([]models.Organization, error)
	DeleteOrgByID(ctx context.Context, h db.Handler, id int64) error

	ListOrgMembers(ctx context.Context, h db.Handler, org int64) ([]models.OrganizationMember, error)
	GetOrgMember(ctx context.Context, h db.Handler, org, user int64) (models.OrganizationMember, error)
	AddOrgMember(ctx context.Context, h db.Handler, org, user int64, role access.Role) error
	UpdateOrgMemberRole(ctx context.Context, h db.Handler, org, user int64, role access.Role) error
	RemoveOrgMember(ctx context.Context, h db.Handler, org, user int64) error
	ListOrgsOwnedByUser(ctx context.Context, h db.Handler, user int64) ([]models.Organization, error)
	CountOrgMembers(ctx context.Context, h db.Handler, org int64) (int64, error)
}
