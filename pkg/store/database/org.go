package database

import (
	"context"

	"github.com/tracksdev/tracks/pkg/access"
	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.OrgStore = (*orgStore)(nil)

type orgStore struct{}

// CreateOrg implements store.OrgStore. The creating user becomes the
// organization's owner.
func (s *orgStore) CreateOrg(ctx context.Context, h db.Handler, owner int64, name, description string) (models.Organization, error) {
	query := h.Rebind(`
		INSERT INTO
		  organizations (name, description, updated_at)
		VALUES
		  (?, ?, CURRENT_TIMESTAMP) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, name, description); err != nil {
		return models.Organization{}, err
	}

	if err := s.AddOrgMember(ctx, h, id, owner, access.Owner); err != nil {
		return models.Organization{}, err
	}

	return s.GetOrgByID(ctx, h, id)
}

// GetOrgByID implements store.OrgStore.
func (*orgStore) GetOrgByID(ctx context.Context, h db.Handler, id int64) (models.Organization, error) {
	var m models.Organization
	query := h.Rebind(`SELECT * FROM organizations WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// ListOrgsForUser implements store.OrgStore.
func (*orgStore) ListOrgsForUser(ctx context.Context, h db.Handler, user int64) ([]models.Organization, error) {
	var m []models.Organization
	query := h.Rebind(`
		SELECT
		  o.*
		FROM
		  organizations o
		  JOIN organization_members om ON om.organization_id = o.id
		WHERE
		  om.user_id = ?
		ORDER BY o.name;
	`)
	err := h.SelectContext(ctx, &m, query, user)
	return m, err
}

// DeleteOrgByID implements store.OrgStore.
func (*orgStore) DeleteOrgByID(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM organizations WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err
}

// ListOrgMembers implements store.OrgStore.
func (*orgStore) ListOrgMembers(ctx context.Context, h db.Handler, org int64) ([]models.OrganizationMember, error) {
	var m []models.OrganizationMember
	query := h.Rebind(`
		SELECT *
		FROM organization_members
		WHERE organization_id = ?
		ORDER BY role DESC, user_id;
	`)
	err := h.SelectContext(ctx, &m, query, org)
	return m, err
}

// GetOrgMember implements store.OrgStore.
func (*orgStore) GetOrgMember(ctx context.Context, h db.Handler, org, user int64) (models.OrganizationMember, error) {
	var m models.OrganizationMember
	query := h.Rebind(`
		SELECT *
		FROM organization_members
		WHERE
		  organization_id = ?
		  AND user_id = ?;
	`)
	err := h.GetContext(ctx, &m, query, org, user)
	return m, err
}

// AddOrgMember implements store.OrgStore.
func (*orgStore) AddOrgMember(ctx context.Context, h db.Handler, org, user int64, role access.Role) error {
	query := h.Rebind(`
		INSERT INTO
		  organization_members (organization_id, user_id, role, updated_at)
		VALUES
		  (?, ?, ?, CURRENT_TIMESTAMP);
	`)
	_, err := h.ExecContext(ctx, query, org, user, int(role))
	return err
}

// UpdateOrgMemberRole implements store.OrgStore.
func (*orgStore) UpdateOrgMemberRole(ctx context.Context, h db.Handler, org, user int64, role access.Role) error {
	query := h.Rebind(`
		UPDATE organization_members
		SET
		  role = ?,
		  updated_at = CURRENT_TIMESTAMP
		WHERE
		  organization_id = ?
		  AND user_id = ?;
	`)
	_, err := h.ExecContext(ctx, query, int(role), org, user)
	return err
}

// RemoveOrgMember implements store.OrgStore.
func (*orgStore) RemoveOrgMember(ctx context.Context, h db.Handler, org, user int64) error {
	query := h.Rebind(`
		DELETE FROM organization_members
		WHERE
		  organization_id = ?
		  AND user_id = ?;
	`)
	_, err := h.ExecContext(ctx, query, org, user)
	return err
}

// ListOrgsOwnedByUser implements store.OrgStore.
func (*orgStore) ListOrgsOwnedByUser(ctx context.Context, h db.Handler, user int64) ([]models.Organization, error) {
	var m []models.Organization
	query := h.Rebind(`
		SELECT
		  o.*
		FROM
		  organizations o
		  JOIN organization_members om ON om.organization_id = o.id
		WHERE
		  om.user_id = ?
		  AND om.role = ?;
	`)
	err := h.SelectContext(ctx, &m, query, user, int(access.Owner))
	return m, err
}

// CountOrgMembers implements store.OrgStore.
func (*orgStore) CountOrgMembers(ctx context.Context, h db.Handler, org int64) (int64, error) {
	var count int64
	query := h.Rebind(`SELECT COUNT(*) FROM organization_members WHERE organization_id = ?;`)
	err := h.GetContext(ctx, &count, query, org)
	return count, err
}
