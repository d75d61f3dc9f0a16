package database

import (
	"context"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.UserStore = (*userStore)(nil)

type userStore struct{}

// CreateUser implements store.UserStore.
func (s *userStore) CreateUser(ctx context.Context, h db.Handler, username, displayName, email, passwordHash string, admin bool) (models.User, error) {
	query := h.Rebind(`
		INSERT INTO
		  users (username, display_name, email, password, admin, updated_at)
		VALUES
		  (?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;
	`)

	var id int64
	if err := h.GetContext(ctx, &id, query, username, displayName, email, passwordHash, admin); err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(ctx, h, id)
}

// GetUserByID implements store.UserStore.
func (*userStore) GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// FindUserByUsername implements store.UserStore.
func (*userStore) FindUserByUsername(ctx context.Context, h db.Handler, username string) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE username = ?;`)
	err := h.GetContext(ctx, &m, query, username)
	return m, err
}

// FindUserByEmail implements store.UserStore.
func (*userStore) FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE email = ?;`)
	err := h.GetContext(ctx, &m, query, email)
	return m, err
}

// SearchUsers implements store.UserStore.
func (*userStore) SearchUsers(ctx context.Context, h db.Handler, search string, limit int) ([]models.User, error) {
	var m []models.User
	query := h.Rebind(`
		SELECT *
		FROM users
		WHERE
		  username LIKE ?
		  OR display_name LIKE ?
		  OR email LIKE ?
		ORDER BY username
		LIMIT ?;
	`)
	pattern := "%" + search + "%"
	err := h.SelectContext(ctx, &m, query, pattern, pattern, pattern, limit)
	return m, err
}

// ListUsers implements store.UserStore.
func (*userStore) ListUsers(ctx context.Context, h db.Handler) ([]models.User, error) {
	var m []models.User
	query := h.Rebind(`SELECT * FROM users ORDER BY username;`)
	err := h.SelectContext(ctx, &m, query)
	return m, err
}

// SetUserPassword implements store.UserStore.
func (*userStore) SetUserPassword(ctx context.Context, h db.Handler, user int64, passwordHash string) error {
	query := h.Rebind(`
		UPDATE users
		SET
		  password = ?,
		  updated_at = CURRENT_TIMESTAMP
		WHERE
		  id = ?;
	`)
	_, err := h.ExecContext(ctx, query, passwordHash, user)
	return err
}

// SetUserLastContext implements store.UserStore.
func (*userStore) SetUserLastContext(ctx context.Context, h db.Handler, user int64, contextType string, contextID int64) error {
	query := h.Rebind(`
		UPDATE users
		SET
		  last_context_type = ?,
		  last_context_id = ?,
		  updated_at = CURRENT_TIMESTAMP
		WHERE
		  id = ?;
	`)
	_, err := h.ExecContext(ctx, query, contextType, contextID, user)
	return err
}

// DeleteUserByID implements store.UserStore.
func (*userStore) DeleteUserByID(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM users WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err
}
