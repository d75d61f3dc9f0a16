package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/proto"
	"github.com/tracksdev/tracks/pkg/utils"
)

func userFromModel(m models.User) proto.User {
	return proto.User{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Admin:       m.Admin,
	}
}

// CreateUser creates a new user.
func (b *Backend) CreateUser(ctx context.Context, username, displayName, email, password string, admin bool) (proto.User, error) {
	username = strings.ToLower(username)
	email = strings.ToLower(email)

	if err := utils.ValidateUsername(username); err != nil {
		return proto.User{}, errors.Join(proto.ErrInvalidInput, err)
	}
	if err := utils.ValidateEmail(email); err != nil {
		return proto.User{}, errors.Join(proto.ErrInvalidInput, err)
	}
	if displayName == "" {
		displayName = username
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return proto.User{}, err
	}

	var m models.User
	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = b.store.CreateUser(ctx, tx, username, displayName, email, passwordHash, admin)
		return db.WrapError(err)
	}); err != nil {
		return proto.User{}, err
	}

	b.cache.Set(m)
	return userFromModel(m), nil
}

// UserByID returns the user with the given ID.
func (b *Backend) UserByID(ctx context.Context, id int64) (proto.User, error) {
	if m, ok := b.cache.Get(id); ok {
		return userFromModel(m), nil
	}

	m, err := b.store.GetUserByID(ctx, b.db, id)
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.User{}, proto.ErrUserNotFound
		}
		return proto.User{}, db.WrapError(err)
	}

	b.cache.Set(m)
	return userFromModel(m), nil
}

// UserByUsername returns the user with the given username.
func (b *Backend) UserByUsername(ctx context.Context, username string) (proto.User, error) {
	m, err := b.store.FindUserByUsername(ctx, b.db, strings.ToLower(username))
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.User{}, proto.ErrUserNotFound
		}
		return proto.User{}, db.WrapError(err)
	}

	b.cache.Set(m)
	return userFromModel(m), nil
}

// UserByEmail returns the user with the given email address.
func (b *Backend) UserByEmail(ctx context.Context, email string) (proto.User, error) {
	m, err := b.store.FindUserByEmail(ctx, b.db, strings.ToLower(email))
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.User{}, proto.ErrUserNotFound
		}
		return proto.User{}, db.WrapError(err)
	}

	b.cache.Set(m)
	return userFromModel(m), nil
}

// VerifyUserPassword verifies the password for the user with the given
// username or email and returns the user on success.
func (b *Backend) VerifyUserPassword(ctx context.Context, usernameOrEmail, password string) (proto.User, error) {
	m, err := b.store.FindUserByUsername(ctx, b.db, strings.ToLower(usernameOrEmail))
	if err != nil {
		m, err = b.store.FindUserByEmail(ctx, b.db, strings.ToLower(usernameOrEmail))
	}
	if err != nil {
		if errors.Is(db.WrapError(err), db.ErrRecordNotFound) {
			return proto.User{}, proto.ErrInvalidPassword
		}
		return proto.User{}, db.WrapError(err)
	}

	if !m.Password.Valid || !VerifyPassword(password, m.Password.String) {
		return proto.User{}, proto.ErrInvalidPassword
	}

	return userFromModel(m), nil
}

// SetUserPassword sets the password for a user.
func (b *Backend) SetUserPassword(ctx context.Context, user proto.User, password string) error {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.SetUserPassword(ctx, tx, user.ID, passwordHash))
	})
}

// Users returns all users.
func (b *Backend) Users(ctx context.Context) ([]proto.User, error) {
	found, err := b.store.ListUsers(ctx, b.db)
	if err != nil {
		return nil, db.WrapError(err)
	}

	users := make([]proto.User, len(found))
	for i, m := range found {
		users[i] = userFromModel(m)
	}

	return users, nil
}

// SearchUsers searches users scoped to a context: only members of the
// resolved context are returned.
func (b *Backend) SearchUsers(ctx context.Context, user proto.User, c proto.Context, query string, limit int) ([]proto.User, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	found, err := b.store.SearchUsers(ctx, b.db, query, limit)
	if err != nil {
		return nil, db.WrapError(err)
	}

	members, err := b.contextMemberIDs(ctx, c)
	if err != nil {
		return nil, err
	}

	r := make([]proto.User, 0, len(found))
	for _, m := range found {
		if _, ok := members[m.ID]; ok {
			r = append(r, userFromModel(m))
		}
	}

	return r, nil
}

// DeleteAccount deletes the user's account. It refuses with ErrOwnedOrgs
// while the user still owns any organization: ownership must be
// transferred first. Personal workspaces and all their descendants
// cascade.
func (b *Backend) DeleteAccount(ctx context.Context, user proto.User) error {
	owned, err := b.store.ListOrgsOwnedByUser(ctx, b.db, user.ID)
	if err != nil {
		return db.WrapError(err)
	}
	if len(owned) > 0 {
		return proto.ErrOwnedOrgs
	}

	// Personal workspaces are not reachable by anyone else, delete them
	// child-first.
	workspaces, err := b.store.ListWorkspacesByContext(ctx, b.db, string(proto.ContextPersonal), user.ID)
	if err != nil {
		return db.WrapError(err)
	}
	for _, w := range workspaces {
		if err := b.deleteWorkspaceCascade(ctx, w.ID); err != nil {
			b.logger.Error("cascade failed deleting personal workspace", "workspace", w.ID, "err", err)
		}
	}

	if err := b.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(b.store.DeleteUserByID(ctx, tx, user.ID))
	}); err != nil {
		return err
	}

	b.cache.Delete(user.ID)
	return nil
}
