package store

import (
	"context"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// UserStore is a store for users.
type UserStore interface {
	CreateUser(ctx context.Context, h db.Handler, username, displayName, email, passwordHash string, admin bool) (models.User, error)
	GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error)
	FindUserByUsername(ctx context.Context, h db.Handler, username string) (models.User, error)
	FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error)
	SearchUsers(ctx context.Context, h db.Handler, query string, limit int) ([]models.User, error)
	ListUsers(ctx context.Context, h db.Handler) ([]models.User, error)
	SetUserPassword(ctx context.Context, h db.Handler, user int64, passwordHash string) error
	SetUserLastContext(ctx context.Context, h db.Handler, user int64, contextType string, contextID int64) error
	DeleteUserByID(ctx context.Context, h db.Handler, id int64) error
}
