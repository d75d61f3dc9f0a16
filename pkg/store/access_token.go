package store

import (
	"context"
	"time"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
)

// AccessTokenStore is a store for access tokens.
type AccessTokenStore interface {
	CreateAccessToken(ctx context.Context, h db.Handler, name string, user int64, tokenHash string, expiresAt time.Time) (models.AccessToken, error)
	GetAccessToken(ctx context.Context, h db.Handler, id int64) (models.AccessToken, error)
	GetAccessTokenByToken(ctx context.Context, h db.Handler, tokenHash string) (models.AccessToken, error)
	GetAccessTokensByUserID(ctx context.Context, h db.Handler, user int64) ([]models.AccessToken, error)
	DeleteAccessTokenForUser(ctx context.Context, h db.Handler, user, id int64) error
	DeleteExpiredAccessTokens(ctx context.Context, h db.Handler, now time.Time) (int64, error)
}
