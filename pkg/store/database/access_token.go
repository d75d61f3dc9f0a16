package database

import (
	"context"
	"time"

	"github.com/tracksdev/tracks/pkg/db"
	"github.com/tracksdev/tracks/pkg/db/models"
	"github.com/tracksdev/tracks/pkg/store"
)

var _ store.AccessTokenStore = (*accessTokenStore)(nil)

type accessTokenStore struct{}

// CreateAccessToken implements store.AccessTokenStore.
func (s *accessTokenStore) CreateAccessToken(ctx context.Context, h db.Handler, name string, user int64, tokenHash string, expiresAt time.Time) (models.AccessToken, error) {
	var values []interface{}
	query := `
		INSERT INTO
		  access_tokens (name, user_id, token, expires_at)
		VALUES
		  (?, ?, ?, ?) RETURNING id;
	`
	if expiresAt.IsZero() {
		query = `
			INSERT INTO
			  access_tokens (name, user_id, token)
			VALUES
			  (?, ?, ?) RETURNING id;
		`
		values = []interface{}{name, user, tokenHash}
	} else {
		values = []interface{}{name, user, tokenHash, expiresAt}
	}

	var id int64
	if err := h.GetContext(ctx, &id, h.Rebind(query), values...); err != nil {
		return models.AccessToken{}, err
	}

	return s.GetAccessToken(ctx, h, id)
}

// GetAccessToken implements store.AccessTokenStore.
func (*accessTokenStore) GetAccessToken(ctx context.Context, h db.Handler, id int64) (models.AccessToken, error) {
	var m models.AccessToken
	query := h.Rebind(`SELECT * FROM access_tokens WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err
}

// GetAccessTokenByToken implements store.AccessTokenStore.
func (*accessTokenStore) GetAccessTokenByToken(ctx context.Context, h db.Handler, tokenHash string) (models.AccessToken, error) {
	var m models.AccessToken
	query := h.Rebind(`SELECT * FROM access_tokens WHERE token = ?;`)
	err := h.GetContext(ctx, &m, query, tokenHash)
	return m, err
}

// GetAccessTokensByUserID implements store.AccessTokenStore.
func (*accessTokenStore) GetAccessTokensByUserID(ctx context.Context, h db.Handler, user int64) ([]models.AccessToken, error) {
	var m []models.AccessToken
	query := h.Rebind(`
		SELECT *
		FROM access_tokens
		WHERE user_id = ?
		ORDER BY id;
	`)
	err := h.SelectContext(ctx, &m, query, user)
	return m, err
}

// DeleteAccessTokenForUser implements store.AccessTokenStore.
func (*accessTokenStore) DeleteAccessTokenForUser(ctx context.Context, h db.Handler, user, id int64) error {
	query := h.Rebind(`
		DELETE FROM access_tokens
		WHERE
		  id = ?
		  AND user_id = ?;
	`)
	r, err := h.ExecContext(ctx, query, id, user)
	if err != nil {
		return err
	}

	rows, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return db.ErrRecordNotFound
	}

	return nil
}

// DeleteExpiredAccessTokens implements store.AccessTokenStore.
func (*accessTokenStore) DeleteExpiredAccessTokens(ctx context.Context, h db.Handler, now time.Time) (int64, error) {
	query := h.Rebind(`
		DELETE FROM access_tokens
		WHERE
		  expires_at IS NOT NULL
		  AND expires_at < ?;
	`)
	r, err := h.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return r.RowsAffected()
}
