package backend

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/proto"
)

func TestHashVerifyPassword(t *testing.T) {
	is := is.New(t)

	hash, err := HashPassword("hunter2")
	is.NoErr(err)
	is.True(hash != "hunter2")
	is.True(VerifyPassword("hunter2", hash))
	is.True(!VerifyPassword("hunter3", hash))
}

func TestGenerateToken(t *testing.T) {
	is := is.New(t)

	token := GenerateToken()
	is.True(strings.HasPrefix(token, "trk_"))
	is.True(token != GenerateToken())
	is.True(HashToken(token) == HashToken(token))
	is.True(HashToken(token) != token)
}

func TestAccessTokenRoundtrip(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	token, err := be.CreateAccessToken(ctx, alice, "ci", time.Now().Add(time.Hour))
	is.NoErr(err)

	got, err := be.UserFromAccessToken(ctx, token)
	is.NoErr(err)
	is.Equal(got.ID, alice.ID)

	_, err = be.UserFromAccessToken(ctx, "trk_bogus")
	is.True(errors.Is(err, proto.ErrTokenNotFound))

	tokens, err := be.ListAccessTokens(ctx, alice)
	is.NoErr(err)
	is.Equal(len(tokens), 1)
	is.Equal(tokens[0].Name, "ci")

	// The stored value is a hash, never the plaintext token.
	is.True(tokens[0].TokenHash != token)

	is.NoErr(be.DeleteAccessToken(ctx, alice, tokens[0].ID))
	_, err = be.UserFromAccessToken(ctx, token)
	is.True(errors.Is(err, proto.ErrTokenNotFound))
}

func TestExpiredAccessToken(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	token, err := be.CreateAccessToken(ctx, alice, "stale", time.Now().Add(-time.Minute))
	is.NoErr(err)

	_, err = be.UserFromAccessToken(ctx, token)
	is.True(errors.Is(err, proto.ErrTokenExpired))
}

func TestVerifyUserPassword(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")

	// Login works with either the username or the email.
	got, err := be.VerifyUserPassword(ctx, "alice", "hunter2")
	is.NoErr(err)
	is.Equal(got.ID, alice.ID)
	got, err = be.VerifyUserPassword(ctx, "alice@example.com", "hunter2")
	is.NoErr(err)
	is.Equal(got.ID, alice.ID)

	_, err = be.VerifyUserPassword(ctx, "alice", "wrong")
	is.True(errors.Is(err, proto.ErrInvalidPassword))

	// Unknown accounts fail the same way as bad passwords.
	_, err = be.VerifyUserPassword(ctx, "nobody", "hunter2")
	is.True(errors.Is(err, proto.ErrInvalidPassword))
}
