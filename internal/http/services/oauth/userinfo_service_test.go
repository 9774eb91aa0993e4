package oauth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
	oauth "github.com/dropDatabas3/keygate/internal/http/services/oauth"
)

func TestUserInfoResolve(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	svc := oauth.NewUserInfoService(oauth.UserInfoDeps{Store: store})

	require.NoError(t, store.CreateAccessToken(ctx, &repository.AccessToken{
		Token:     "tok-1",
		ClientID:  testClientID,
		UserID:    "user-1",
		Scope:     "profile",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	info, err := svc.Resolve(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", info.Sub)
	require.Equal(t, "alice", info.Username)
	require.Equal(t, "profile", info.Scope)
}

func TestUserInfoRejectsExpiredAndUnknown(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	svc := oauth.NewUserInfoService(oauth.UserInfoDeps{Store: store})

	require.NoError(t, store.CreateAccessToken(ctx, &repository.AccessToken{
		Token:     "tok-old",
		ClientID:  testClientID,
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := svc.Resolve(ctx, "tok-old")
	require.ErrorIs(t, err, oauth.ErrTokenInvalid)

	_, err = svc.Resolve(ctx, "tok-missing")
	require.ErrorIs(t, err, oauth.ErrTokenInvalid)

	_, err = svc.Resolve(ctx, "")
	require.ErrorIs(t, err, oauth.ErrTokenInvalid)
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	revoke := oauth.NewRevokeService(oauth.RevokeDeps{Store: store})
	userinfo := oauth.NewUserInfoService(oauth.UserInfoDeps{Store: store})

	require.NoError(t, store.CreateAccessToken(ctx, &repository.AccessToken{
		Token:     "tok-2",
		ClientID:  testClientID,
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, revoke.Revoke(ctx, "tok-2"))

	_, err := userinfo.Resolve(ctx, "tok-2")
	require.ErrorIs(t, err, oauth.ErrTokenInvalid)

	// Revocar de nuevo (o un token desconocido) también es éxito.
	require.NoError(t, revoke.Revoke(ctx, "tok-2"))
	require.NoError(t, revoke.Revoke(ctx, "never-existed"))
}
