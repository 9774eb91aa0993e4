package oauth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	oauth "github.com/dropDatabas3/keygate/internal/http/services/oauth"
)

func authorizeReq() oauth.AuthorizeRequest {
	return oauth.AuthorizeRequest{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		Username:    "alice",
		Password:    testUserPassword,
		Scope:       "profile",
		State:       "xyz",
	}
}

func TestAuthorizeIssuesCode(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	svc := oauth.NewAuthorizeService(oauth.AuthorizeDeps{Store: store, CodeTTL: 5 * time.Minute})

	res, err := svc.Authorize(ctx, authorizeReq())
	require.NoError(t, err)
	require.NotEmpty(t, res.Code)
	require.Equal(t, testRedirectURI, res.RedirectURI)
	require.Equal(t, "xyz", res.State)

	// El código es canjeable y está ligado al cliente y usuario.
	ac, err := store.ConsumeAuthCode(ctx, res.Code)
	require.NoError(t, err)
	require.Equal(t, testClientID, ac.ClientID)
	require.Equal(t, "user-1", ac.UserID)
	require.Equal(t, "profile", ac.Scope)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), ac.ExpiresAt, 10*time.Second)
}

func TestAuthorizeRejections(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	svc := oauth.NewAuthorizeService(oauth.AuthorizeDeps{Store: store, CodeTTL: 5 * time.Minute})

	t.Run("unknown client", func(t *testing.T) {
		req := authorizeReq()
		req.ClientID = "nope"
		_, err := svc.Authorize(ctx, req)
		require.ErrorIs(t, err, oauth.ErrTokenInvalidClient)
	})

	t.Run("redirect mismatch never redirects", func(t *testing.T) {
		req := authorizeReq()
		req.RedirectURI = "https://evil.example.com/callback"
		_, err := svc.Authorize(ctx, req)
		require.ErrorIs(t, err, oauth.ErrInvalidRedirect)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := authorizeReq()
		req.Password = "wrong"
		_, err := svc.Authorize(ctx, req)
		require.ErrorIs(t, err, oauth.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		req := authorizeReq()
		req.Username = "mallory"
		_, err := svc.Authorize(ctx, req)
		require.ErrorIs(t, err, oauth.ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Authorize(ctx, oauth.AuthorizeRequest{})
		require.ErrorIs(t, err, oauth.ErrTokenInvalidRequest)
	})
}
