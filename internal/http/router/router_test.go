package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keygate/internal/cache"
	"github.com/dropDatabas3/keygate/internal/domain/repository"
	authctrl "github.com/dropDatabas3/keygate/internal/http/controllers/auth"
	oauthctrl "github.com/dropDatabas3/keygate/internal/http/controllers/oauth"
	"github.com/dropDatabas3/keygate/internal/http/router"
	oauthsvc "github.com/dropDatabas3/keygate/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
	"github.com/dropDatabas3/keygate/internal/security/password"
	"github.com/dropDatabas3/keygate/internal/store/memory"
)

const (
	clientID     = "web-app"
	clientSecret = "web-app-secret"
	redirectURI  = "https://app.example.com/cb"
	userPassword = "p4ssw0rd-p4ssw0rd"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	require.NoError(t, store.CreateClient(ctx, &repository.Client{
		ID: clientID, Secret: clientSecret, RedirectURI: redirectURI,
	}))
	hash, err := password.Hash(password.Default, userPassword)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, &repository.User{
		ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: hash,
	}))

	jwtService := jwtx.NewService(jwtx.Deps{
		Codec:      jwtx.NewCodec("0123456789abcdef0123456789abcdef"),
		Cache:      cache.NewMemory(""),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})

	services := oauthsvc.NewServices(oauthsvc.Deps{
		Store:          store,
		CodeTTL:        5 * time.Minute,
		AccessTokenTTL: time.Hour,
	})

	mux := router.New(router.Deps{
		OAuth:      oauthctrl.NewControllers(services),
		Auth:       authctrl.NewControllers(jwtService),
		JWTService: jwtService,
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", strings.NewReader(string(b)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestJWTLifecycleOverHTTP(t *testing.T) {
	srv := newServer(t)

	// Emitir.
	resp, pair := postJSON(t, srv.URL+"/auth/token", map[string]string{
		"user_id": "user-1", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := pair["access_token"].(string)
	refresh := pair["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// Validar.
	resp, body := postJSON(t, srv.URL+"/auth/validate", map[string]string{"token": access})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["valid"])

	// Recurso protegido con el access token.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	pres, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	pres.Body.Close()
	require.Equal(t, http.StatusOK, pres.StatusCode)

	// Rotar: el refresh viejo muere.
	resp, next := postJSON(t, srv.URL+"/auth/refresh", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEqual(t, refresh, next["refresh_token"])

	resp, _ = postJSON(t, srv.URL+"/auth/refresh", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Revocar el access nuevo y verificar que deja de validar.
	newAccess := next["access_token"].(string)
	resp, rev := postJSON(t, srv.URL+"/auth/revoke", map[string]string{"token": newAccess})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, rev["revoked"])
	require.NotEmpty(t, rev["jti"])

	resp, body = postJSON(t, srv.URL+"/auth/validate", map[string]string{"token": newAccess})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, false, body["valid"])

	// El recurso protegido también lo rechaza.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+newAccess)
	pres, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	pres.Body.Close()
	require.Equal(t, http.StatusUnauthorized, pres.StatusCode)
}

func TestOAuthFlowOverHTTP(t *testing.T) {
	srv := newServer(t)

	// No seguir la redirección del authorize endpoint.
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// Authorize: credenciales correctas → 302 con code y state.
	form := url.Values{
		"client_id":    {clientID},
		"redirect_uri": {redirectURI},
		"username":     {"alice"},
		"password":     {userPassword},
		"scope":        {"profile"},
		"state":        {"st-42"},
	}
	resp, err := client.PostForm(srv.URL+"/oauth2/authorize", form)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(loc.String(), redirectURI))
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)
	require.Equal(t, "st-42", loc.Query().Get("state"))

	// Exchange: code → access token opaco.
	exchange := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	tres, err := http.PostForm(srv.URL+"/oauth2/token", exchange)
	require.NoError(t, err)
	defer tres.Body.Close()
	require.Equal(t, http.StatusOK, tres.StatusCode)
	require.Equal(t, "no-store", tres.Header.Get("Cache-Control"))

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
	}
	require.NoError(t, json.NewDecoder(tres.Body).Decode(&tok))
	require.NotEmpty(t, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, "profile", tok.Scope)

	// El mismo code no se puede canjear dos veces.
	tres2, err := http.PostForm(srv.URL+"/oauth2/token", exchange)
	require.NoError(t, err)
	defer tres2.Body.Close()
	require.Equal(t, http.StatusBadRequest, tres2.StatusCode)

	var oe struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(tres2.Body).Decode(&oe))
	require.Equal(t, "invalid_grant", oe.Error)

	// userinfo con el token opaco.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/oauth2/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	ures, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer ures.Body.Close()
	require.Equal(t, http.StatusOK, ures.StatusCode)

	var info struct {
		Sub      string `json:"sub"`
		Username string `json:"username"`
		Scope    string `json:"scope"`
	}
	require.NoError(t, json.NewDecoder(ures.Body).Decode(&info))
	require.Equal(t, "user-1", info.Sub)
	require.Equal(t, "alice", info.Username)
	require.Equal(t, "profile", info.Scope)

	// Revocar y verificar que userinfo lo rechaza.
	rres, err := http.PostForm(srv.URL+"/oauth2/revoke", url.Values{"token": {tok.AccessToken}})
	require.NoError(t, err)
	rres.Body.Close()
	require.Equal(t, http.StatusOK, rres.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/oauth2/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	ures2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	ures2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, ures2.StatusCode)
}

func TestAuthorizeNeverRedirectsToUnregisteredURI(t *testing.T) {
	srv := newServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	form := url.Values{
		"client_id":    {clientID},
		"redirect_uri": {"https://evil.example.com/cb"},
		"username":     {"alice"},
		"password":     {userPassword},
	}
	resp, err := client.PostForm(srv.URL+"/oauth2/authorize", form)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Location"))
}
