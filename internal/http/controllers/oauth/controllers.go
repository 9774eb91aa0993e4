// Package oauth contiene los controllers del plano OAuth2.
package oauth

import (
	"net/http"

	svc "github.com/dropDatabas3/keygate/internal/http/services/oauth"
)

// Controllers agrupa los controllers OAuth.
type Controllers struct {
	Authorize *AuthorizeController
	Token     *TokenController
	Revoke    *RevokeController
	UserInfo  *UserInfoController
}

// NewControllers crea los controllers a partir de los services.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Authorize: NewAuthorizeController(s.Authorize),
		Token:     NewTokenController(s.Token),
		Revoke:    NewRevokeController(s.Revoke),
		UserInfo:  NewUserInfoController(s.UserInfo),
	}
}

// writeOAuthError escribe un error con el formato del RFC 6749.
func writeOAuthError(w http.ResponseWriter, status int, errorCode, description string) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errorCode + `","error_description":"` + description + `"}`))
}
