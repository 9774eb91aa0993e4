// Package oauth contiene los services del dominio OAuth2.
package oauth

import (
	"time"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
)

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	Store          repository.Store
	CodeTTL        time.Duration // TTL de authorization codes (default 5m)
	AccessTokenTTL time.Duration // TTL de access tokens opacos (default 1h)
}

// Services agrupa todos los services del dominio OAuth.
type Services struct {
	Authorize AuthorizeService
	Token     TokenService
	UserInfo  UserInfoService
	Revoke    RevokeService
}

// NewServices crea el agregador de services OAuth.
func NewServices(d Deps) Services {
	if d.CodeTTL <= 0 {
		d.CodeTTL = 5 * time.Minute
	}
	if d.AccessTokenTTL <= 0 {
		d.AccessTokenTTL = time.Hour
	}
	return Services{
		Authorize: NewAuthorizeService(AuthorizeDeps{
			Store:   d.Store,
			CodeTTL: d.CodeTTL,
		}),
		Token: NewTokenService(TokenDeps{
			Store:          d.Store,
			AccessTokenTTL: d.AccessTokenTTL,
		}),
		UserInfo: NewUserInfoService(UserInfoDeps{
			Store: d.Store,
		}),
		Revoke: NewRevokeService(RevokeDeps{
			Store: d.Store,
		}),
	}
}
