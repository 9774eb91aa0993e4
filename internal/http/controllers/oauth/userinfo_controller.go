// Package oauth - UserInfoController handles GET /oauth2/userinfo
package oauth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/keygate/internal/http/helpers"
	svc "github.com/dropDatabas3/keygate/internal/http/services/oauth"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// UserInfoController resuelve access tokens opacos a identidad.
type UserInfoController struct {
	service svc.UserInfoService
}

// NewUserInfoController creates the controller.
func NewUserInfoController(s svc.UserInfoService) *UserInfoController {
	return &UserInfoController{service: s}
}

// UserInfo handles GET /oauth2/userinfo con Authorization: Bearer <opaque>.
func (c *UserInfoController) UserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.userinfo"))

	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		helpers.WriteError(w, helpers.ErrUnauthorized)
		return
	}
	raw := strings.TrimSpace(ah[len("Bearer "):])

	info, err := c.service.Resolve(ctx, raw)
	if err != nil {
		if err == svc.ErrTokenInvalid {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
			helpers.WriteError(w, helpers.ErrUnauthorized)
			return
		}
		log.Error("userinfo endpoint error", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, info)
}
