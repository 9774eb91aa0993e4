// Package oauth - RevokeController handles POST /oauth2/revoke
package oauth

import (
	"net/http"
	"strings"

	svc "github.com/dropDatabas3/keygate/internal/http/services/oauth"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// RevokeController handles opaque token revocation (RFC 7009).
type RevokeController struct {
	service svc.RevokeService
}

// NewRevokeController creates the controller.
func NewRevokeController(s svc.RevokeService) *RevokeController {
	return &RevokeController{service: s}
}

// Revoke handles POST /oauth2/revoke.
// Por RFC 7009 siempre responde 200 para tokens desconocidos; solo los
// requests malformados o los fallos de backend son error.
func (c *RevokeController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.revoke"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeOAuthError(w, http.StatusMethodNotAllowed, "invalid_request", "Only POST method is allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	token := strings.TrimSpace(r.PostForm.Get("token"))
	if err := c.service.Revoke(ctx, token); err != nil {
		if err == svc.ErrTokenInvalidRequest {
			writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing token parameter")
			return
		}
		log.Error("revoke endpoint error", logger.Err(err))
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusOK)
}
