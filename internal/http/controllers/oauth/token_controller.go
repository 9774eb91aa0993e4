// Package oauth - TokenController handles POST /oauth2/token
package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	httpx "github.com/dropDatabas3/keygate/internal/http"
	svc "github.com/dropDatabas3/keygate/internal/http/services/oauth"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// TokenController handles the OAuth2 token endpoint.
type TokenController struct {
	service svc.TokenService
}

// NewTokenController creates the controller.
func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token handles POST /oauth2/token (authorization_code grant).
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.token"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeOAuthError(w, http.StatusMethodNotAllowed, "invalid_request", "Only POST method is allowed")
		return
	}

	// Limit body size (64KB for OAuth forms)
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	if err := r.ParseForm(); err != nil {
		log.Warn("failed to parse form", logger.Err(err))
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	grantType := strings.TrimSpace(r.PostForm.Get("grant_type"))
	log = log.With(logger.GrantType(grantType))

	if grantType != "authorization_code" {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Grant type not supported")
		return
	}

	req := svc.AuthCodeRequest{
		Code:         strings.TrimSpace(r.PostForm.Get("code")),
		RedirectURI:  strings.TrimSpace(r.PostForm.Get("redirect_uri")),
		ClientID:     strings.TrimSpace(r.PostForm.Get("client_id")),
		ClientSecret: strings.TrimSpace(r.PostForm.Get("client_secret")),
	}

	resp, err := c.service.ExchangeAuthorizationCode(ctx, req)
	if err != nil {
		c.handleServiceError(ctx, w, err)
		return
	}

	httpx.ObserveTokenIssued("opaque")
	httpx.ObserveCodeExchange("ok")
	c.writeTokenResponse(w, resp)
}

func (c *TokenController) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.From(ctx)
	switch err {
	case svc.ErrTokenInvalidRequest:
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing or invalid parameters")
	case svc.ErrTokenInvalidClient:
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed")
	case svc.ErrTokenInvalidGrant:
		httpx.ObserveCodeExchange("invalid_grant")
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid or expired grant")
	case svc.ErrTokenUnsupportedGrantType:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Grant type not supported")
	default:
		httpx.ObserveCodeExchange("error")
		log.Error("token endpoint error", logger.Err(err))
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
	}
}

func (c *TokenController) writeTokenResponse(w http.ResponseWriter, resp *svc.TokenResponse) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
