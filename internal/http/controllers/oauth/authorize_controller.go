// Package oauth - AuthorizeController handles POST /oauth2/authorize
package oauth

import (
	"net/http"
	"net/url"
	"strings"

	svc "github.com/dropDatabas3/keygate/internal/http/services/oauth"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// AuthorizeController handles the authorization endpoint.
type AuthorizeController struct {
	service svc.AuthorizeService
}

// NewAuthorizeController creates the controller.
func NewAuthorizeController(s svc.AuthorizeService) *AuthorizeController {
	return &AuthorizeController{service: s}
}

// Authorize handles POST /oauth2/authorize.
// Autentica las credenciales del resource owner y redirige al redirect_uri
// registrado con ?code=...&state=.... Un redirect_uri no registrado NUNCA
// recibe redirección: se responde 400 directo.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("oauth.authorize"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeOAuthError(w, http.StatusMethodNotAllowed, "invalid_request", "Only POST method is allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		log.Warn("failed to parse form", logger.Err(err))
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return
	}

	req := svc.AuthorizeRequest{
		ClientID:    strings.TrimSpace(r.PostForm.Get("client_id")),
		RedirectURI: strings.TrimSpace(r.PostForm.Get("redirect_uri")),
		Username:    strings.TrimSpace(r.PostForm.Get("username")),
		Password:    r.PostForm.Get("password"),
		Scope:       strings.TrimSpace(r.PostForm.Get("scope")),
		State:       strings.TrimSpace(r.PostForm.Get("state")),
	}

	res, err := c.service.Authorize(ctx, req)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	// Redirigir con el código
	loc, perr := url.Parse(res.RedirectURI)
	if perr != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Invalid redirect_uri")
		return
	}
	q := loc.Query()
	q.Set("code", res.Code)
	if res.State != "" {
		q.Set("state", res.State)
	}
	loc.RawQuery = q.Encode()

	http.Redirect(w, r, loc.String(), http.StatusFound)
}

func (c *AuthorizeController) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.From(r.Context())
	switch err {
	case svc.ErrTokenInvalidRequest:
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Missing or invalid parameters")
	case svc.ErrTokenInvalidClient:
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Unknown client")
	case svc.ErrInvalidRedirect:
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "redirect_uri does not match registered URI")
	case svc.ErrInvalidCredentials:
		writeOAuthError(w, http.StatusUnauthorized, "access_denied", "Invalid username or password")
	default:
		log.Error("authorize endpoint error", logger.Err(err))
		writeOAuthError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
	}
}
