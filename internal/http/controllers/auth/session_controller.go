package auth

import (
	"errors"
	"net/http"
	"strings"

	httpx "github.com/dropDatabas3/keygate/internal/http"
	"github.com/dropDatabas3/keygate/internal/http/helpers"
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// SessionController maneja emisión, validación, rotación y revocación
// de tokens firmados.
type SessionController struct {
	service *jwtx.Service
}

// NewSessionController creates the controller.
func NewSessionController(s *jwtx.Service) *SessionController {
	return &SessionController{service: s}
}

type generateRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Generate handles POST /auth/token.
func (c *SessionController) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.generate"))

	var req generateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Email = strings.TrimSpace(req.Email)
	if req.UserID == "" || req.Email == "" {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("user_id and email are required"))
		return
	}

	pair, err := c.service.Generate(ctx, req.UserID, req.Email)
	if err != nil {
		log.Error("token generation failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}

	httpx.ObserveTokenIssued("access")
	httpx.ObserveTokenIssued("refresh")
	helpers.WriteJSON(w, http.StatusOK, pair)
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid  bool         `json:"valid"`
	Claims *jwtx.Claims `json:"claims,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Validate handles POST /auth/validate.
// Orden de verificación: estructura → firma → expiración → revocación.
func (c *SessionController) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.validate"))

	var req validateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("token is required"))
		return
	}

	claims, err := c.service.Validate(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrExpired):
			httpx.ObserveTokenValidation("expired")
			helpers.WriteJSON(w, http.StatusUnauthorized, validateResponse{Valid: false, Error: "token expired"})
		case errors.Is(err, jwtx.ErrRevoked):
			httpx.ObserveTokenValidation("revoked")
			helpers.WriteJSON(w, http.StatusUnauthorized, validateResponse{Valid: false, Error: "token revoked"})
		case errors.Is(err, jwtx.ErrMalformed), errors.Is(err, jwtx.ErrSignature):
			httpx.ObserveTokenValidation("invalid")
			helpers.WriteJSON(w, http.StatusUnauthorized, validateResponse{Valid: false, Error: "invalid token"})
		default:
			// Fallo de infraestructura: nunca responder como credencial inválida.
			httpx.ObserveTokenValidation("error")
			log.Error("validation failed", logger.Err(err))
			helpers.WriteError(w, helpers.ErrInternalServerError)
		}
		return
	}

	httpx.ObserveTokenValidation("ok")
	helpers.WriteJSON(w, http.StatusOK, validateResponse{Valid: true, Claims: claims})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh.
func (c *SessionController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.refresh"))

	var req refreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("refresh_token is required"))
		return
	}

	pair, err := c.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrRefreshInvalid) {
			helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("invalid or expired refresh token"))
			return
		}
		log.Error("refresh failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}

	httpx.ObserveTokenIssued("access")
	httpx.ObserveTokenIssued("refresh")
	helpers.WriteJSON(w, http.StatusOK, pair)
}

type revokeRequest struct {
	Token string `json:"token"`
}

type revokeResponse struct {
	Revoked bool   `json:"revoked"`
	Jti     string `json:"jti"`
}

// Revoke handles POST /auth/revoke.
// Un token con firma inválida no puede revocarse (401); uno ya expirado no
// necesita revocación (400). Revocar dos veces es idempotente.
func (c *SessionController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.revoke"))

	var req revokeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("token is required"))
		return
	}

	jti, err := c.service.Revoke(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrAlreadyExpired):
			helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("token already expired"))
		case errors.Is(err, jwtx.ErrMalformed), errors.Is(err, jwtx.ErrSignature):
			helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("invalid token"))
		default:
			log.Error("revocation failed", logger.Err(err))
			helpers.WriteError(w, helpers.ErrInternalServerError)
		}
		return
	}

	httpx.ObserveTokenRevocation()
	helpers.WriteJSON(w, http.StatusOK, revokeResponse{Revoked: true, Jti: jti})
}
