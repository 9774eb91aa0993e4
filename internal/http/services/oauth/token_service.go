package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
	tokens "github.com/dropDatabas3/keygate/internal/security/token"
)

// AuthCodeRequest es la solicitud de intercambio authorization_code.
type AuthCodeRequest struct {
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
}

// TokenResponse es la respuesta del token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// TokenService intercambia grants por access tokens opacos.
type TokenService interface {
	ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*TokenResponse, error)
}

// TokenDeps dependencias del service.
type TokenDeps struct {
	Store          repository.Store
	AccessTokenTTL time.Duration
}

type tokenService struct {
	store          repository.Store
	accessTokenTTL time.Duration
}

// NewTokenService crea el service.
func NewTokenService(d TokenDeps) TokenService {
	return &tokenService{store: d.Store, accessTokenTTL: d.AccessTokenTTL}
}

// ExchangeAuthorizationCode consume el código y emite un access token opaco.
//
// El cliente se autentica ANTES de consumir el código: un secret inválido no
// quema el código. Las validaciones posteriores (cliente, redirect, expiración)
// corren DESPUÉS del consumo: si fallan, el código ya quedó quemado. Bajo
// intercambio concurrente del mismo código, exactamente un caller obtiene
// el token; el resto recibe invalid_grant.
func (s *tokenService) ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token"))

	if req.Code == "" || req.RedirectURI == "" || req.ClientID == "" {
		return nil, ErrTokenInvalidRequest
	}

	client, err := s.store.GetClient(ctx, req.ClientID)
	if repository.IsNotFound(err) {
		return nil, ErrTokenInvalidClient
	}
	if err != nil {
		return nil, fmt.Errorf("token: load client: %w", err)
	}
	if !tokens.ConstantTimeEquals(req.ClientSecret, client.Secret) {
		return nil, ErrTokenInvalidClient
	}

	code, err := s.store.ConsumeAuthCode(ctx, req.Code)
	if repository.IsNotFound(err) {
		// Inexistente o ya usado: indistinguibles a propósito.
		return nil, ErrTokenInvalidGrant
	}
	if err != nil {
		return nil, fmt.Errorf("token: consume code: %w", err)
	}

	if code.ClientID != client.ID {
		log.Warn("code presented by wrong client", logger.ClientID(req.ClientID))
		return nil, ErrTokenInvalidGrant
	}
	if code.RedirectURI != req.RedirectURI {
		log.Warn("redirect_uri mismatch on exchange", logger.ClientID(req.ClientID))
		return nil, ErrTokenInvalidGrant
	}
	if time.Now().After(code.ExpiresAt) {
		return nil, ErrTokenInvalidGrant
	}

	raw, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("token: generate access token: %w", err)
	}

	at := &repository.AccessToken{
		Token:     raw,
		ClientID:  client.ID,
		UserID:    code.UserID,
		Scope:     code.Scope,
		ExpiresAt: time.Now().UTC().Add(s.accessTokenTTL),
	}
	if err := s.store.CreateAccessToken(ctx, at); err != nil {
		return nil, fmt.Errorf("token: persist access token: %w", err)
	}

	log.Info("access token issued",
		logger.ClientID(client.ID), logger.UserID(code.UserID), logger.TokenType("opaque"))

	return &TokenResponse{
		AccessToken: raw,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTokenTTL.Seconds()),
		Scope:       code.Scope,
	}, nil
}
