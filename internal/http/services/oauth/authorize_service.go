package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
	"github.com/dropDatabas3/keygate/internal/security/password"
	tokens "github.com/dropDatabas3/keygate/internal/security/token"
)

// AuthorizeRequest es la solicitud del authorization endpoint.
type AuthorizeRequest struct {
	ClientID    string
	RedirectURI string
	Username    string
	Password    string
	Scope       string // flat string, opcional
	State       string
}

// AuthorizeResult contiene el código emitido y la redirección resultante.
type AuthorizeResult struct {
	Code        string
	RedirectURI string
	State       string
}

// AuthorizeService autentica al resource owner y emite authorization codes.
type AuthorizeService interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)
}

// AuthorizeDeps dependencias del service.
type AuthorizeDeps struct {
	Store   repository.Store
	CodeTTL time.Duration
}

type authorizeService struct {
	store   repository.Store
	codeTTL time.Duration
}

// NewAuthorizeService crea el service.
func NewAuthorizeService(d AuthorizeDeps) AuthorizeService {
	return &authorizeService{store: d.Store, codeTTL: d.CodeTTL}
}

// Authorize valida cliente, redirect_uri y credenciales del usuario, y emite
// un código de un solo uso. El redirect_uri se compara por igualdad exacta de
// strings contra el registrado; cualquier diferencia rechaza sin redirigir.
func (s *authorizeService) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize"))

	if req.ClientID == "" || req.RedirectURI == "" || req.Username == "" || req.Password == "" {
		return nil, ErrTokenInvalidRequest
	}

	client, err := s.store.GetClient(ctx, req.ClientID)
	if repository.IsNotFound(err) {
		return nil, ErrTokenInvalidClient
	}
	if err != nil {
		return nil, fmt.Errorf("authorize: load client: %w", err)
	}

	if req.RedirectURI != client.RedirectURI {
		log.Warn("redirect_uri mismatch", logger.ClientID(req.ClientID))
		return nil, ErrInvalidRedirect
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if repository.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authorize: load user: %w", err)
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("authorize: generate code: %w", err)
	}

	ac := &repository.AuthorizationCode{
		Code:        code,
		ClientID:    client.ID,
		UserID:      user.ID,
		RedirectURI: req.RedirectURI,
		Scope:       req.Scope,
		ExpiresAt:   time.Now().UTC().Add(s.codeTTL),
	}
	if err := s.store.CreateAuthCode(ctx, ac); err != nil {
		return nil, fmt.Errorf("authorize: persist code: %w", err)
	}

	log.Info("authorization code issued",
		logger.ClientID(client.ID), logger.UserID(user.ID), logger.TokenType("code"))

	return &AuthorizeResult{
		Code:        code,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	}, nil
}
