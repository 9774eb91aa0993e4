package oauth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// RevokeService revoca access tokens opacos.
type RevokeService interface {
	Revoke(ctx context.Context, token string) error
}

// RevokeDeps dependencias del service.
type RevokeDeps struct {
	Store repository.Store
}

type revokeService struct {
	store repository.Store
}

// NewRevokeService crea el service.
func NewRevokeService(d RevokeDeps) RevokeService {
	return &revokeService{store: d.Store}
}

// Revoke elimina el token. Idempotente por RFC 7009: revocar un token
// inexistente o ya revocado también es éxito.
func (s *revokeService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenInvalidRequest
	}

	if err := s.store.DeleteAccessToken(ctx, token); err != nil {
		return fmt.Errorf("revoke: delete token: %w", err)
	}

	logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.revoke")).
		Info("opaque token revoked")
	return nil
}
