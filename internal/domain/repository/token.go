package repository

import (
	"context"
	"time"
)

// AccessToken es un access token opaco emitido por el token endpoint.
// El valor aleatorio es la PK.
type AccessToken struct {
	Token     string
	ClientID  string
	UserID    string
	Scope     string // heredado del authorization code
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AccessTokenRepository acceso a tokens opacos.
type AccessTokenRepository interface {
	// CreateAccessToken persiste un token nuevo.
	CreateAccessToken(ctx context.Context, t *AccessToken) error

	// GetAccessToken retorna un token vigente. ErrNotFound si no existe,
	// ErrExpired si existe pero ya venció.
	GetAccessToken(ctx context.Context, token string) (*AccessToken, error)

	// DeleteAccessToken elimina un token. Es idempotente: borrar un token
	// inexistente no es error.
	DeleteAccessToken(ctx context.Context, token string) error

	// DeleteExpiredAccessTokens limpia tokens vencidos. Retorna cuántos borró.
	DeleteExpiredAccessTokens(ctx context.Context) (int64, error)
}

// Store agrupa todos los repositorios del dominio.
type Store interface {
	ClientRepository
	UserRepository
	AuthCodeRepository
	AccessTokenRepository

	// Ping verifica la conexión al backend.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close()
}
