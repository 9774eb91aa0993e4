package repository

import (
	"context"
	"time"
)

// AuthorizationCode es un código de autorización de un solo uso.
// El código es la PK; consumirlo lo elimina.
type AuthorizationCode struct {
	Code        string
	ClientID    string
	UserID      string
	RedirectURI string
	Scope       string // flat string, opcional
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// AuthCodeRepository acceso a códigos de autorización.
type AuthCodeRepository interface {
	// CreateAuthCode persiste un código nuevo. ErrConflict si ya existe.
	CreateAuthCode(ctx context.Context, c *AuthorizationCode) error

	// ConsumeAuthCode elimina y retorna el código en una sola operación.
	// Bajo concurrencia exactamente un caller lo obtiene; el resto recibe
	// ErrNotFound. El caller valida client/redirect/expiración después.
	ConsumeAuthCode(ctx context.Context, code string) (*AuthorizationCode, error)

	// DeleteExpiredAuthCodes limpia códigos vencidos. Retorna cuántos borró.
	DeleteExpiredAuthCodes(ctx context.Context) (int64, error)
}
