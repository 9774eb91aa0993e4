package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
)

func (s *Store) CreateAuthCode(ctx context.Context, c *repository.AuthorizationCode) error {
	const q = `
		INSERT INTO authorization_codes (code, client_id, user_id, redirect_uri, scope, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, q, c.Code, c.ClientID, c.UserID, c.RedirectURI, c.Scope, c.ExpiresAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("pg: create auth code: %w", err)
	}
	return nil
}

// ConsumeAuthCode borra el código y lo retorna en una sola sentencia.
// DELETE ... RETURNING garantiza un solo ganador bajo concurrencia.
func (s *Store) ConsumeAuthCode(ctx context.Context, code string) (*repository.AuthorizationCode, error) {
	const q = `
		DELETE FROM authorization_codes
		WHERE code = $1
		RETURNING code, client_id, user_id, redirect_uri, scope, expires_at, created_at`

	var c repository.AuthorizationCode
	err := s.pool.QueryRow(ctx, q, code).Scan(
		&c.Code, &c.ClientID, &c.UserID, &c.RedirectURI, &c.Scope, &c.ExpiresAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: consume auth code: %w", err)
	}
	return &c, nil
}

func (s *Store) DeleteExpiredAuthCodes(ctx context.Context) (int64, error) {
	const q = `DELETE FROM authorization_codes WHERE expires_at <= now()`

	tag, err := s.pool.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("pg: delete expired auth codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
