package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
)

func (s *Store) CreateAccessToken(ctx context.Context, t *repository.AccessToken) error {
	const q = `
		INSERT INTO access_tokens (token, client_id, user_id, scope, expires_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, q, t.Token, t.ClientID, t.UserID, t.Scope, t.ExpiresAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("pg: create access token: %w", err)
	}
	return nil
}

func (s *Store) GetAccessToken(ctx context.Context, token string) (*repository.AccessToken, error) {
	const q = `
		SELECT token, client_id, user_id, scope, expires_at, created_at
		FROM access_tokens
		WHERE token = $1`

	var t repository.AccessToken
	err := s.pool.QueryRow(ctx, q, token).Scan(&t.Token, &t.ClientID, &t.UserID, &t.Scope, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get access token: %w", err)
	}

	if time.Now().After(t.ExpiresAt) {
		return nil, repository.ErrExpired
	}
	return &t, nil
}

func (s *Store) DeleteAccessToken(ctx context.Context, token string) error {
	const q = `DELETE FROM access_tokens WHERE token = $1`

	// Idempotente: no distinguimos entre borrado y no-existente.
	if _, err := s.pool.Exec(ctx, q, token); err != nil {
		return fmt.Errorf("pg: delete access token: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredAccessTokens(ctx context.Context) (int64, error) {
	const q = `DELETE FROM access_tokens WHERE expires_at <= now()`

	tag, err := s.pool.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("pg: delete expired access tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
