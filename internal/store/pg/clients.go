package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
)

func (s *Store) GetClient(ctx context.Context, id string) (*repository.Client, error) {
	const q = `
		SELECT client_id, client_secret, redirect_uri, created_at
		FROM clients
		WHERE client_id = $1`

	var c repository.Client
	err := s.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Secret, &c.RedirectURI, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get client: %w", err)
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *repository.Client) error {
	const q = `
		INSERT INTO clients (client_id, client_secret, redirect_uri)
		VALUES ($1, $2, $3)`

	_, err := s.pool.Exec(ctx, q, c.ID, c.Secret, c.RedirectURI)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("pg: create client: %w", err)
	}
	return nil
}

// isUniqueViolation detecta el código 23505 de Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
