package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
)

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*repository.User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1`

	var u repository.User
	err := s.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user by username: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*repository.User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1`

	var u repository.User
	err := s.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user by id: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *repository.User) error {
	const q = `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, q, u.ID, u.Username, u.Email, u.PasswordHash)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("pg: create user: %w", err)
	}
	return nil
}
