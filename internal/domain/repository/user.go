package repository

import (
	"context"
	"time"
)

// User es un resource owner con credenciales propias.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // PHC argon2id
	CreatedAt    time.Time
}

// UserRepository acceso a usuarios.
type UserRepository interface {
	// GetUserByUsername retorna un usuario por username. ErrNotFound si no existe.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByID retorna un usuario por ID. ErrNotFound si no existe.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// CreateUser registra un usuario nuevo. ErrConflict si el username ya existe.
	CreateUser(ctx context.Context, u *User) error
}
