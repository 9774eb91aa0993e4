package repository

import (
	"context"
	"time"
)

// Client es un cliente OAuth2 registrado.
type Client struct {
	ID          string
	Secret      string
	RedirectURI string
	CreatedAt   time.Time
}

// ClientRepository acceso a clientes OAuth2.
type ClientRepository interface {
	// GetClient retorna un cliente por ID. ErrNotFound si no existe.
	GetClient(ctx context.Context, id string) (*Client, error)

	// CreateClient registra un cliente nuevo. ErrConflict si el ID ya existe.
	CreateClient(ctx context.Context, c *Client) error
}
