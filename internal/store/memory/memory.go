// Package memory implementa repository.Store en memoria.
// Para desarrollo local y tests; mismas garantías de atomicidad
// que el backend Postgres (consume de un solo ganador).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
)

// Store implementa repository.Store con maps protegidos por mutex.
type Store struct {
	mu      sync.Mutex
	clients map[string]repository.Client
	users   map[string]repository.User // key: username
	codes   map[string]repository.AuthorizationCode
	tokens  map[string]repository.AccessToken
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		clients: make(map[string]repository.Client),
		users:   make(map[string]repository.User),
		codes:   make(map[string]repository.AuthorizationCode),
		tokens:  make(map[string]repository.AccessToken),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close()                         {}

// --- clients ---

func (s *Store) GetClient(ctx context.Context, id string) (*repository.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *Store) CreateClient(ctx context.Context, c *repository.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.ID]; ok {
		return repository.ErrConflict
	}
	cc := *c
	if cc.CreatedAt.IsZero() {
		cc.CreatedAt = time.Now().UTC()
	}
	s.clients[c.ID] = cc
	return nil
}

// --- users ---

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, u *repository.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return repository.ErrConflict
	}
	uu := *u
	if uu.CreatedAt.IsZero() {
		uu.CreatedAt = time.Now().UTC()
	}
	s.users[u.Username] = uu
	return nil
}

// --- authorization codes ---

func (s *Store) CreateAuthCode(ctx context.Context, c *repository.AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[c.Code]; ok {
		return repository.ErrConflict
	}
	cc := *c
	if cc.CreatedAt.IsZero() {
		cc.CreatedAt = time.Now().UTC()
	}
	s.codes[c.Code] = cc
	return nil
}

func (s *Store) ConsumeAuthCode(ctx context.Context, code string) (*repository.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.codes, code)
	out := c
	return &out, nil
}

func (s *Store) DeleteExpiredAuthCodes(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := time.Now()
	for k, c := range s.codes {
		if now.After(c.ExpiresAt) {
			delete(s.codes, k)
			n++
		}
	}
	return n, nil
}

// --- access tokens ---

func (s *Store) CreateAccessToken(ctx context.Context, t *repository.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[t.Token]; ok {
		return repository.ErrConflict
	}
	tt := *t
	if tt.CreatedAt.IsZero() {
		tt.CreatedAt = time.Now().UTC()
	}
	s.tokens[t.Token] = tt
	return nil
}

func (s *Store) GetAccessToken(ctx context.Context, token string) (*repository.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if time.Now().After(t.ExpiresAt) {
		return nil, repository.ErrExpired
	}
	out := t
	return &out, nil
}

func (s *Store) DeleteAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *Store) DeleteExpiredAccessTokens(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	now := time.Now()
	for k, t := range s.tokens {
		if now.After(t.ExpiresAt) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}
