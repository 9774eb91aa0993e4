package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/keygate/internal/domain/repository"
)

// UserInfo es la identidad resuelta desde un access token opaco.
type UserInfo struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
	Scope    string `json:"scope,omitempty"`
}

// UserInfoService resuelve access tokens opacos a identidad de usuario.
type UserInfoService interface {
	Resolve(ctx context.Context, token string) (*UserInfo, error)
}

// UserInfoDeps dependencias del service.
type UserInfoDeps struct {
	Store repository.Store
}

type userInfoService struct {
	store repository.Store
}

// NewUserInfoService crea el service.
func NewUserInfoService(d UserInfoDeps) UserInfoService {
	return &userInfoService{store: d.Store}
}

func (s *userInfoService) Resolve(ctx context.Context, token string) (*UserInfo, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	at, err := s.store.GetAccessToken(ctx, token)
	if repository.IsNotFound(err) || errors.Is(err, repository.ErrExpired) {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("userinfo: load token: %w", err)
	}

	user, err := s.store.GetUserByID(ctx, at.UserID)
	if repository.IsNotFound(err) {
		// El usuario fue borrado después de emitir el token.
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("userinfo: load user: %w", err)
	}

	return &UserInfo{Sub: user.ID, Username: user.Username, Scope: at.Scope}, nil
}
