package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/keygate/internal/cache"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// Errores del ciclo de vida de tokens.
var (
	// ErrRevoked indica que el JTI está en la blacklist.
	ErrRevoked = errors.New("jwt: token revoked")

	// ErrRefreshInvalid indica que el refresh token no existe o ya fue usado.
	ErrRefreshInvalid = errors.New("jwt: refresh token invalid or expired")

	// ErrAlreadyExpired indica que el token ya venció y no hay nada que revocar.
	ErrAlreadyExpired = errors.New("jwt: token already expired")
)

const (
	refreshKeyPrefix   = "refresh_token:"
	blacklistKeyPrefix = "blacklist:jti:"
	blacklistValue     = "revoked"
)

// refreshSession es el payload guardado por cada refresh token.
type refreshSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Deps son las dependencias del service.
type Deps struct {
	Codec      *Codec
	Cache      cache.Client
	AccessTTL  time.Duration // default 15m
	RefreshTTL time.Duration // default 7d
}

// Service emite, valida, rota y revoca tokens firmados.
// El estado de sesión (refresh tokens y blacklist) vive en cache.Client.
type Service struct {
	codec      *Codec
	cache      cache.Client
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time // inyectable en tests
}

// NewService crea el service con defaults razonables.
func NewService(d Deps) *Service {
	if d.AccessTTL <= 0 {
		d.AccessTTL = 15 * time.Minute
	}
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		codec:      d.Codec,
		cache:      d.Cache,
		accessTTL:  d.AccessTTL,
		refreshTTL: d.RefreshTTL,
		now:        time.Now,
	}
}

// Generate emite un par access+refresh para el usuario.
func (s *Service) Generate(ctx context.Context, userID, email string) (*TokenPair, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("jwt.generate"))

	now := s.now().UTC()
	claims := Claims{
		Sub:   userID,
		Email: email,
		Iat:   now.Unix(),
		Exp:   now.Add(s.accessTTL).Unix(),
		Jti:   uuid.NewString(),
	}

	access, err := s.codec.Sign(claims)
	if err != nil {
		return nil, err
	}

	refreshID := uuid.NewString()
	payload, err := json.Marshal(refreshSession{UserID: userID, Email: email})
	if err != nil {
		return nil, fmt.Errorf("jwt: marshal session: %w", err)
	}
	if err := s.cache.Set(ctx, refreshKeyPrefix+refreshID, string(payload), s.refreshTTL); err != nil {
		return nil, fmt.Errorf("jwt: store refresh session: %w", err)
	}

	log.Debug("token pair issued", logger.UserID(userID), logger.JTI(claims.Jti))

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshID,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Validate verifica un access token: estructura → firma → expiración → revocación.
// Un fallo del almacén de revocación es un error de infraestructura, nunca se
// interpreta como token válido.
func (s *Service) Validate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}

	exists, err := s.cache.Exists(ctx, blacklistKeyPrefix+claims.Jti)
	if err != nil {
		return nil, fmt.Errorf("jwt: revocation check: %w", err)
	}
	if exists {
		return nil, ErrRevoked
	}

	return &claims, nil
}

// Refresh consume el refresh token y emite un par nuevo.
// El consumo es atómico (GetDel): bajo concurrencia exactamente un caller
// gana; los demás reciben ErrRefreshInvalid. El access token anterior NO se
// agrega a la blacklist: sigue válido hasta su expiración natural.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("jwt.refresh"))

	payload, err := s.cache.GetDel(ctx, refreshKeyPrefix+refreshToken)
	if cache.IsNotFound(err) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("jwt: consume refresh session: %w", err)
	}

	var sess refreshSession
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, fmt.Errorf("jwt: decode refresh session: %w", err)
	}

	log.Debug("refresh token rotated", logger.UserID(sess.UserID))
	return s.Generate(ctx, sess.UserID, sess.Email)
}

// Revoke agrega el JTI del token a la blacklist hasta su expiración natural.
// Es idempotente: revocar dos veces no es error. Un token con firma inválida
// no puede revocarse; uno ya expirado retorna ErrAlreadyExpired.
func (s *Service) Revoke(ctx context.Context, raw string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("jwt.revoke"))

	claims, err := s.codec.Decode(raw)
	if errors.Is(err, ErrExpired) {
		return "", ErrAlreadyExpired
	}
	if err != nil {
		return "", err
	}

	remaining := claims.ExpiresAt().Sub(s.now())
	if remaining <= 0 {
		return "", ErrAlreadyExpired
	}

	if err := s.cache.Set(ctx, blacklistKeyPrefix+claims.Jti, blacklistValue, remaining); err != nil {
		return "", fmt.Errorf("jwt: blacklist jti: %w", err)
	}

	log.Info("token revoked", logger.JTI(claims.Jti), logger.UserID(claims.Sub))
	return claims.Jti, nil
}

// AccessTTL expone el TTL de access tokens configurado.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }
