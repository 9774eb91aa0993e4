package jwt_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/keygate/internal/cache"
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
)

func newService(t *testing.T) (*jwtx.Service, cache.Client) {
	t.Helper()
	c := cache.NewMemory("")
	s := jwtx.NewService(jwtx.Deps{
		Codec:      jwtx.NewCodec(testSecret),
		Cache:      c,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	return s, c
}

func TestGenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	pair, err := s.Generate(ctx, "user-1", "u1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token pair")
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("token_type = %q", pair.TokenType)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("expires_in = %d", pair.ExpiresIn)
	}

	claims, err := s.Validate(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "u1@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Jti == "" {
		t.Fatal("missing jti")
	}
}

func TestRevokeUntilExpiry(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	pair, err := s.Generate(ctx, "user-1", "u1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	jti, err := s.Revoke(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if jti == "" {
		t.Fatal("empty jti")
	}

	if _, err := s.Validate(ctx, pair.AccessToken); !errors.Is(err, jwtx.ErrRevoked) {
		t.Fatalf("Validate revoked: got %v, want ErrRevoked", err)
	}

	// Revocar de nuevo es idempotente.
	if _, err := s.Revoke(ctx, pair.AccessToken); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}

	// Otros tokens del mismo usuario no se ven afectados.
	other, err := s.Generate(ctx, "user-1", "u1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := s.Validate(ctx, other.AccessToken); err != nil {
		t.Fatalf("Validate other token: %v", err)
	}
}

func TestRevokeExpiredToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	raw, err := jwtx.NewCodec(testSecret).Sign(testClaims(-time.Minute))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := s.Revoke(ctx, raw); !errors.Is(err, jwtx.ErrAlreadyExpired) {
		t.Fatalf("Revoke expired: got %v, want ErrAlreadyExpired", err)
	}
}

func TestRevokeRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	raw, err := jwtx.NewCodec("ffffffffffffffffffffffffffffffff").Sign(testClaims(time.Minute))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := s.Revoke(ctx, raw); !errors.Is(err, jwtx.ErrSignature) {
		t.Fatalf("Revoke foreign token: got %v, want ErrSignature", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	pair, err := s.Generate(ctx, "user-1", "u1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	next, err := s.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// El refresh anterior quedó consumido.
	if _, err := s.Refresh(ctx, pair.RefreshToken); !errors.Is(err, jwtx.ErrRefreshInvalid) {
		t.Fatalf("reuse of consumed refresh: got %v, want ErrRefreshInvalid", err)
	}

	// El access token anterior sigue válido hasta su expiración natural.
	if _, err := s.Validate(ctx, pair.AccessToken); err != nil {
		t.Fatalf("old access token after rotation: %v", err)
	}

	// El nuevo par preserva la identidad.
	claims, err := s.Validate(ctx, next.AccessToken)
	if err != nil {
		t.Fatalf("Validate new access token: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "u1@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	pair, err := s.Generate(ctx, "user-1", "u1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Refresh(ctx, pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, jwtx.ErrRefreshInvalid):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if losses != workers-1 {
		t.Fatalf("losses = %d, want %d", losses, workers-1)
	}
}

// ttlRecordingCache registra la key y el TTL del último Set.
type ttlRecordingCache struct {
	cache.Client
	mu      sync.Mutex
	lastKey string
	lastTTL time.Duration
}

func (c *ttlRecordingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	c.lastKey = key
	c.lastTTL = ttl
	c.mu.Unlock()
	return c.Client.Set(ctx, key, value, ttl)
}

func TestRevokeBlacklistExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	rec := &ttlRecordingCache{Client: cache.NewMemory("")}
	s := jwtx.NewService(jwtx.Deps{
		Codec: jwtx.NewCodec(testSecret),
		Cache: rec,
	})

	// La entrada en blacklist vive exactamente lo que le queda al token.
	raw, err := jwtx.NewCodec(testSecret).Sign(testClaims(90 * time.Second))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	jti, err := s.Revoke(ctx, raw)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	if want := "blacklist:jti:" + jti; rec.lastKey != want {
		t.Fatalf("blacklist key = %q, want %q", rec.lastKey, want)
	}
	if rec.lastTTL <= 85*time.Second || rec.lastTTL > 90*time.Second {
		t.Fatalf("blacklist ttl = %v, want remaining lifetime (~90s)", rec.lastTTL)
	}

	// Con un token a punto de vencer, la key desaparece sola del almacén
	// al cumplirse la expiración natural.
	short, err := jwtx.NewCodec(testSecret).Sign(testClaims(time.Second))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	shortJti, err := s.Revoke(ctx, short)
	if err != nil {
		t.Fatalf("Revoke short-lived: %v", err)
	}

	time.Sleep(1200 * time.Millisecond)
	exists, err := rec.Exists(ctx, "blacklist:jti:"+shortJti)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatal("blacklist entry survived the token's natural expiry")
	}
}

// failingCache simula un almacén de revocación caído.
type failingCache struct {
	cache.Client
}

func (f *failingCache) Exists(ctx context.Context, key string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestValidateFailsSecureOnStoreError(t *testing.T) {
	ctx := context.Background()
	s := jwtx.NewService(jwtx.Deps{
		Codec: jwtx.NewCodec(testSecret),
		Cache: &failingCache{Client: cache.NewMemory("")},
	})

	raw, err := jwtx.NewCodec(testSecret).Sign(testClaims(time.Minute))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	_, err = s.Validate(ctx, raw)
	if err == nil {
		t.Fatal("Validate succeeded with revocation store down")
	}
	// El error es de infraestructura, no de credencial.
	for _, sentinel := range []error{jwtx.ErrMalformed, jwtx.ErrSignature, jwtx.ErrExpired, jwtx.ErrRevoked} {
		if errors.Is(err, sentinel) {
			t.Fatalf("infrastructure failure reported as credential error: %v", err)
		}
	}
}

func TestLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	// Emitir y validar.
	pair, err := s.Generate(ctx, "user-9", "u9@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := s.Validate(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// Rotar: el refresh viejo muere.
	next, err := s.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := s.Refresh(ctx, pair.RefreshToken); !errors.Is(err, jwtx.ErrRefreshInvalid) {
		t.Fatalf("old refresh alive after rotation: %v", err)
	}

	// Revocar el access nuevo: deja de validar.
	if _, err := s.Revoke(ctx, next.AccessToken); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := s.Validate(ctx, next.AccessToken); !errors.Is(err, jwtx.ErrRevoked) {
		t.Fatalf("Validate after revoke: got %v, want ErrRevoked", err)
	}
}
