package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/keygate/internal/cache"
	mw "github.com/dropDatabas3/keygate/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := mw.GetClaims(r.Context())
		if claims == nil {
			t.Error("no claims in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if got := mw.GetUserID(r.Context()); got != claims.Sub {
			t.Errorf("user id in context = %q, want %q", got, claims.Sub)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func newJWTService() *jwtx.Service {
	return jwtx.NewService(jwtx.Deps{
		Codec:      jwtx.NewCodec(testSecret),
		Cache:      cache.NewMemory(""),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
}

func TestRequireAuthAllowsValidToken(t *testing.T) {
	svc := newJWTService()
	h := mw.Chain(protectedHandler(t), mw.RequireAuth(svc))

	pair, err := svc.Generate(context.Background(), "user-1", "u1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthUniform401(t *testing.T) {
	svc := newJWTService()
	h := mw.Chain(protectedHandler(t), mw.RequireAuth(svc))

	expired, err := jwtx.NewCodec(testSecret).Sign(jwtx.Claims{
		Sub: "user-1", Email: "u1@example.com",
		Iat: time.Now().Add(-time.Hour).Unix(),
		Exp: time.Now().Add(-time.Minute).Unix(),
		Jti: "jti-old",
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	revokedPair, err := svc.Generate(context.Background(), "user-2", "u2@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Revoke(context.Background(), revokedPair.AccessToken); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	cases := map[string]string{
		"missing header":   "",
		"not bearer":       "Basic abc",
		"garbage token":    "Bearer not-a-jwt",
		"expired token":    "Bearer " + expired,
		"revoked token":    "Bearer " + revokedPair.AccessToken,
		"tampered content": "Bearer " + expired + "x",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			// Misma respuesta para toda falla de credencial.
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("missing WWW-Authenticate header")
			}
		})
	}
}

// erroringValidator simula el almacén de revocación caído.
type erroringValidator struct{}

func (erroringValidator) Validate(ctx context.Context, raw string) (*jwtx.Claims, error) {
	return nil, context.DeadlineExceeded
}

func TestRequireAuthInfraErrorIs500(t *testing.T) {
	h := mw.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler reached with unverified token")
		}),
		mw.RequireAuth(erroringValidator{}),
	)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
