package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/keygate/internal/http/helpers"
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
)

// TokenValidator valida un access token y retorna sus claims.
// Lo implementa *jwt.Service.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*jwtx.Claims, error)
}

// RequireAuth valida Authorization: Bearer <token> y guarda las claims en el
// contexto. Cualquier fallo de credencial (ausente, malformado, firma, expirado,
// revocado) responde el mismo 401 sin distinguir la causa. Un fallo del almacén
// de revocación responde 500: nunca se deja pasar un token sin verificar.
func RequireAuth(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				helpers.WriteError(w, helpers.ErrUnauthorized)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := v.Validate(r.Context(), raw)
			if err != nil {
				if isCredentialError(err) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
					helpers.WriteError(w, helpers.ErrUnauthorized)
					return
				}
				logger.From(r.Context()).Error("token validation failed",
					logger.Op("require_auth"), logger.Err(err))
				helpers.WriteError(w, helpers.ErrInternalServerError)
				return
			}

			// Inyectar claims en contexto
			ctx := WithClaims(r.Context(), claims)
			if claims.Sub != "" {
				ctx = WithUserID(ctx, claims.Sub)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isCredentialError distingue fallos del token de fallos de infraestructura.
func isCredentialError(err error) bool {
	return errors.Is(err, jwtx.ErrMalformed) ||
		errors.Is(err, jwtx.ErrSignature) ||
		errors.Is(err, jwtx.ErrExpired) ||
		errors.Is(err, jwtx.ErrRevoked)
}
