// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/keygate/internal/http"
	authctrl "github.com/dropDatabas3/keygate/internal/http/controllers/auth"
	oauthctrl "github.com/dropDatabas3/keygate/internal/http/controllers/oauth"
	mw "github.com/dropDatabas3/keygate/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
)

// Deps contiene las dependencias del router.
type Deps struct {
	OAuth      *oauthctrl.Controllers
	Auth       *authctrl.Controllers
	JWTService *jwtx.Service
	Health     http.HandlerFunc
}

// New construye el router con la cadena de middlewares global.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Middlewares globales: recover primero, logging al final.
	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(mw.WithSecurityHeaders())
	r.Use(httpx.WithMetrics())
	r.Use(mw.WithLogging())

	if d.Health != nil {
		r.Get("/healthz", d.Health)
	}

	// Plano OAuth2: tokens opacos respaldados en Postgres.
	r.Route("/oauth2", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Post("/authorize", d.OAuth.Authorize.Authorize)
		r.Post("/token", d.OAuth.Token.Token)
		r.Post("/revoke", d.OAuth.Revoke.Revoke)
		r.Get("/userinfo", d.OAuth.UserInfo.UserInfo)
	})

	// Plano JWT: tokens firmados con sesiones en Redis.
	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Post("/token", d.Auth.Session.Generate)
		r.Post("/validate", d.Auth.Session.Validate)
		r.Post("/refresh", d.Auth.Session.Refresh)
		r.Post("/revoke", d.Auth.Session.Revoke)

		// Recursos protegidos por el middleware de autenticación.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth(d.JWTService))
			r.Get("/profile", d.Auth.Profile.Profile)
		})
	})

	return r
}
