package auth

import (
	"net/http"

	"github.com/dropDatabas3/keygate/internal/http/helpers"
	mw "github.com/dropDatabas3/keygate/internal/http/middlewares"
)

// ProfileController expone el recurso protegido de ejemplo.
// Requiere RequireAuth en la cadena de middlewares.
type ProfileController struct{}

// NewProfileController creates the controller.
func NewProfileController() *ProfileController {
	return &ProfileController{}
}

// Profile handles GET /auth/profile.
// Lee las claims que RequireAuth dejó en el contexto.
func (c *ProfileController) Profile(w http.ResponseWriter, r *http.Request) {
	claims := mw.GetClaims(r.Context())
	if claims == nil {
		helpers.WriteError(w, helpers.ErrUnauthorized)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"sub":   claims.Sub,
		"email": claims.Email,
		"jti":   claims.Jti,
		"exp":   claims.Exp,
	})
}
