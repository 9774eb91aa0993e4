// Package auth contiene los controllers del plano de tokens firmados.
package auth

import (
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
)

// Controllers agrupa los controllers del plano JWT.
type Controllers struct {
	Session *SessionController
	Profile *ProfileController
}

// NewControllers crea los controllers a partir del service.
func NewControllers(s *jwtx.Service) *Controllers {
	return &Controllers{
		Session: NewSessionController(s),
		Profile: NewProfileController(),
	}
}
