// Package jwt implementa el ciclo de vida de tokens firmados:
// emisión HS256, validación, rotación de refresh tokens y revocación.
package jwt

import "time"

// Claims son las claims emitidas en cada access token.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
	Jti   string `json:"jti"`
}

// ExpiresAt retorna la expiración como time.Time.
func (c Claims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}

// IssuedAt retorna la emisión como time.Time.
func (c Claims) IssuedAt() time.Time {
	return time.Unix(c.Iat, 0)
}

// TokenPair es el resultado de emitir o rotar credenciales.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
