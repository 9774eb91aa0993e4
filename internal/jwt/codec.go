package jwt

import (
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Errores del codec. El orden de detección es: estructura → firma → expiración.
var (
	// ErrMalformed indica que el token no es un JWT bien formado.
	ErrMalformed = errors.New("jwt: malformed token")

	// ErrSignature indica que la firma no verifica contra el secreto.
	ErrSignature = errors.New("jwt: invalid signature")

	// ErrExpired indica que el token venció. Las claims decodificadas
	// siguen disponibles para flujos que las necesiten (ej: revoke).
	ErrExpired = errors.New("jwt: token expired")
)

// Codec firma y verifica tokens HS256.
type Codec struct {
	secret []byte
}

// NewCodec crea un codec con el secreto compartido.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign serializa y firma las claims con HS256.
func (c *Codec) Sign(claims Claims) (string, error) {
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub":   claims.Sub,
		"email": claims.Email,
		"iat":   claims.Iat,
		"exp":   claims.Exp,
		"jti":   claims.Jti,
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Decode verifica y decodifica un token.
// Con ErrExpired las claims retornadas son válidas (la firma ya verificó);
// con cualquier otro error son cero.
func (c *Codec) Decode(raw string) (Claims, error) {
	tok, err := jwtv5.Parse(raw,
		func(t *jwtv5.Token) (any, error) { return c.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
			return Claims{}, ErrSignature
		case errors.Is(err, jwtv5.ErrTokenExpired):
			// La firma verificó; exponer las claims para revoke/diagnóstico.
			if tok != nil {
				if mc, ok := tok.Claims.(jwtv5.MapClaims); ok {
					return claimsFromMap(mc), ErrExpired
				}
			}
			return Claims{}, ErrExpired
		default:
			return Claims{}, fmt.Errorf("jwt: parse: %w", err)
		}
	}

	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return Claims{}, ErrMalformed
	}
	return claimsFromMap(mc), nil
}

func claimsFromMap(mc jwtv5.MapClaims) Claims {
	var c Claims
	if v, ok := mc["sub"].(string); ok {
		c.Sub = v
	}
	if v, ok := mc["email"].(string); ok {
		c.Email = v
	}
	if v, ok := mc["jti"].(string); ok {
		c.Jti = v
	}
	// Los números JSON llegan como float64.
	if v, ok := mc["iat"].(float64); ok {
		c.Iat = int64(v)
	}
	if v, ok := mc["exp"].(float64); ok {
		c.Exp = int64(v)
	}
	return c
}
