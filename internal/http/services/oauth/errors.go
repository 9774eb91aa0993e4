package oauth

import "errors"

// Errores sentinela del dominio OAuth2. Los controllers los mapean a los
// códigos del RFC 6749 (invalid_request, invalid_client, invalid_grant...).
var (
	// ErrTokenInvalidRequest indica parámetros ausentes o malformados.
	ErrTokenInvalidRequest = errors.New("oauth: invalid request")

	// ErrTokenInvalidClient indica que la autenticación del cliente falló.
	ErrTokenInvalidClient = errors.New("oauth: client authentication failed")

	// ErrTokenInvalidGrant indica un código inválido, expirado, ya usado,
	// o que no corresponde al cliente/redirect_uri presentado.
	ErrTokenInvalidGrant = errors.New("oauth: invalid or expired grant")

	// ErrTokenUnsupportedGrantType indica un grant_type no soportado.
	ErrTokenUnsupportedGrantType = errors.New("oauth: unsupported grant type")

	// ErrTokenInvalid indica un access token opaco inexistente o vencido.
	ErrTokenInvalid = errors.New("oauth: invalid or expired token")

	// ErrInvalidCredentials indica credenciales de usuario incorrectas.
	ErrInvalidCredentials = errors.New("oauth: invalid user credentials")

	// ErrInvalidRedirect indica un redirect_uri que no coincide con el
	// registrado. Nunca se redirige a una URI no registrada.
	ErrInvalidRedirect = errors.New("oauth: redirect_uri mismatch")
)
