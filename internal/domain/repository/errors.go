package repository

import "errors"

// Errores sentinela compartidos por todas las implementaciones de repositorio.
var (
	// ErrNotFound indica que el registro no existe.
	ErrNotFound = errors.New("repository: not found")

	// ErrConflict indica una violación de unicidad (ej: código duplicado).
	ErrConflict = errors.New("repository: conflict")

	// ErrExpired indica que el registro existe pero ya expiró.
	ErrExpired = errors.New("repository: expired")
)

// IsNotFound verifica si el error es ErrNotFound (directo o envuelto).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
