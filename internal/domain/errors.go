package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrInvalidOrExpiredCode = errors.New("código de inscripción inválido o vencido")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
)

// ValidationError describe qué campo de la entrada es inválido.
// errors.Is(err, ErrInvalidInput) es true para cualquier ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsClientError informa si err pertenece a la taxonomía visible al cliente
// (validación, no encontrado, código inválido, conflicto, auth). Todo lo demás es error de servidor.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrNotFound, ErrInvalidOrExpiredCode,
		ErrConflict, ErrEmailAlreadyExists, ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
