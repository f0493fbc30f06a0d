package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrDuplicateSKU      = errors.New("ya existe un producto con ese SKU")
	ErrDuplicateUser     = errors.New("el usuario ya existe")
	ErrInvalidValue      = errors.New("valor inválido")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser mayor que cero")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrSelfDelete        = errors.New("no puedes eliminar tu propia cuenta mientras la usas")
	ErrPersistence       = errors.New("error de persistencia")
)

// FieldError describe un campo rechazado por la validación.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa los errores por campo de una entidad. errors.Is(err, ErrInvalidValue) es true.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidValue.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidValue.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidValue }

// Add registra un error de campo.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil devuelve nil si no hay errores de campo.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// PersistenceError envuelve un fallo de E/S o serialización del proveedor de persistencia,
// conservando la causa. errors.Is(err, ErrPersistence) es true.
func PersistenceError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, cause)
}
