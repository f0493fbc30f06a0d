package repository

import (
	"context"

	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar el historial.
type MovementFilter struct {
	Kind  entity.MovementKind // vacío = todos
	Actor string              // vacío = todos
}

// Match indica si el movimiento cumple el filtro.
func (f MovementFilter) Match(m *entity.Movement) bool {
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.Actor != "" && m.Actor != f.Actor {
		return false
	}
	return true
}

// MovementRepository define el puerto de persistencia del historial (append-only).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// ListByProduct devuelve los movimientos cuya referencia coincide con el SKU (normalizado) o,
	// si es lápida, con el nombre guardado; ordenados por fecha ascendente.
	ListByProduct(ctx context.Context, sku, name string) ([]*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	// TombstoneProduct convierte en lápida las referencias vivas al SKU indicado, todas con el
	// nombre final del producto.
	TombstoneProduct(ctx context.Context, sku, finalName string) error
	// DeleteAll borra todo el historial (purga administrativa). Devuelve cuántos se borraron.
	DeleteAll(ctx context.Context) (int, error)
}
