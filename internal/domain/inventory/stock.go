// Package inventory contiene las reglas puras del inventario: normalización de SKU,
// validación de productos y aplicación de movimientos de stock.
package inventory

import (
	"math"

	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

// LowStockThreshold umbral por defecto para alertas de stock bajo (unidades).
const LowStockThreshold = 5

// ApplyDelta calcula la nueva cantidad tras un movimiento ENTRADA/SALIDA.
// Nunca devuelve una cantidad negativa: una salida mayor al stock falla con ErrInsufficientStock
// y una entrada que desborda int64 falla con ErrInvalidQuantity.
func ApplyDelta(current int64, kind entity.MovementKind, quantity int64) (int64, error) {
	if quantity <= 0 {
		return current, domain.ErrInvalidQuantity
	}
	switch kind {
	case entity.MovementEntry:
		if quantity > math.MaxInt64-current {
			return current, domain.ErrInvalidQuantity
		}
		return current + quantity, nil
	case entity.MovementExit:
		if quantity > current {
			return current, domain.ErrInsufficientStock
		}
		return current - quantity, nil
	default:
		return current, domain.ErrInvalidValue
	}
}

// IsLowStock indica si la cantidad está por debajo del umbral.
func IsLowStock(quantity int64, threshold int) bool {
	return quantity < int64(threshold)
}
