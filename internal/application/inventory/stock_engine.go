package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// StockEngine registra entradas y salidas de stock de forma transaccional: bloquea el producto
// (SELECT FOR UPDATE), aplica el delta, lo persiste con compare-and-swap de versión y agrega el
// movimiento en la misma transacción. Un rechazo no deja escrituras.
type StockEngine struct {
	txRunner TxRunner
	metrics  StockMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewStockEngine construye el motor. metrics puede ser nil.
func NewStockEngine(txRunner TxRunner, metrics StockMetrics, log *logger.Logger) *StockEngine {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &StockEngine{txRunner: txRunner, metrics: metrics, log: log.Component("stock"), now: time.Now}
}

// ApplyMovement aplica una ENTRADA o SALIDA de quantity unidades al producto sku y devuelve
// la cantidad resultante.
func (e *StockEngine) ApplyMovement(
	ctx context.Context,
	actor entity.Actor,
	sku string,
	kind entity.MovementKind,
	quantity int64,
) (int64, error) {
	if quantity <= 0 {
		e.metrics.MovementRejected(kind, "invalid_quantity")
		return 0, domain.ErrInvalidQuantity
	}
	if !kind.IsStockChange() {
		e.metrics.MovementRejected(kind, "invalid_kind")
		return 0, domain.ErrInvalidValue
	}
	sku = inventory.NormalizeSKU(sku)

	var newQty int64
	err := e.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		product, err := productRepo.GetForUpdate(ctx, sku)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		qty, err := inventory.ApplyDelta(product.Quantity, kind, quantity)
		if err != nil {
			return err
		}
		now := e.now()
		product.Quantity = qty
		product.UpdatedAt = now
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		newQty = qty
		return movRepo.Create(ctx, newMovement(entity.LiveRef(product.SKU, product.Name), kind, quantity, actor, now))
	})
	if err != nil {
		e.metrics.MovementRejected(kind, rejectReason(err))
		return 0, err
	}

	e.metrics.MovementRecorded(kind, quantity)
	e.log.Info().
		Str("sku", sku).
		Str("tipo", string(kind)).
		Int64("cantidad", quantity).
		Int64("stock", newQty).
		Str("actor", actor.Username).
		Msg("movimiento registrado")
	return newQty, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	}
	return "other"
}
