package inventory

import (
	"context"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del proveedor, pasando repositorios atados a ella.
// Si fn devuelve error no queda ninguna escritura visible; el producto y su movimiento se confirman juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockMetrics contadores del motor de stock (Prometheus en producción).
type StockMetrics interface {
	MovementRecorded(kind entity.MovementKind, quantity int64)
	MovementRejected(kind entity.MovementKind, reason string)
}

// NopMetrics implementación vacía de StockMetrics.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(entity.MovementKind, int64)  {}
func (NopMetrics) MovementRejected(entity.MovementKind, string) {}

// Exporter serializa una foto del inventario a un formato de salida (csv, txt, xlsx, pdf).
type Exporter interface {
	Format() string
	ContentType() string
	Export(ctx context.Context, snapshot *dto.InventorySnapshot) ([]byte, error)
}
