package prometrics

import (
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
)

var _ inventory.StockMetrics = (*StockMetrics)(nil)

// StockMetrics contadores del motor de stock.
type StockMetrics struct {
	movements *prometheus.CounterVec
	units     *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewStockMetrics registra los contadores en r.
func NewStockMetrics(r *Registry) *StockMetrics {
	return &StockMetrics{
		movements: r.Counter("stock", "movements_total", "Movimientos de stock registrados.", "kind"),
		units:     r.Counter("stock", "units_total", "Unidades movidas por tipo de movimiento.", "kind"),
		rejected:  r.Counter("stock", "rejections_total", "Movimientos de stock rechazados.", "kind", "reason"),
	}
}

func (m *StockMetrics) MovementRecorded(kind entity.MovementKind, quantity int64) {
	m.movements.WithLabelValues(string(kind)).Inc()
	m.units.WithLabelValues(string(kind)).Add(float64(quantity))
}

func (m *StockMetrics) MovementRejected(kind entity.MovementKind, reason string) {
	m.rejected.WithLabelValues(string(kind), reason).Inc()
}
