package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

// StockMovementRequest body para POST /api/products/:sku/movements.
type StockMovementRequest struct {
	Type     string `json:"tipo"` // ENTRADA | SALIDA (también entry/exit)
	Quantity int64  `json:"cantidad"`
}

// StockMovementResponse resultado de aplicar un movimiento.
type StockMovementResponse struct {
	SKU         string `json:"sku"`
	Type        string `json:"tipo"`
	Quantity    int64  `json:"cantidad"`
	NewQuantity int64  `json:"stock_actual"`
}

// MovementResponse salida de un movimiento del historial.
type MovementResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"producto"`
	Deleted     bool      `json:"producto_eliminado"`
	Type        string    `json:"tipo"`
	Quantity    int64     `json:"cantidad"`
	Signed      int64     `json:"cantidad_con_signo"`
	Actor       string    `json:"usuario"`
	Timestamp   time.Time `json:"fecha"`
}

// NewMovementResponse mapea un movimiento a la respuesta HTTP.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		SKU:         m.Product.SKU,
		ProductName: m.Product.Name,
		Deleted:     !m.Product.IsLive(),
		Type:        string(m.Kind),
		Quantity:    m.Quantity,
		Signed:      m.SignedQuantity(),
		Actor:       m.Actor,
		Timestamp:   m.Timestamp,
	}
}

// PurgeResponse resultado de la purga del historial.
type PurgeResponse struct {
	Deleted int `json:"eliminados"`
}

// InventorySummary resumen financiero del inventario.
type InventorySummary struct {
	ProductCount  int             `json:"total_productos"`
	TotalUnits    int64           `json:"total_unidades"` // satura en math.MaxInt64
	TotalValue    decimal.Decimal `json:"valor_total"`
	LowStockCount int             `json:"productos_stock_bajo"`
	Threshold     int             `json:"umbral_stock_bajo"`
}

// InventorySnapshot foto del catálogo consumida por los exportadores.
type InventorySnapshot struct {
	GeneratedAt time.Time
	GeneratedBy string
	Products    []*entity.Product
	Summary     InventorySummary
}
