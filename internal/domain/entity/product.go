package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// Quantity solo cambia a través del motor de stock; Version se incrementa en cada escritura
// y se usa como compare-and-swap para evitar actualizaciones perdidas.
type Product struct {
	SKU       string          `json:"sku"` // normalizado, único entre productos vivos
	Name      string          `json:"nombre"`
	Category  string          `json:"categoria"`
	Price     decimal.Decimal `json:"precio"`
	Quantity  int64           `json:"cantidad"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"fecha_creacion"`
	UpdatedAt time.Time       `json:"fecha_actualizacion"`
}

// Value devuelve precio * cantidad.
func (p *Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(p.Quantity))
}

// Clone devuelve una copia independiente.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
