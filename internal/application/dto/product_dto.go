package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU      string          `json:"sku" validate:"required,max=10"`
	Name     string          `json:"nombre" validate:"required,max=100"`
	Category string          `json:"categoria" validate:"max=50"`
	Price    decimal.Decimal `json:"precio"`
	Quantity int64           `json:"cantidad"`
}

// UpdateProductRequest edición parcial: campos nulos o vacíos conservan el valor actual.
// La cantidad no se edita aquí (solo vía movimientos). Version opcional para control optimista.
type UpdateProductRequest struct {
	Name     *string          `json:"nombre"`
	Category *string          `json:"categoria"`
	Price    *decimal.Decimal `json:"precio"`
	Version  *int64           `json:"version,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"nombre"`
	Category  string          `json:"categoria"`
	Price     decimal.Decimal `json:"precio"`
	Quantity  int64           `json:"cantidad"`
	Value     decimal.Decimal `json:"valor"`
	LowStock  bool            `json:"stock_bajo"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"fecha_creacion"`
	UpdatedAt time.Time       `json:"fecha_actualizacion"`
}

// NewProductResponse mapea la entidad a la respuesta HTTP.
func NewProductResponse(p *entity.Product, lowStockThreshold int) ProductResponse {
	return ProductResponse{
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Quantity:  p.Quantity,
		Value:     p.Value(),
		LowStock:  p.Quantity < int64(lowStockThreshold),
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewProductResponses mapea una lista de productos.
func NewProductResponses(list []*entity.Product, lowStockThreshold int) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, NewProductResponse(p, lowStockThreshold))
	}
	return out
}
