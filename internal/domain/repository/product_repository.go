package repository

import (
	"context"

	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los SKU llegan normalizados; GetBySKU devuelve (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, sku string) (*entity.Product, error)
	// Update persiste el producto solo si la versión guardada coincide con product.Version
	// (compare-and-swap); en ese caso incrementa product.Version. Devuelve ErrConflict si no coincide.
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, sku string) error
	// List devuelve el catálogo en orden de inserción.
	List(ctx context.Context) ([]*entity.Product, error)
}
