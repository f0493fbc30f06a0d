package jsonstore

import (
	"context"
	"slices"

	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre productos.json.
// Devuelve siempre copias: mutar un producto leído no cambia el almacenamiento hasta Update.
type ProductRepo struct {
	store *Store
	tx    *state
}

// Create agrega un producto al final del catálogo.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	return r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadProducts()
		if err != nil {
			return err
		}
		if indexBySKU(list, product.SKU) >= 0 {
			return domain.ErrDuplicateSKU
		}
		st.products = append(list, product.Clone())
		st.productsDirty = true
		return nil
	})
}

// GetBySKU devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadProducts()
		if err != nil {
			return err
		}
		if i := indexBySKU(list, sku); i >= 0 {
			out = list[i].Clone()
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetBySKU: el mutex del Store ya serializa la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, sku string) (*entity.Product, error) {
	return r.GetBySKU(ctx, sku)
}

// Update reemplaza el producto si la versión coincide e incrementa product.Version.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	return r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadProducts()
		if err != nil {
			return err
		}
		i := indexBySKU(list, product.SKU)
		if i < 0 {
			return domain.ErrNotFound
		}
		if list[i].Version != product.Version {
			return domain.ErrConflict
		}
		product.Version++
		list[i] = product.Clone()
		st.productsDirty = true
		return nil
	})
}

// Delete quita el producto del catálogo.
func (r *ProductRepo) Delete(ctx context.Context, sku string) error {
	return r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadProducts()
		if err != nil {
			return err
		}
		i := indexBySKU(list, sku)
		if i < 0 {
			return domain.ErrNotFound
		}
		st.products = slices.Delete(list, i, i+1)
		st.productsDirty = true
		return nil
	})
}

// List devuelve el catálogo en orden de inserción.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadProducts()
		if err != nil {
			return err
		}
		out = make([]*entity.Product, 0, len(list))
		for _, p := range list {
			out = append(out, p.Clone())
		}
		return nil
	})
	return out, err
}

func indexBySKU(list []*entity.Product, sku string) int {
	return slices.IndexFunc(list, func(p *entity.Product) bool { return p.SKU == sku })
}
