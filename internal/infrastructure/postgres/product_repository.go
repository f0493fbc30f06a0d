package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `sku, name, category, price, quantity, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		product.SKU, product.Name, product.Category, product.Price, product.Quantity,
		product.Version, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSKU
		}
		return domain.PersistenceError("insert product", err)
	}
	return nil
}

// GetBySKU obtiene un producto por SKU. (nil, nil) si no existe.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// GetForUpdate igual que GetBySKU pero bloquea la fila hasta el fin de la tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, sku string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1 FOR UPDATE`, sku)
}

func (r *ProductRepo) get(ctx context.Context, query, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.PersistenceError("get product", err)
	}
	return p, nil
}

// Update persiste nombre, categoría, precio y cantidad con compare-and-swap sobre version.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $3, category = $4, price = $5, quantity = $6, updated_at = $7, version = version + 1
		WHERE sku = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query,
		product.SKU, product.Version, product.Name, product.Category, product.Price,
		product.Quantity, product.UpdatedAt,
	)
	if err != nil {
		return domain.PersistenceError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`, product.SKU).Scan(&exists); err != nil {
			return domain.PersistenceError("update product", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	product.Version++
	return nil
}

// Delete elimina un producto por SKU.
func (r *ProductRepo) Delete(ctx context.Context, sku string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE sku = $1`, sku)
	if err != nil {
		return domain.PersistenceError("delete product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve el catálogo en orden de inserción.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq`)
	if err != nil {
		return nil, domain.PersistenceError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.PersistenceError("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError("list products", err)
	}
	return list, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.SKU, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
