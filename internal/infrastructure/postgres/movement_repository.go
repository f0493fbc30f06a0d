package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_state, product_sku, product_name, kind, quantity, actor, occurred_at`

// MovementRepo historial de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, string(m.Product.State), m.Product.SKU, m.Product.Name,
		string(m.Kind), m.Quantity, m.Actor, m.Timestamp,
	)
	if err != nil {
		return domain.PersistenceError("create movement", err)
	}
	return nil
}

// ListByProduct movimientos de un SKU o, si es lápida, con ese nombre (sin distinguir mayúsculas).
func (r *MovementRepo) ListByProduct(ctx context.Context, sku, name string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE ($1 <> '' AND product_sku = $1)
		   OR ($2 <> '' AND product_state = $3 AND lower(product_name) = lower($2))
		ORDER BY occurred_at, seq`
	return r.list(ctx, query, sku, name, string(entity.RefTombstone))
}

// List historial filtrado por tipo y/o usuario.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, string(filter.Kind))
		pos++
	}
	if filter.Actor != "" {
		query += fmt.Sprintf(" AND actor = $%d", pos)
		args = append(args, filter.Actor)
	}
	query += " ORDER BY occurred_at, seq"
	return r.list(ctx, query, args...)
}

// TombstoneProduct convierte en lápida las referencias vivas al SKU con el nombre final.
func (r *MovementRepo) TombstoneProduct(ctx context.Context, sku, finalName string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stock_movements
		SET product_state = $2, product_name = COALESCE(NULLIF($4, ''), product_name)
		WHERE product_sku = $1 AND product_state = $3`,
		sku, string(entity.RefTombstone), string(entity.RefLive), finalName,
	)
	if err != nil {
		return domain.PersistenceError("tombstone movements", err)
	}
	return nil
}

// DeleteAll vacía el historial.
func (r *MovementRepo) DeleteAll(ctx context.Context) (int, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM stock_movements`)
	if err != nil {
		return 0, domain.PersistenceError("purge movements", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.PersistenceError("list movements", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var (
			m           entity.Movement
			state, kind string
		)
		if err := rows.Scan(&m.ID, &state, &m.Product.SKU, &m.Product.Name, &kind, &m.Quantity, &m.Actor, &m.Timestamp); err != nil {
			return nil, domain.PersistenceError("scan movement", err)
		}
		m.Product.State = entity.RefState(state)
		m.Kind = entity.MovementKind(kind)
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError("list movements", err)
	}
	return list, nil
}
