package jsonstore

import (
	"context"

	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo historial append-only sobre movimientos.json.
type MovementRepo struct {
	store *Store
	tx    *state
}

// Create agrega el movimiento al final del historial.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	return r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadMovements()
		if err != nil {
			return err
		}
		c := *movement
		st.movements = append(list, &c)
		st.movementsDirty = true
		return nil
	})
}

// ListByProduct movimientos de un SKU, o de una lápida con ese nombre, en orden de registro.
func (r *MovementRepo) ListByProduct(ctx context.Context, sku, name string) ([]*entity.Movement, error) {
	return r.collect(func(m *entity.Movement) bool { return m.Product.Matches(sku, name) })
}

// List historial filtrado.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	return r.collect(filter.Match)
}

// TombstoneProduct convierte en lápida las referencias vivas al SKU con el nombre final.
func (r *MovementRepo) TombstoneProduct(ctx context.Context, sku, finalName string) error {
	return r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadMovements()
		if err != nil {
			return err
		}
		for _, m := range list {
			if m.Product.IsLive() && m.Product.SKU == sku {
				m.Product = m.Product.Tombstoned(finalName)
				st.movementsDirty = true
			}
		}
		return nil
	})
}

// DeleteAll vacía el historial.
func (r *MovementRepo) DeleteAll(ctx context.Context) (int, error) {
	var n int
	err := r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadMovements()
		if err != nil {
			return err
		}
		n = len(list)
		st.movements = nil
		st.movementsDirty = true
		return nil
	})
	return n, err
}

func (r *MovementRepo) collect(keep func(*entity.Movement) bool) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.store.autocommit(r.tx, func(st *state) error {
		list, err := st.loadMovements()
		if err != nil {
			return err
		}
		for _, m := range list {
			if keep(m) {
				c := *m
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}
