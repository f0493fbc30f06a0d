// Package jsonstore proveedor de persistencia en archivos JSON dentro de un directorio de datos.
// Un mutex de proceso serializa las transacciones; cada escritura reemplaza el archivo completo
// de forma atómica.
package jsonstore

import (
	"context"
	"os"
	"sync"

	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// Nombres de archivo dentro del directorio de datos.
const (
	ProductsFile  = "productos.json"
	MovementsFile = "movimientos.json"
	UsersFile     = "usuarios.json"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store agrupa las colecciones de un directorio de datos.
type Store struct {
	mu        sync.Mutex
	dir       string
	products  collection[*entity.Product]
	movements collection[*entity.Movement]
	users     collection[*entity.User]
	log       *logger.Logger
}

// Open crea el directorio si no existe y prepara las colecciones.
func Open(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.PersistenceError("crear directorio de datos", err)
	}
	l := log.Component("jsonstore")
	return &Store{
		dir:       dir,
		products:  newCollection[*entity.Product](dir, ProductsFile, l),
		movements: newCollection[*entity.Movement](dir, MovementsFile, l),
		users:     newCollection[*entity.User](dir, UsersFile, l),
		log:       l,
	}, nil
}

// Dir directorio de datos.
func (s *Store) Dir() string { return s.dir }

// Products repositorio de productos fuera de transacción (cada llamada confirma sola).
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Movements repositorio del historial fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{store: s} }

// Run ejecuta fn con repositorios atados a una copia en memoria. Si fn termina sin error se escriben
// productos y luego movimientos; si falla la escritura de movimientos se restaura productos.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &state{store: s}
	if err := fn(&MovementRepo{store: s, tx: st}, &ProductRepo{store: s, tx: st}); err != nil {
		return err
	}
	return st.commit()
}

// autocommit ejecuta fn sobre un estado propio y lo confirma, salvo que el repo ya esté en una tx.
func (s *Store) autocommit(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &state{store: s}
	if err := fn(st); err != nil {
		return err
	}
	return st.commit()
}

// state copia de trabajo de una transacción. Se carga cada colección la primera vez que se usa.
type state struct {
	store *Store

	products       []*entity.Product
	productsLoaded bool
	productsDirty  bool

	movements       []*entity.Movement
	movementsLoaded bool
	movementsDirty  bool
}

func (st *state) loadProducts() ([]*entity.Product, error) {
	if !st.productsLoaded {
		list, err := st.store.products.readAll()
		if err != nil {
			return nil, err
		}
		st.products = list
		st.productsLoaded = true
	}
	return st.products, nil
}

func (st *state) loadMovements() ([]*entity.Movement, error) {
	if !st.movementsLoaded {
		list, err := st.store.movements.readAll()
		if err != nil {
			return nil, err
		}
		st.movements = list
		st.movementsLoaded = true
	}
	return st.movements, nil
}

func (st *state) commit() error {
	var (
		backup    []byte
		hadBackup bool
	)
	if st.productsDirty {
		if st.movementsDirty {
			raw, exists, err := st.store.products.backup()
			if err != nil {
				return err
			}
			backup, hadBackup = raw, exists
		}
		if err := st.store.products.writeAll(st.products); err != nil {
			return err
		}
	}
	if st.movementsDirty {
		if err := st.store.movements.writeAll(st.movements); err != nil {
			if st.productsDirty {
				if rerr := st.store.products.restore(backup, hadBackup); rerr != nil {
					st.store.log.Error().Err(rerr).Msg("no se pudo restaurar productos tras fallo del historial")
				}
			}
			return err
		}
	}
	return nil
}
