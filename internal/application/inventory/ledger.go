package inventory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// LedgerUseCase expone el historial de movimientos (append-only).
type LedgerUseCase struct {
	movRepo repository.MovementRepository
	log     *logger.Logger
	now     func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(movRepo repository.MovementRepository, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{movRepo: movRepo, log: log.Component("ledger"), now: time.Now}
}

// Record agrega un movimiento. Los errores del proveedor se devuelven sin reintentar.
func (uc *LedgerUseCase) Record(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = uc.now()
	}
	return uc.movRepo.Create(ctx, m)
}

// HistoryFor devuelve los movimientos de un producto en orden cronológico ascendente.
// La clave se busca primero como SKU; solo si ningún movimiento tiene ese SKU se busca como
// nombre de un producto eliminado. La secuencia se puede recorrer varias veces.
func (uc *LedgerUseCase) HistoryFor(ctx context.Context, skuOrName string) (iter.Seq[*entity.Movement], error) {
	list, err := uc.movRepo.ListByProduct(ctx, inventory.NormalizeSKU(skuOrName), "")
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		list, err = uc.movRepo.ListByProduct(ctx, "", strings.TrimSpace(skuOrName))
		if err != nil {
			return nil, err
		}
	}
	sortChronologically(list)
	return slices.Values(list), nil
}

// List devuelve todo el historial que cumple el filtro, en orden cronológico.
func (uc *LedgerUseCase) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortChronologically(list)
	return list, nil
}

// PurgeAll borra todo el historial. Solo admin; irreversible; no toca el catálogo.
func (uc *LedgerUseCase) PurgeAll(ctx context.Context, actor entity.Actor) (int, error) {
	if !actor.IsAdmin() {
		return 0, domain.ErrForbidden
	}
	n, err := uc.movRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	uc.log.Warn().Str("actor", actor.Username).Int("eliminados", n).Msg("historial purgado")
	return n, nil
}

func sortChronologically(list []*entity.Movement) {
	slices.SortStableFunc(list, func(a, b *entity.Movement) int {
		return cmp.Compare(a.Timestamp.UnixNano(), b.Timestamp.UnixNano())
	})
}

// newMovement construye un movimiento nuevo para el actor indicado.
func newMovement(ref entity.ProductRef, kind entity.MovementKind, quantity int64, actor entity.Actor, at time.Time) *entity.Movement {
	return &entity.Movement{
		ID:        uuid.New().String(),
		Product:   ref,
		Kind:      kind,
		Quantity:  quantity,
		Actor:     actor.Username,
		Timestamp: at,
	}
}
