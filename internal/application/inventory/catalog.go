package inventory

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// SearchField campo sobre el que busca Find.
type SearchField string

const (
	FieldName     SearchField = "nombre"
	FieldCategory SearchField = "categoria"
	FieldSKU      SearchField = "sku"
)

// ParseSearchField convierte el texto de un query param o menú en SearchField.
func ParseSearchField(s string) (SearchField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nombre", "name":
		return FieldName, true
	case "categoria", "category":
		return FieldCategory, true
	case "sku":
		return FieldSKU, true
	}
	return "", false
}

// CatalogUseCase casos de uso del catálogo. La cantidad solo cambia vía StockEngine;
// cada alta, edición y baja deja su movimiento en el historial dentro de la misma transacción.
type CatalogUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(txRunner TxRunner, productRepo repository.ProductRepository, log *logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		log:         log.Component("catalog"),
		now:         time.Now,
	}
}

// Create crea un producto y registra el movimiento CREACION con la cantidad inicial.
func (uc *CatalogUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateProductRequest) (*entity.Product, error) {
	sku := inventory.NormalizeSKU(in.SKU)
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if err := inventory.ValidateNewProduct(sku, name, category, in.Price, in.Quantity); err != nil {
		return nil, err
	}

	now := uc.now()
	product := &entity.Product{
		SKU:       sku,
		Name:      name,
		Category:  category,
		Price:     in.Price,
		Quantity:  in.Quantity,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		existing, err := productRepo.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateSKU
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		return movRepo.Create(ctx, newMovement(entity.LiveRef(sku, name), entity.MovementCreated, product.Quantity, actor, now))
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku", sku).Str("actor", actor.Username).Int64("cantidad", product.Quantity).Msg("producto creado")
	return product, nil
}

// Update aplica una edición parcial (nombre, categoría, precio) y registra EDICION con cantidad 0.
func (uc *CatalogUseCase) Update(ctx context.Context, actor entity.Actor, sku string, in dto.UpdateProductRequest) (*entity.Product, error) {
	sku = inventory.NormalizeSKU(sku)
	patch := inventory.ProductPatch{Name: trimmed(in.Name), Category: trimmed(in.Category), Price: in.Price}
	if err := inventory.ValidatePatch(patch); err != nil {
		return nil, err
	}

	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		product, err := productRepo.GetForUpdate(ctx, sku)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Version != nil && *in.Version != product.Version {
			return domain.ErrConflict
		}
		if patch.Name != nil && *patch.Name != "" {
			product.Name = *patch.Name
		}
		if patch.Category != nil && *patch.Category != "" {
			product.Category = *patch.Category
		}
		if patch.Price != nil {
			product.Price = *patch.Price
		}
		now := uc.now()
		product.UpdatedAt = now
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return movRepo.Create(ctx, newMovement(entity.LiveRef(product.SKU, product.Name), entity.MovementEdited, 0, actor, now))
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku", sku).Str("actor", actor.Username).Msg("producto editado")
	return updated, nil
}

// Remove elimina un producto. Antes de borrarlo registra ELIMINACION con la cantidad que tenía
// y convierte en lápida las referencias del historial, que se conserva completo.
func (uc *CatalogUseCase) Remove(ctx context.Context, actor entity.Actor, sku string) (*entity.Product, error) {
	sku = inventory.NormalizeSKU(sku)
	var removed *entity.Product
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, productRepo repository.ProductRepository) error {
		product, err := productRepo.GetForUpdate(ctx, sku)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		mov := newMovement(entity.LiveRef(product.SKU, product.Name), entity.MovementDeleted, product.Quantity, actor, uc.now())
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		if err := movRepo.TombstoneProduct(ctx, product.SKU, product.Name); err != nil {
			return err
		}
		if err := productRepo.Delete(ctx, product.SKU); err != nil {
			return err
		}
		removed = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku", sku).Str("actor", actor.Username).Int64("cantidad", removed.Quantity).Msg("producto eliminado")
	return removed, nil
}

// Get obtiene un producto por SKU (ErrNotFound si no existe).
func (uc *CatalogUseCase) Get(ctx context.Context, sku string) (*entity.Product, error) {
	product, err := uc.productRepo.GetBySKU(ctx, inventory.NormalizeSKU(sku))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// List devuelve el catálogo completo en orden de inserción.
func (uc *CatalogUseCase) List(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx)
}

// Find devuelve una secuencia perezosa de productos cuyo nombre, categoría o SKU contienen term,
// sin distinguir mayúsculas ni tildes. Sin fields busca en los tres. Un término vacío devuelve
// todo el catálogo. La secuencia recorre una foto tomada al llamar y puede repetirse.
func (uc *CatalogUseCase) Find(ctx context.Context, term string, fields ...SearchField) (iter.Seq[*entity.Product], error) {
	list, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = []SearchField{FieldName, FieldCategory, FieldSKU}
	}
	folded := inventory.Fold(term)
	return func(yield func(*entity.Product) bool) {
		for _, p := range list {
			if folded != "" && !matchesAny(p, term, fields) {
				continue
			}
			if !yield(p.Clone()) {
				return
			}
		}
	}, nil
}

func matchesAny(p *entity.Product, term string, fields []SearchField) bool {
	for _, f := range fields {
		var s string
		switch f {
		case FieldName:
			s = p.Name
		case FieldCategory:
			s = p.Category
		case FieldSKU:
			s = p.SKU
		}
		if inventory.ContainsFold(s, term) {
			return true
		}
	}
	return false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
