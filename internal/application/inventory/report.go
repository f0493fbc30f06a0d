package inventory

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/inventory"
)

// ReportUseCase proyecciones de solo lectura sobre el catálogo: alertas de stock bajo,
// valor total del inventario y exportación a los formatos registrados.
type ReportUseCase struct {
	catalog   *CatalogUseCase
	threshold int
	exporters map[string]Exporter
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso. threshold <= 0 usa inventory.LowStockThreshold.
func NewReportUseCase(catalog *CatalogUseCase, threshold int, exporters ...Exporter) *ReportUseCase {
	if threshold <= 0 {
		threshold = inventory.LowStockThreshold
	}
	m := make(map[string]Exporter, len(exporters))
	for _, e := range exporters {
		m[e.Format()] = e
	}
	return &ReportUseCase{catalog: catalog, threshold: threshold, exporters: m, now: time.Now}
}

// Threshold umbral de stock bajo en uso.
func (uc *ReportUseCase) Threshold() int { return uc.threshold }

// LowStock devuelve los productos con cantidad menor al umbral, de menor a mayor stock.
func (uc *ReportUseCase) LowStock(ctx context.Context) ([]*entity.Product, error) {
	seq, err := uc.catalog.Find(ctx, "")
	if err != nil {
		return nil, err
	}
	var out []*entity.Product
	for p := range seq {
		if inventory.IsLowStock(p.Quantity, uc.threshold) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *entity.Product) int {
		if c := cmp.Compare(a.Quantity, b.Quantity); c != 0 {
			return c
		}
		return strings.Compare(a.SKU, b.SKU)
	})
	return out, nil
}

// Summary suma unidades y precio * cantidad de todo el catálogo.
func (uc *ReportUseCase) Summary(ctx context.Context) (*dto.InventorySummary, error) {
	list, err := uc.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	s := summarize(list, uc.threshold)
	return &s, nil
}

// Snapshot foto del catálogo con su resumen, consumida por los exportadores.
func (uc *ReportUseCase) Snapshot(ctx context.Context, actor entity.Actor) (*dto.InventorySnapshot, error) {
	list, err := uc.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InventorySnapshot{
		GeneratedAt: uc.now(),
		GeneratedBy: actor.Username,
		Products:    list,
		Summary:     summarize(list, uc.threshold),
	}, nil
}

// Formats formatos de exportación disponibles, ordenados.
func (uc *ReportUseCase) Formats() []string {
	out := make([]string, 0, len(uc.exporters))
	for f := range uc.exporters {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Export genera el reporte en el formato pedido. Devuelve bytes, nombre de archivo y content-type.
// Formato desconocido → ErrInvalidValue.
func (uc *ReportUseCase) Export(ctx context.Context, actor entity.Actor, format string) ([]byte, string, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	exp, ok := uc.exporters[format]
	if !ok {
		v := &domain.ValidationError{}
		v.Add("format", "formato no soportado: "+format)
		return nil, "", "", v
	}
	snap, err := uc.Snapshot(ctx, actor)
	if err != nil {
		return nil, "", "", err
	}
	data, err := exp.Export(ctx, snap)
	if err != nil {
		return nil, "", "", fmt.Errorf("exportar %s: %w", format, err)
	}
	filename := fmt.Sprintf("reporte_inventario_%s.%s", snap.GeneratedAt.Format("2006-01-02_15-04"), format)
	return data, filename, exp.ContentType(), nil
}

func summarize(list []*entity.Product, threshold int) dto.InventorySummary {
	s := dto.InventorySummary{
		ProductCount: len(list),
		TotalValue:   decimal.Zero,
		Threshold:    threshold,
	}
	for _, p := range list {
		if p.Quantity > math.MaxInt64-s.TotalUnits {
			s.TotalUnits = math.MaxInt64
		} else {
			s.TotalUnits += p.Quantity
		}
		s.TotalValue = s.TotalValue.Add(p.Value())
		if inventory.IsLowStock(p.Quantity, threshold) {
			s.LowStockCount++
		}
	}
	return s
}
