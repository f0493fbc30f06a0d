package inventory_test

import (
	"context"
	"iter"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/export"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/jsonstore"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

var (
	admin    = entity.Actor{Username: "admin", Role: entity.RoleAdmin}
	operador = entity.Actor{Username: "ana", Role: entity.RoleUser}
)

type fixture struct {
	store   *jsonstore.Store
	catalog *inventory.CatalogUseCase
	engine  *inventory.StockEngine
	ledger  *inventory.LedgerUseCase
	reports *inventory.ReportUseCase
	metrics *fakeMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	store, err := jsonstore.Open(t.TempDir(), log)
	require.NoError(t, err)
	catalog := inventory.NewCatalogUseCase(store, store.Products(), log)
	m := &fakeMetrics{}
	return &fixture{
		store:   store,
		catalog: catalog,
		engine:  inventory.NewStockEngine(store, m, log),
		ledger:  inventory.NewLedgerUseCase(store.Movements(), log),
		reports: inventory.NewReportUseCase(catalog, 0, export.CSVWriter{}, export.TextReport{}),
		metrics: m,
	}
}

func (f *fixture) create(t *testing.T, sku, name, category, price string, qty int64) *entity.Product {
	t.Helper()
	p, err := f.catalog.Create(context.Background(), admin, dto.CreateProductRequest{
		SKU: sku, Name: name, Category: category, Price: decimal.RequireFromString(price), Quantity: qty,
	})
	require.NoError(t, err)
	return p
}

func collect[T any](seq iter.Seq[T]) []T {
	var out []T
	for v := range seq {
		out = append(out, v)
	}
	return out
}

type fakeMetrics struct {
	mu       sync.Mutex
	recorded int
	rejected []string
}

func (m *fakeMetrics) MovementRecorded(entity.MovementKind, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded++
}

func (m *fakeMetrics) MovementRejected(_ entity.MovementKind, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, reason)
}

// failingTx simula un proveedor que no puede escribir.
type failingTx struct{}

func (failingTx) Run(context.Context, func(repository.MovementRepository, repository.ProductRepository) error) error {
	return domain.PersistenceError("escribir", assert.AnError)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalog_CrearNormalizaYRegistraCreacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.create(t, " p001 ", "  Tornillo ", "Ferretería", "2.50", 10)
	assert.Equal(t, "P001", p.SKU)
	assert.Equal(t, "Tornillo", p.Name)
	assert.Equal(t, int64(1), p.Version)

	hist, err := f.ledger.HistoryFor(ctx, "p001")
	require.NoError(t, err)
	movs := collect(hist)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementCreated, movs[0].Kind)
	assert.Equal(t, int64(10), movs[0].Quantity)
	assert.Equal(t, "admin", movs[0].Actor)
}

func TestCatalog_SKUDuplicadoNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P001", "Tornillo", "Ferretería", "1", 1)

	_, err := f.catalog.Create(ctx, admin, dto.CreateProductRequest{SKU: "p 001", Name: "Otro", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	list, err := f.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Tornillo", list[0].Name)
}

func TestCatalog_ValidacionNoEscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Create(ctx, admin, dto.CreateProductRequest{SKU: "X1", Name: "", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	list, err := f.catalog.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	all, err := f.ledger.List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCatalog_EditarParcialYVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P1", "Uno", "A", "1", 3)

	cat := "B"
	v1 := int64(1)
	p, err := f.catalog.Update(ctx, operador, "p1", dto.UpdateProductRequest{Category: &cat, Version: &v1})
	require.NoError(t, err)
	assert.Equal(t, "Uno", p.Name)
	assert.Equal(t, "B", p.Category)
	assert.Equal(t, int64(3), p.Quantity)
	assert.Equal(t, int64(2), p.Version)

	// la misma versión ya no es válida
	_, err = f.catalog.Update(ctx, operador, "P1", dto.UpdateProductRequest{Category: &cat, Version: &v1})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.catalog.Update(ctx, operador, "NOPE", dto.UpdateProductRequest{Category: &cat})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	movs, err := f.ledger.List(ctx, repository.MovementFilter{Kind: entity.MovementEdited})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(0), movs[0].Quantity)
	assert.Equal(t, "ana", movs[0].Actor)
}

func TestCatalog_FindEsRepetibleYEstable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "C1", "Cuaderno", "Papelería", "3", 10)
	f.create(t, "A1", "Lápiz", "Papelería", "1", 1)
	f.create(t, "B1", "Martillo", "Herramientas", "20", 2)

	seq, err := f.catalog.Find(ctx, "")
	require.NoError(t, err)
	first := collect(seq)
	second := collect(seq)
	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"C1", "A1", "B1"}, []string{first[0].SKU, first[1].SKU, first[2].SKU})

	seq, err = f.catalog.Find(ctx, "LAPIZ")
	require.NoError(t, err)
	assert.Len(t, collect(seq), 1)

	seq, err = f.catalog.Find(ctx, "papel", inventory.FieldName)
	require.NoError(t, err)
	assert.Empty(t, collect(seq))

	// modificar lo devuelto no afecta al catálogo
	seq, err = f.catalog.Find(ctx, "b1", inventory.FieldSKU)
	require.NoError(t, err)
	for p := range seq {
		p.Quantity = 1000
	}
	got, err := f.catalog.Get(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Motor de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStockEngine_EntradaYSalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P001", "Tornillo", "Ferretería", "2.5", 10)

	qty, err := f.engine.ApplyMovement(ctx, operador, "p001", entity.MovementExit, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), qty)

	qty, err = f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementEntry, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(16), qty)

	p, err := f.catalog.Get(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(16), p.Quantity)
	assert.Equal(t, 2, f.metrics.recorded)
}

func TestStockEngine_RechazosNoEscriben(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P001", "Tornillo", "Ferretería", "2.5", 3)

	_, err := f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementExit, 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementEntry, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.engine.ApplyMovement(ctx, operador, "UNKNOWN", entity.MovementEntry, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementCreated, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	_, err = f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementEntry, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	p, err := f.catalog.Get(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Quantity)

	hist, err := f.ledger.HistoryFor(ctx, "P001")
	require.NoError(t, err)
	assert.Len(t, collect(hist), 1, "solo la creación")
	assert.Equal(t, []string{"insufficient_stock", "invalid_quantity", "not_found", "invalid_kind", "invalid_quantity"}, f.metrics.rejected)
}

func TestStockEngine_SalidasConcurrentesNuncaNegativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P001", "Tornillo", "Ferretería", "1", 5)

	const workers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementExit, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, workers-5, fail)
	p, err := f.catalog.Get(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Quantity)

	exits, err := f.ledger.List(ctx, repository.MovementFilter{Kind: entity.MovementExit})
	require.NoError(t, err)
	assert.Len(t, exits, 5)
}

func TestStockEngine_ErrorDePersistenciaSePropaga(t *testing.T) {
	m := &fakeMetrics{}
	engine := inventory.NewStockEngine(failingTx{}, m, logger.Nop())

	_, err := engine.ApplyMovement(context.Background(), operador, "P001", entity.MovementEntry, 1)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, []string{"persistence"}, m.rejected)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_EliminarConservaHistorial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P001", "Tornillo", "Ferretería", "2.5", 10)
	_, err := f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementExit, 4)
	require.NoError(t, err)

	seq, err := f.ledger.HistoryFor(ctx, "P001")
	require.NoError(t, err)
	before := collect(seq)
	require.Len(t, before, 2)

	removed, err := f.catalog.Remove(ctx, admin, "p001")
	require.NoError(t, err)
	assert.Equal(t, int64(6), removed.Quantity)

	_, err = f.catalog.Get(ctx, "P001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.catalog.Remove(ctx, admin, "P001")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, key := range []string{"P001", "tornillo"} {
		seq, err := f.ledger.HistoryFor(ctx, key)
		require.NoError(t, err)
		after := collect(seq)
		require.Len(t, after, 3, key)
		for i := range before {
			assert.Equal(t, before[i].ID, after[i].ID)
			assert.False(t, after[i].Product.IsLive())
		}
		last := after[2]
		assert.Equal(t, entity.MovementDeleted, last.Kind)
		assert.Equal(t, int64(6), last.Quantity)
		assert.Equal(t, "Tornillo", last.Product.Name)
	}

	// el SKU queda libre y el producto nuevo no hereda lápidas por nombre distinto
	f.create(t, "P001", "Tuerca", "Ferretería", "1", 1)
	seq, err = f.ledger.HistoryFor(ctx, "Tuerca")
	require.NoError(t, err)
	assert.Empty(t, collect(seq))
}

func TestLedger_SalidaRechazadaNoApareceEnHistorial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P001", "Tornillo", "Ferretería", "2.5", 10)

	qty, err := f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementExit, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), qty)

	_, err = f.engine.ApplyMovement(ctx, operador, "P001", entity.MovementExit, 100)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	seq, err := f.ledger.HistoryFor(ctx, "P001")
	require.NoError(t, err)
	movs := collect(seq)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementCreated, movs[0].Kind)
	assert.Equal(t, int64(10), movs[0].Quantity)
	assert.Equal(t, entity.MovementExit, movs[1].Kind)
	assert.Equal(t, int64(3), movs[1].Quantity)

	p, err := f.catalog.Get(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Quantity)
}

func TestLedger_EliminarTrasRenombrarUsaNombreFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "W1", "Widget", "Varios", "1", 10)
	_, err := f.engine.ApplyMovement(ctx, operador, "W1", entity.MovementExit, 3)
	require.NoError(t, err)
	name := "Gadget"
	_, err = f.catalog.Update(ctx, admin, "W1", dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	_, err = f.catalog.Remove(ctx, admin, "W1")
	require.NoError(t, err)

	bySKU, err := f.ledger.HistoryFor(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, collect(bySKU), 4)

	byName, err := f.ledger.HistoryFor(ctx, "gadget")
	require.NoError(t, err)
	movs := collect(byName)
	require.Len(t, movs, 4)
	for _, m := range movs {
		assert.Equal(t, "Gadget", m.Product.Name)
	}

	old, err := f.ledger.HistoryFor(ctx, "Widget")
	require.NoError(t, err)
	assert.Empty(t, collect(old))
}

func TestLedger_SKUTienePrioridadSobreNombre(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P9", "Clavo", "Ferretería", "1", 1)
	_, err := f.catalog.Remove(ctx, admin, "P9")
	require.NoError(t, err)
	f.create(t, "CLAVO", "Clavo de acero", "Ferretería", "1", 2)

	// "Clavo" coincide con el SKU vivo CLAVO: no se mezclan las lápidas de P9.
	seq, err := f.ledger.HistoryFor(ctx, "Clavo")
	require.NoError(t, err)
	movs := collect(seq)
	require.Len(t, movs, 1)
	assert.Equal(t, "CLAVO", movs[0].Product.SKU)

	seq, err = f.ledger.HistoryFor(ctx, "P9")
	require.NoError(t, err)
	assert.Len(t, collect(seq), 2)

	// Sin coincidencia de SKU se busca por nombre de producto eliminado.
	f.create(t, "P8", "Tuerca", "Ferretería", "1", 1)
	_, err = f.catalog.Remove(ctx, admin, "P8")
	require.NoError(t, err)
	seq, err = f.ledger.HistoryFor(ctx, "tuerca")
	require.NoError(t, err)
	assert.Len(t, collect(seq), 2)
}

func TestLedger_RecordCompletaIDYFecha(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := &entity.Movement{Product: entity.TombstoneRef("Viejo", "V1"), Kind: entity.MovementDeleted, Actor: "sistema"}
	require.NoError(t, f.ledger.Record(ctx, m))
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.Timestamp.IsZero())

	seq, err := f.ledger.HistoryFor(ctx, "viejo")
	require.NoError(t, err)
	assert.Len(t, collect(seq), 1)
}

func TestLedger_PurgaSoloAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P1", "Uno", "A", "1", 5)
	f.create(t, "P2", "Dos", "A", "1", 5)

	_, err := f.ledger.PurgeAll(ctx, operador)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	n, err := f.ledger.PurgeAll(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := f.ledger.List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	list, err := f.catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLedger_ListFiltraPorUsuario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "P1", "Uno", "A", "1", 5)
	_, err := f.engine.ApplyMovement(ctx, operador, "P1", entity.MovementEntry, 1)
	require.NoError(t, err)

	byAna, err := f.ledger.List(ctx, repository.MovementFilter{Actor: "ana"})
	require.NoError(t, err)
	require.Len(t, byAna, 1)
	assert.Equal(t, entity.MovementEntry, byAna[0].Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestReports_StockBajoYResumen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "A1", "Lápiz", "Papelería", "1.25", 4)
	f.create(t, "A2", "Cuaderno", "Papelería", "3", 10)
	f.create(t, "B1", "Martillo", "Herramientas", "20", 0)

	assert.Equal(t, 5, f.reports.Threshold())

	low, err := f.reports.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "B1", low[0].SKU)
	assert.Equal(t, "A1", low[1].SKU)

	s, err := f.reports.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.ProductCount)
	assert.Equal(t, int64(14), s.TotalUnits)
	assert.Equal(t, 2, s.LowStockCount)
	assert.True(t, s.TotalValue.Equal(decimal.NewFromInt(35)), s.TotalValue.String())
}

func TestReports_ResumenNoDesbordaUnidades(t *testing.T) {
	f := newFixture(t)
	f.create(t, "A1", "Uno", "A", "1", math.MaxInt64)
	f.create(t, "A2", "Dos", "A", "1", 5)

	s, err := f.reports.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), s.TotalUnits)
	assert.True(t, s.TotalValue.IsPositive())
}

func TestReports_Exportar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "A1", "Lápiz", "Papelería", "1", 4)

	assert.Equal(t, []string{"csv", "txt"}, f.reports.Formats())

	data, filename, contentType, err := f.reports.Export(ctx, admin, " CSV ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "reporte_inventario_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))
	assert.Equal(t, "text/csv; charset=utf-8", contentType)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)

	_, _, _, err = f.reports.Export(ctx, admin, "docx")
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestParseSearchField(t *testing.T) {
	for in, want := range map[string]inventory.SearchField{
		"nombre": inventory.FieldName, "Name": inventory.FieldName,
		"categoria": inventory.FieldCategory, " SKU ": inventory.FieldSKU,
	} {
		got, ok := inventory.ParseSearchField(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := inventory.ParseSearchField("precio")
	assert.False(t, ok)
}
