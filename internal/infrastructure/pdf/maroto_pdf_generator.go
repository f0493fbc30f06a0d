// Package pdf genera el reporte de inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha      │  Generado por                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Nombre | Categoría | Cant. | Precio | Valor    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Productos / Unidades / Stock bajo / VALOR TOTAL    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el resumen + leyenda                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-inventario/internal/domain/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.Exporter = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa inventory.Exporter usando Maroto v2.
type MarotoPDFGenerator struct {
	appName string
}

// NewMarotoPDFGenerator construye el generador. appName aparece como autor del documento.
func NewMarotoPDFGenerator(appName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{appName: appName}
}

func (g *MarotoPDFGenerator) Format() string      { return "pdf" }
func (g *MarotoPDFGenerator) ContentType() string { return "application/pdf" }

// Export genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Export(_ context.Context, snap *dto.InventorySnapshot) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de inventario", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(snap))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(snap.Products) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("No hay productos en el inventario.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range tableDetailRows(snap.Products, snap.Summary.Threshold) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(snap.Summary))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(snap))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(snap *dto.InventorySnapshot) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("REPORTE DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha: "+snap.GeneratedAt.Format("2006-01-02 15:04"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado por", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(snap.GeneratedBy, "sistema"), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Nombre", 4, align.Left),
		h("Categoría", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("Precio", 1, align.Right),
		h("Valor", 2, align.Right),
	)
}

// tableDetailRows una fila por producto; la cantidad se resalta si está bajo el umbral.
func tableDetailRows(products []*entity.Product, threshold int) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		qtyProps := props.Text{Size: 8, Align: align.Center, Top: 1}
		if domaininv.IsLowStock(p.Quantity, threshold) {
			qtyProps.Style = fontstyle.Bold
			qtyProps.Color = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(p.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(p.Category, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", p.Quantity), qtyProps)),
			col.New(1).Add(text.New("$"+formatMoney(p.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(p.Value()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(s dto.InventorySummary) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(4),
		col.New(4).Add(
			label("Productos:"),
			label("Unidades:"),
			label(fmt.Sprintf("Stock bajo (< %d):", s.Threshold)),
			text.New("VALOR TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2}),
		),
		col.New(4).Add(
			value(fmt.Sprintf("%d", s.ProductCount)),
			value(fmt.Sprintf("%d", s.TotalUnits)),
			value(fmt.Sprintf("%d", s.LowStockCount)),
			text.New("$"+formatMoney(s.TotalValue), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1}),
		),
	)
}

// footerRow QR con el resumen del reporte, para cotejarlo contra el sistema.
func footerRow(snap *dto.InventorySnapshot) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qrPayload(snap), props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Resumen codificado: fecha, productos, unidades y valor total.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Documento generado automáticamente por el sistema de inventario.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 16, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func qrPayload(snap *dto.InventorySnapshot) string {
	return strings.Join([]string{
		"INVENTARIO",
		snap.GeneratedAt.Format("2006-01-02T15:04:05"),
		fmt.Sprintf("productos=%d", snap.Summary.ProductCount),
		fmt.Sprintf("unidades=%d", snap.Summary.TotalUnits),
		"valor=" + snap.Summary.TotalValue.StringFixed(2),
	}, "|")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney puntos de miles y coma decimal. Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
