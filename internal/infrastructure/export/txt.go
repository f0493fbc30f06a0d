package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
)

var _ inventory.Exporter = TextReport{}

const reportRule = "========================================"

// TextReport reporte de ancho fijo para imprimir o guardar como .txt.
type TextReport struct{}

func (TextReport) Format() string      { return "txt" }
func (TextReport) ContentType() string { return "text/plain; charset=utf-8" }

// Export arma el reporte con encabezado fechado, una línea por producto y totales.
func (TextReport) Export(_ context.Context, snap *dto.InventorySnapshot) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, " REPORTE DE INVENTARIO - %s\n", snap.GeneratedAt.Format("2006-01-02_15-04"))
	b.WriteString(reportRule + "\n\n")

	fmt.Fprintf(&b, "%-10s %-20s %-10s %s\n", "SKU", "NOMBRE", "CANTIDAD", "PRECIO")
	b.WriteString(strings.Repeat("-", 55) + "\n")
	for _, p := range snap.Products {
		fmt.Fprintf(&b, "%-10s %-20s %-10d $%s\n", p.SKU, p.Name, p.Quantity, p.Price.StringFixed(2))
	}

	b.WriteString("\n" + reportRule + "\n")
	fmt.Fprintf(&b, "Total de artículos en bodega: %d\n", snap.Summary.TotalUnits)
	fmt.Fprintf(&b, "Valor total del inventario:   $%s\n", snap.Summary.TotalValue.StringFixed(2))
	b.WriteString(reportRule + "\n")
	b.WriteString("FIN DEL REPORTE")
	return b.Bytes(), nil
}
